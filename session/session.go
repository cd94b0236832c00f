// Package session holds the client-side authentication state: who is logged
// in, with which tokens, and how that survives a restart.
package session

import (
	"time"

	"github.com/jrsteele09/book-inventory-client/internal/utils"
)

// TokenTypeJWT is the only token type the backend issues.
const TokenTypeJWT = "JWT"

// Role is the user's role in the inventory backend.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleUser   Role = "user"
)

type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"` // seconds
	IssuedAt     int64  `json:"issuedAt"`  // epoch seconds
}

// Expiry is IssuedAt+ExpiresIn, or the zero time when either is unset.
// It is a server hint only; the access token's exp claim is authoritative.
func (t Tokens) Expiry() time.Time {
	if t.IssuedAt <= 0 || t.ExpiresIn <= 0 {
		return time.Time{}
	}
	return time.Unix(t.IssuedAt+t.ExpiresIn, 0)
}

type User struct {
	ID          int        `json:"id"`
	Email       string     `json:"email"`
	Role        Role       `json:"role"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type Meta struct {
	Location *string `json:"location,omitempty"`
	IsActive bool    `json:"isActive"`
}

// Session is the bundle of tokens, profile and metadata for one authenticated identity.
type Session struct {
	Tokens Tokens `json:"tokens"`
	User   User   `json:"user"`
	Meta   Meta   `json:"meta"`
}

// Clone returns a deep copy so callers can never mutate store state.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.User = s.User.clone()
	if s.Meta.Location != nil {
		c.Meta.Location = utils.Ptr(*s.Meta.Location)
	}
	return &c
}

func (u User) clone() User {
	if u.LastLoginAt != nil {
		u.LastLoginAt = utils.Ptr(*u.LastLoginAt)
	}
	return u
}

// UserUpdate is a partial User. Nil fields are left untouched by Store.UpdateUser.
type UserUpdate struct {
	ID          *int
	Email       *string
	Role        *Role
	FirstName   *string
	LastName    *string
	CreatedAt   *time.Time
	UpdatedAt   *time.Time
	LastLoginAt *time.Time
}

// UpdateFromUser builds an update that overwrites every field with u's values.
func UpdateFromUser(u User) UserUpdate {
	upd := UserUpdate{
		ID:        utils.Ptr(u.ID),
		Email:     utils.Ptr(u.Email),
		Role:      utils.Ptr(u.Role),
		FirstName: utils.Ptr(u.FirstName),
		LastName:  utils.Ptr(u.LastName),
		CreatedAt: utils.Ptr(u.CreatedAt),
		UpdatedAt: utils.Ptr(u.UpdatedAt),
	}
	if u.LastLoginAt != nil {
		upd.LastLoginAt = utils.Ptr(*u.LastLoginAt)
	}
	return upd
}

// applyTo shallow-merges the set fields into u.
func (upd UserUpdate) applyTo(u *User) {
	utils.Assign(&u.ID, upd.ID)
	utils.Assign(&u.Email, upd.Email)
	utils.Assign(&u.Role, upd.Role)
	utils.Assign(&u.FirstName, upd.FirstName)
	utils.Assign(&u.LastName, upd.LastName)
	utils.Assign(&u.CreatedAt, upd.CreatedAt)
	utils.Assign(&u.UpdatedAt, upd.UpdatedAt)
	utils.AssignPtr(&u.LastLoginAt, upd.LastLoginAt)
}

// Slice is the persisted part of the store.
type Slice struct {
	Session    *Session `json:"session"`
	IsLoggedIn bool     `json:"isLoggedIn"`
}
