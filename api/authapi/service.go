// Package authapi logs users in and out of the inventory backend and keeps
// the session store in step with it.
package authapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/book-inventory-client/api"
	apperrors "github.com/jrsteele09/book-inventory-client/internal/errors"
	"github.com/jrsteele09/book-inventory-client/session"
)

const (
	loginPath    = "/auth/login"
	registerPath = "/users"
	mePath       = "/auth/me"
)

// SessionWriter is the part of session.Store the service mutates.
type SessionWriter interface {
	SetSession(s session.Session)
	UpdateUser(upd session.UserUpdate)
	EndSession()
}

// Registration is a new account request. Password is plain text here and
// obfuscated before it leaves the process.
type Registration struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

type Service struct {
	client   *api.Client
	sessions SessionWriter
	logger   zerolog.Logger
}

type Option func(*Service)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(client *api.Client, sessions SessionWriter, opts ...Option) *Service {
	s := &Service{
		client:   client,
		sessions: sessions,
		logger:   log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReply struct {
	Session *session.Session `json:"session"`
}

// Login authenticates and stores the returned session. On any failure the
// store is left as it was.
func (s *Service) Login(ctx context.Context, email, password string) (*session.Session, error) {
	email = strings.TrimSpace(email)
	if err := ValidateCredentials(email, password); err != nil {
		return nil, err
	}
	obfuscated, err := ObfuscatePassword(password)
	if err != nil {
		return nil, err
	}

	var reply loginReply
	err = s.client.DoJSON(ctx, api.Request{
		Method:    http.MethodPost,
		Path:      loginPath,
		Body:      credentials{Email: email, Password: obfuscated},
		Anonymous: true,
	}, &reply)
	if err != nil {
		return nil, fmt.Errorf("[authapi Login] %w", err)
	}
	if reply.Session == nil || reply.Session.Tokens.AccessToken == "" {
		return nil, fmt.Errorf("[authapi Login] %w: reply carries no session", apperrors.ErrUnexpectedReply)
	}

	s.sessions.SetSession(*reply.Session)
	s.logger.Info().Int("user_id", reply.Session.User.ID).Str("role", string(reply.Session.User.Role)).Msg("Logged in")
	return reply.Session.Clone(), nil
}

// Register creates an account. It does not log the user in.
// Local validation failures are returned as *api.Error with Fields set.
func (s *Service) Register(ctx context.Context, r Registration) error {
	r.Email = strings.TrimSpace(r.Email)
	if fields := ValidateRegistration(r); fields != nil {
		return &api.Error{Message: "registration is invalid", Fields: fields}
	}
	obfuscated, err := ObfuscatePassword(r.Password)
	if err != nil {
		return err
	}

	err = s.client.DoJSON(ctx, api.Request{
		Method: http.MethodPost,
		Path:   registerPath,
		Body: map[string]string{
			"firstName": strings.TrimSpace(r.FirstName),
			"lastName":  strings.TrimSpace(r.LastName),
			"email":     r.Email,
			"password":  obfuscated,
		},
		Anonymous: true,
	}, nil)
	if err != nil {
		return fmt.Errorf("[authapi Register] %w", err)
	}
	s.logger.Info().Str("email", r.Email).Msg("Account created")
	return nil
}

// Me fetches the current profile and merges it into the stored user. The
// profile may come bare or as {"user": {...}}.
func (s *Service) Me(ctx context.Context) (*session.User, error) {
	var raw json.RawMessage
	if err := s.client.DoJSON(ctx, api.Request{Path: mePath}, &raw); err != nil {
		return nil, fmt.Errorf("[authapi Me] %w", err)
	}

	var wrapped struct {
		User *session.User `json:"user"`
	}
	var user *session.User
	if json.Unmarshal(raw, &wrapped) == nil && wrapped.User != nil {
		user = wrapped.User
	} else {
		user = &session.User{}
		if err := json.Unmarshal(raw, user); err != nil {
			return nil, fmt.Errorf("[authapi Me] %w: %w", apperrors.ErrUnexpectedReply, err)
		}
	}
	if user.ID == 0 && user.Email == "" {
		return nil, fmt.Errorf("[authapi Me] %w: reply carries no user", apperrors.ErrUnexpectedReply)
	}

	s.sessions.UpdateUser(session.UpdateFromUser(*user))
	return user, nil
}

// Logout ends the local session. The backend keeps no server-side session to revoke.
func (s *Service) Logout() {
	s.sessions.EndSession()
	s.logger.Info().Msg("Logged out")
}
