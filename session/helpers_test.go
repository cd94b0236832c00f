package session_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/book-inventory-client/internal/utils"
	"github.com/jrsteele09/book-inventory-client/session"
	"github.com/stretchr/testify/require"
)

const (
	testUserEmail = "jane.doe@example.com"
	testRefresh   = "refresh-token-1"
)

func mintToken(t *testing.T, exp time.Time) string {
	t.Helper()
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"sub": "7",
		"iat": exp.Add(-time.Hour).Unix(),
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func testSession(t *testing.T, exp time.Time) session.Session {
	t.Helper()
	created := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	return session.Session{
		Tokens: session.Tokens{
			AccessToken:  mintToken(t, exp),
			RefreshToken: testRefresh,
			TokenType:    session.TokenTypeJWT,
			ExpiresIn:    3600,
			IssuedAt:     exp.Add(-time.Hour).Unix(),
		},
		User: session.User{
			ID:          7,
			Email:       testUserEmail,
			Role:        session.RoleEditor,
			FirstName:   "A",
			LastName:    "Doe",
			CreatedAt:   created,
			UpdatedAt:   created,
			LastLoginAt: utils.Ptr(created.Add(24 * time.Hour)),
		},
		Meta: session.Meta{
			Location: utils.Ptr("Santiago"),
			IsActive: true,
		},
	}
}

func validSession(t *testing.T) session.Session {
	return testSession(t, time.Now().Add(time.Hour))
}

func requireAtomic(t *testing.T, store *session.Store) {
	t.Helper()
	s, ok := store.Session()
	require.Equal(t, ok, store.IsLoggedIn())
	require.Equal(t, ok, s != nil)
	snap := store.Snapshot()
	require.Equal(t, snap.IsLoggedIn, snap.Session != nil)
	require.Equal(t, store.IsLoggedIn(), snap.IsLoggedIn)
}
