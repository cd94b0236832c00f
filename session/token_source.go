package session

import (
	"golang.org/x/oauth2"

	apperrors "github.com/jrsteele09/book-inventory-client/internal/errors"
)

// ErrNotLoggedIn is returned by the token source when there is no session.
var ErrNotLoggedIn = apperrors.ErrNotLoggedIn

// OAuth2Token converts the tokens for use with golang.org/x/oauth2. The type
// is always "Bearer": TokenType describes the token format, not the scheme.
func (t Tokens) OAuth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       t.Expiry(),
	}
}

// TokenSource reads the access token from the store on every call, so a
// session ended mid-flight stops authenticating further requests at once.
func (s *Store) TokenSource() oauth2.TokenSource {
	return storeTokenSource{store: s}
}

type storeTokenSource struct {
	store *Store
}

func (ts storeTokenSource) Token() (*oauth2.Token, error) {
	s, ok := ts.store.Session()
	if !ok || s.Tokens.AccessToken == "" {
		return nil, ErrNotLoggedIn
	}
	return s.Tokens.OAuth2Token(), nil
}
