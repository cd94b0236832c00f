// Package jwt reads the claims of bearer tokens on the client side.
//
// Nothing here verifies signatures. The backend owns verification; this
// package only decides whether a token is worth presenting at all.
package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/book-inventory-client/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// ExpiryClaims is the subset of registered claims the client cares about.
// Nil fields were absent from the token.
type ExpiryClaims struct {
	Subject   string
	ExpiresAt *time.Time
	IssuedAt  *time.Time
}

// Claims decodes rawToken without verifying it.
func Claims(rawToken string) (ExpiryClaims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return ExpiryClaims{}, apperrors.ErrInvalidToken
	}

	// An absent or unknown alg only blocks verification, and the claims were
	// decoded before the parser looked at it.
	token, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil && (token == nil || !errors.Is(err, jwtlib.ErrTokenUnverifiable)) {
		return ExpiryClaims{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidToken, err)
	}

	exp, err := token.Claims.GetExpirationTime()
	if err != nil {
		return ExpiryClaims{}, fmt.Errorf("%w: exp: %w", apperrors.ErrInvalidToken, err)
	}
	// iat is informational; an unreadable one is treated as absent.
	iat, _ := token.Claims.GetIssuedAt()
	sub, _ := token.Claims.GetSubject()

	claims := ExpiryClaims{Subject: sub}
	if exp != nil {
		claims.ExpiresAt = &exp.Time
	}
	if iat != nil {
		claims.IssuedAt = &iat.Time
	}
	return claims, nil
}

// IsExpired reports whether rawToken should no longer be presented at now.
// A token that cannot be decoded is expired. A token without an exp claim is not.
func IsExpired(rawToken string, now time.Time) bool {
	claims, err := Claims(rawToken)
	if err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(now)
}

// IsExpiredNow is IsExpired evaluated at NowTimeFunc().
func IsExpiredNow(rawToken string) bool {
	return IsExpired(rawToken, NowTimeFunc())
}
