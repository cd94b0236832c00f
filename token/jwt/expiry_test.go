package jwt_test

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/book-inventory-client/token/jwt"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// unsignedToken encodes header and claims with an empty signature.
func unsignedToken(t *testing.T, header, claims map[string]any) string {
	t.Helper()
	h, err := json.Marshal(header)
	require.NoError(t, err)
	c, err := json.Marshal(claims)
	require.NoError(t, err)
	return base64.RawURLEncoding.EncodeToString(h) + "." + base64.RawURLEncoding.EncodeToString(c) + "."
}

func signToken(t *testing.T, claims jwtlib.MapClaims) string {
	t.Helper()
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestIsExpired(t *testing.T) {
	tests := []struct {
		name    string
		token   func(t *testing.T) string
		expired bool
	}{
		{
			name: "exp one second in the past",
			token: func(t *testing.T) string {
				return signToken(t, jwtlib.MapClaims{"sub": "1", "exp": fixedNow.Add(-time.Second).Unix()})
			},
			expired: true,
		},
		{
			name: "exp in the future",
			token: func(t *testing.T) string {
				return signToken(t, jwtlib.MapClaims{"sub": "1", "exp": fixedNow.Add(time.Hour).Unix()})
			},
			expired: false,
		},
		{
			name: "missing exp is not expired",
			token: func(t *testing.T) string {
				return signToken(t, jwtlib.MapClaims{"sub": "1"})
			},
			expired: false,
		},
		{
			name: "non numeric exp",
			token: func(t *testing.T) string {
				return signToken(t, jwtlib.MapClaims{"sub": "1", "exp": "tomorrow"})
			},
			expired: true,
		},
		{
			name: "non numeric iat with future exp",
			token: func(t *testing.T) string {
				return signToken(t, jwtlib.MapClaims{"iat": "yesterday", "exp": fixedNow.Add(time.Hour).Unix()})
			},
			expired: false,
		},
		{
			name: "no alg header with future exp",
			token: func(t *testing.T) string {
				return unsignedToken(t, map[string]any{"typ": "JWT"}, map[string]any{"exp": fixedNow.Add(time.Hour).Unix()})
			},
			expired: false,
		},
		{
			name: "unknown alg with future exp",
			token: func(t *testing.T) string {
				return unsignedToken(t, map[string]any{"alg": "ES256K", "typ": "JWT"}, map[string]any{"exp": fixedNow.Add(time.Hour).Unix()})
			},
			expired: false,
		},
		{
			name: "unknown alg with past exp",
			token: func(t *testing.T) string {
				return unsignedToken(t, map[string]any{"alg": "ES256K"}, map[string]any{"exp": fixedNow.Add(-time.Hour).Unix()})
			},
			expired: true,
		},
		{
			name:    "empty token",
			token:   func(t *testing.T) string { return "" },
			expired: true,
		},
		{
			name:    "not a jwt",
			token:   func(t *testing.T) string { return "not-a-jwt" },
			expired: true,
		},
		{
			name: "payload is not json",
			token: func(t *testing.T) string {
				garbage := base64.RawURLEncoding.EncodeToString([]byte("{{{"))
				return "eyJhbGciOiJIUzI1NiJ9." + garbage + ".sig"
			},
			expired: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expired, jwt.IsExpired(tt.token(t), fixedNow))
		})
	}
}

func TestIsExpired_IgnoresSignature(t *testing.T) {
	token := signToken(t, jwtlib.MapClaims{"exp": fixedNow.Add(time.Hour).Unix()})
	tampered := token[:len(token)-4] + "AAAA"
	require.False(t, jwt.IsExpired(tampered, fixedNow))
}

func TestIsExpiredNow(t *testing.T) {
	original := jwt.NowTimeFunc
	defer func() { jwt.NowTimeFunc = original }()
	jwt.NowTimeFunc = func() time.Time { return fixedNow }

	token := signToken(t, jwtlib.MapClaims{"exp": fixedNow.Add(-time.Minute).Unix()})
	require.True(t, jwt.IsExpiredNow(token))

	jwt.NowTimeFunc = func() time.Time { return fixedNow.Add(-2 * time.Minute) }
	require.False(t, jwt.IsExpiredNow(token))
}

func TestClaims(t *testing.T) {
	token := signToken(t, jwtlib.MapClaims{
		"sub": "42",
		"iat": fixedNow.Unix(),
		"exp": fixedNow.Add(time.Hour).Unix(),
	})

	claims, err := jwt.Claims(token)
	require.NoError(t, err)
	require.Equal(t, "42", claims.Subject)
	require.NotNil(t, claims.ExpiresAt)
	require.True(t, claims.ExpiresAt.Equal(fixedNow.Add(time.Hour)))
	require.NotNil(t, claims.IssuedAt)
	require.True(t, claims.IssuedAt.Equal(fixedNow))

	_, err = jwt.Claims("garbage")
	require.Error(t, err)
}
