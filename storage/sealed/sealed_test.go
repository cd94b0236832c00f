package sealed_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/book-inventory-client/storage"
	"github.com/jrsteele09/book-inventory-client/storage/repofake"
	"github.com/jrsteele09/book-inventory-client/storage/sealed"
	"github.com/stretchr/testify/require"
)

func TestSealedRepo(t *testing.T) {
	ctx := context.Background()
	backing := repofake.NewFakeRepo()
	repo := sealed.New(backing, "correct horse")
	plain := []byte(`{"session":null,"isLoggedIn":false}`)

	require.NoError(t, repo.Set(ctx, "cmpc-session", plain))

	t.Run("ciphertext does not contain plaintext", func(t *testing.T) {
		raw, ok := backing.Raw("cmpc-session")
		require.True(t, ok)
		require.NotContains(t, string(raw), "isLoggedIn")
	})

	t.Run("round trip", func(t *testing.T) {
		got, err := repo.Get(ctx, "cmpc-session")
		require.NoError(t, err)
		require.Equal(t, plain, got)
	})

	t.Run("fresh instance with same passphrase reads it", func(t *testing.T) {
		got, err := sealed.New(backing, "correct horse").Get(ctx, "cmpc-session")
		require.NoError(t, err)
		require.Equal(t, plain, got)
	})

	t.Run("wrong passphrase is corrupt", func(t *testing.T) {
		_, err := sealed.New(backing, "battery staple").Get(ctx, "cmpc-session")
		require.ErrorIs(t, err, storage.ErrCorrupt)
	})

	t.Run("truncated value is corrupt", func(t *testing.T) {
		require.NoError(t, backing.Set(ctx, "short", []byte("abc")))
		_, err := repo.Get(ctx, "short")
		require.ErrorIs(t, err, storage.ErrCorrupt)
	})

	t.Run("missing key passes through", func(t *testing.T) {
		_, err := repo.Get(ctx, "missing")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})
}
