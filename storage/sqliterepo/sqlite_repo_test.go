package sqliterepo_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/book-inventory-client/session"
	"github.com/jrsteele09/book-inventory-client/storage"
	"github.com/jrsteele09/book-inventory-client/storage/sqliterepo"
)

func TestSQLiteRepo(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db", "sessions.db")

	repo, err := sqliterepo.Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	_, err = repo.Get(ctx, "cmpc-session")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, repo.Set(ctx, "cmpc-session", []byte(`{"isLoggedIn":false}`)))
	require.NoError(t, repo.Set(ctx, "cmpc-session", []byte(`{"isLoggedIn":true}`)))
	got, err := repo.Get(ctx, "cmpc-session")
	require.NoError(t, err)
	require.Equal(t, `{"isLoggedIn":true}`, string(got))
}

func TestSQLiteRepo_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sessions.db")

	first, err := sqliterepo.Open(ctx, path)
	require.NoError(t, err)
	store := session.Boot(first)
	store.SetSession(session.Session{Tokens: session.Tokens{AccessToken: "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiI3In0.c2ln"}})
	require.NoError(t, first.Close())

	second, err := sqliterepo.Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { second.Close() })

	restored := session.Boot(second)
	require.True(t, restored.IsLoggedIn())
}
