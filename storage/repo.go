// Package storage defines the durable key/value slot the session is persisted to.
package storage

import (
	"context"

	apperrors "github.com/jrsteele09/book-inventory-client/internal/errors"
)

var (
	// ErrNotFound is returned by Get when the key has never been written.
	ErrNotFound = apperrors.ErrNotFound
	// ErrCorrupt is returned when a stored value exists but cannot be read back.
	ErrCorrupt = apperrors.ErrCorrupt
)

// Repo is a durable key/value medium. Set must be durable when it returns.
// A logged-out session is written like any other value, so nothing deletes.
type Repo interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
