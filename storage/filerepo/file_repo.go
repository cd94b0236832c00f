// Package filerepo stores each key as a file in a directory.
package filerepo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/jrsteele09/book-inventory-client/internal/errors"
	"github.com/jrsteele09/book-inventory-client/storage"
)

const fileExt = ".json"

var _ storage.Repo = (*FileRepo)(nil)

type FileRepo struct {
	dir string
}

// New creates dir (mode 0700) if it does not exist.
func New(dir string) (*FileRepo, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("[filerepo New] failed to create %s: %w", dir, err)
	}
	return &FileRepo{dir: dir}, nil
}

func (r *FileRepo) Dir() string {
	return r.dir
}

func (r *FileRepo) Get(_ context.Context, key string) ([]byte, error) {
	path, err := r.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[filerepo Get] %s: %w", key, err)
	}
	return data, nil
}

// Set writes to a temp file in the same directory, syncs it and renames it over
// the target, so readers never see a partially written value.
func (r *FileRepo) Set(_ context.Context, key string, value []byte) error {
	path, err := r.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(r.dir, "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("[filerepo Set] create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("[filerepo Set] write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("[filerepo Set] sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("[filerepo Set] close: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("[filerepo Set] chmod: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("[filerepo Set] rename: %w", err)
	}
	return nil
}

func (r *FileRepo) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("%w: key %q is not a valid file name", apperrors.ErrInvalidRequest, key)
	}
	return filepath.Join(r.dir, key+fileExt), nil
}
