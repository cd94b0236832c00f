// Package sealed encrypts values at rest before handing them to another storage.Repo.
//
// Layout of a sealed value: salt (16) | nonce (24) | secretbox output.
// The key is derived from a passphrase with Argon2id and the per-value salt.
package sealed

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/jrsteele09/book-inventory-client/storage"
)

const (
	saltSize  = 16
	nonceSize = 24
	keySize   = 32

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

var _ storage.Repo = (*Repo)(nil)

type Repo struct {
	next       storage.Repo
	passphrase []byte

	mu       sync.Mutex
	lastSalt []byte
	lastKey  *[keySize]byte
}

func New(next storage.Repo, passphrase string) *Repo {
	return &Repo{
		next:       next,
		passphrase: []byte(passphrase),
	}
}

func (r *Repo) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := r.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < saltSize+nonceSize+secretbox.Overhead {
		return nil, fmt.Errorf("[sealed Get] %s: %w: value too short", key, storage.ErrCorrupt)
	}

	salt := sealed[:saltSize]
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[saltSize:saltSize+nonceSize])

	plain, ok := secretbox.Open(nil, sealed[saltSize+nonceSize:], &nonce, r.derive(salt))
	if !ok {
		return nil, fmt.Errorf("[sealed Get] %s: %w: authentication failed", key, storage.ErrCorrupt)
	}
	return plain, nil
}

func (r *Repo) Set(ctx context.Context, key string, value []byte) error {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("[sealed Set] salt: %w", err)
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return fmt.Errorf("[sealed Set] nonce: %w", err)
	}

	out := make([]byte, 0, saltSize+nonceSize+len(value)+secretbox.Overhead)
	out = append(out, salt...)
	out = append(out, nonce[:]...)
	out = secretbox.Seal(out, value, &nonce, r.derive(salt))
	return r.next.Set(ctx, key, out)
}

// derive caches the key for the most recently seen salt.
func (r *Repo) derive(salt []byte) *[keySize]byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lastKey != nil && bytes.Equal(salt, r.lastSalt) {
		return r.lastKey
	}
	var key [keySize]byte
	copy(key[:], argon2.IDKey(r.passphrase, salt, argonTime, argonMemory, argonThreads, keySize))
	r.lastSalt = append([]byte(nil), salt...)
	r.lastKey = &key
	return &key
}
