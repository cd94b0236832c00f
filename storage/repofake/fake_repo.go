package repofake

import (
	"context"
	"sync"

	"github.com/jrsteele09/book-inventory-client/storage"
)

var _ storage.Repo = (*FakeRepo)(nil)

// FakeRepo is an in-memory storage.Repo. It also counts writes so tests can
// assert on write-through behaviour.
type FakeRepo struct {
	values map[string][]byte
	writes int
	lock   sync.RWMutex
}

func NewFakeRepo() *FakeRepo {
	return &FakeRepo{
		values: make(map[string][]byte),
	}
}

func (r *FakeRepo) Get(_ context.Context, key string) ([]byte, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	v, ok := r.values[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (r *FakeRepo) Set(_ context.Context, key string, value []byte) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.values[key] = append([]byte(nil), value...)
	r.writes++
	return nil
}

// Writes returns the number of Set calls seen so far.
func (r *FakeRepo) Writes() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.writes
}

// Raw returns the stored bytes for test assertions.
func (r *FakeRepo) Raw(key string) ([]byte, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	v, ok := r.values[key]
	return v, ok
}
