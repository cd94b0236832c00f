package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/book-inventory-client/storage"
	"github.com/jrsteele09/book-inventory-client/token/jwt"
)

// DefaultKey is the durable slot the session lives under.
const DefaultKey = "cmpc-session"

var _ Persister = (*Persistence)(nil)

// Persistence saves and restores a Store's slice in a storage.Repo.
type Persistence struct {
	repo   storage.Repo
	key    string
	logger zerolog.Logger
}

// PersistenceOption configures NewPersistence and Boot.
type PersistenceOption func(*Persistence)

// WithKey overrides DefaultKey.
func WithKey(key string) PersistenceOption {
	return func(p *Persistence) { p.key = key }
}

// WithPersistenceLogger sets the logger for rehydration decisions and failures.
func WithPersistenceLogger(logger zerolog.Logger) PersistenceOption {
	return func(p *Persistence) { p.logger = logger }
}

// NewPersistence stores slices in repo under DefaultKey unless WithKey says otherwise.
func NewPersistence(repo storage.Repo, opts ...PersistenceOption) *Persistence {
	p := &Persistence{
		repo:   repo,
		key:    DefaultKey,
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Key is the slot name in use.
func (p *Persistence) Key() string {
	return p.key
}

// Save serialises slice under the fixed key. It returns once the repo has
// accepted the write.
func (p *Persistence) Save(slice Slice) error {
	slice.IsLoggedIn = slice.Session != nil
	data, err := json.Marshal(slice)
	if err != nil {
		return fmt.Errorf("[Persistence Save] marshal: %w", err)
	}
	if err := p.repo.Set(context.Background(), p.key, data); err != nil {
		return fmt.Errorf("[Persistence Save] %s: %w", p.key, err)
	}
	return nil
}

// Load reads the persisted slice. It returns nil, nil when the slot is empty
// or its content is unreadable; only failures of the medium itself are errors.
func (p *Persistence) Load() (*Slice, error) {
	data, err := p.repo.Get(context.Background(), p.key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil, nil
	case errors.Is(err, storage.ErrCorrupt):
		p.logger.Warn().Err(err).Str("key", p.key).Msg("Persisted session is unreadable, ignoring it")
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("[Persistence Load] %s: %w", p.key, err)
	}

	var slice Slice
	if err := json.Unmarshal(data, &slice); err != nil {
		p.logger.Warn().Err(err).Str("key", p.key).Msg("Persisted session is not valid JSON, ignoring it")
		return nil, nil
	}
	return &slice, nil
}

// Rehydrate restores the persisted session into store, unless it is stale.
//
// A session survives only when the slice is well formed, its isLoggedIn flag
// agrees with it, and its access token decodes with an exp that has not
// passed. Anything else ends the session, which also overwrites the slot.
// Rehydrate never panics and never returns an error: every failure is "logged out".
func (p *Persistence) Rehydrate(store *Store) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().Interface("panic", r).Msg("Recovered while rehydrating session")
			store.EndSession()
		}
	}()

	slice, err := p.Load()
	if err != nil {
		p.logger.Err(err).Msg("Failed to load persisted session, starting logged out")
		return
	}
	if slice == nil {
		return
	}

	if reason := p.invalidReason(slice); reason != "" {
		p.logger.Info().Str("reason", reason).Msg("Discarding persisted session")
		store.EndSession()
		return
	}
	store.restore(slice.Session)
}

func (p *Persistence) invalidReason(slice *Slice) string {
	switch {
	case slice.Session == nil && !slice.IsLoggedIn:
		return ""
	case slice.Session == nil:
		return "logged in without a session"
	case !slice.IsLoggedIn:
		return "session present while logged out"
	case slice.Session.Tokens.AccessToken == "":
		return "missing access token"
	case jwt.IsExpiredNow(slice.Session.Tokens.AccessToken):
		return "access token expired or invalid"
	}
	return ""
}

// Boot builds a Store backed by repo and rehydrates it. The returned store is
// ready: a stale persisted session has already been discarded.
func Boot(repo storage.Repo, opts ...PersistenceOption) *Store {
	p := NewPersistence(repo, opts...)
	store := NewStore(WithPersister(p), WithLogger(p.logger))
	p.Rehydrate(store)
	return store
}
