package session

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Persister receives the store's slice after every mutation, before the
// mutating call returns.
type Persister interface {
	Save(slice Slice) error
}

// Store is the single source of truth for the current session. It is built
// once at start-up and handed to whatever needs it; see Boot.
//
// IsLoggedIn is derived from the session pointer, so the two can never disagree.
type Store struct {
	mu        sync.RWMutex
	session   *Session
	persister Persister
	logger    zerolog.Logger
}

// StoreOption configures a Store built by NewStore.
type StoreOption func(*Store)

// WithPersister makes every mutation write through to p.
func WithPersister(p Persister) StoreOption {
	return func(s *Store) { s.persister = p }
}

// WithLogger sets the logger used to report persistence failures.
func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// NewStore returns an empty, logged-out store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{logger: log.Logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetSession replaces any prior session wholesale. Token freshness is not checked.
func (s *Store) SetSession(session Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = session.Clone()
	s.persistLocked()
}

// UpdateUser merges the set fields of upd into the current user.
// Tokens and Meta are untouched. Without a session it does nothing.
func (s *Store) UpdateUser(upd UserUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return
	}
	next := s.session.Clone()
	upd.applyTo(&next.User)
	s.session = next
	s.persistLocked()
}

// EndSession drops the session. It is safe to call repeatedly and with no session.
func (s *Store) EndSession() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = nil
	s.persistLocked()
}

// IsLoggedIn reports whether a session is present.
func (s *Store) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session != nil
}

// AccessToken returns the current access token, or false when there is none.
func (s *Store) AccessToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil || s.session.Tokens.AccessToken == "" {
		return "", false
	}
	return s.session.Tokens.AccessToken, true
}

// RefreshToken is AccessToken for the refresh token.
func (s *Store) RefreshToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil || s.session.Tokens.RefreshToken == "" {
		return "", false
	}
	return s.session.Tokens.RefreshToken, true
}

// User returns a copy of the logged-in user.
func (s *Store) User() (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil, false
	}
	u := s.session.User.clone()
	return &u, true
}

// Session returns a copy of the whole session.
func (s *Store) Session() (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil, false
	}
	return s.session.Clone(), true
}

// Snapshot returns the persisted slice as it stands now.
func (s *Store) Snapshot() Slice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sliceLocked()
}

// restore loads a rehydrated session without writing it back.
func (s *Store) restore(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session.Clone()
}

func (s *Store) sliceLocked() Slice {
	return Slice{
		Session:    s.session.Clone(),
		IsLoggedIn: s.session != nil,
	}
}

// persistLocked writes through to the persister. Failures are logged only;
// the in-memory state stays authoritative for this process.
func (s *Store) persistLocked() {
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(s.sliceLocked()); err != nil {
		s.logger.Err(err).Bool("logged_in", s.session != nil).Msg("Failed to persist session")
	}
}
