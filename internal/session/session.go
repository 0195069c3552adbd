// Package session owns the in-memory view of the current visitor's
// authentication state. A Store is shared by the API client (which tears it
// down on 401) and the route guard (which reads it before rendering).
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/placementcell/portal/internal/models"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrMissingUser  = errors.New("missing user")
)

// Snapshot is a point-in-time copy of the session state
type Snapshot struct {
	Token           string
	User            *models.User
	IsAuthenticated bool
	IsLoading       bool
}

// Role returns the session user's role, or "" when there is no user
func (s Snapshot) Role() models.Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// Store holds one visitor's session. All mutations go through its methods.
type Store struct {
	mu        sync.Mutex
	key       string
	persister Persister
	logger    zerolog.Logger

	token   string
	user    *models.User
	loading bool

	listeners []func(Snapshot)
}

// NewStore creates a store in the loading, unauthenticated state.
// key identifies the session in the persister; persister may be nil.
func NewStore(key string, persister Persister, logger zerolog.Logger) *Store {
	return &Store{
		key:       key,
		persister: persister,
		logger:    logger,
		loading:   true,
	}
}

// Key returns the persister key of this session
func (s *Store) Key() string {
	return s.key
}

// Snapshot returns the current session state
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	var user *models.User
	if s.user != nil {
		u := *s.user
		user = &u
	}
	return Snapshot{
		Token:           s.token,
		User:            user,
		IsAuthenticated: s.token != "" && s.user != nil,
		IsLoading:       s.loading,
	}
}

// Token returns the current bearer token, or "" when logged out
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Subscribe registers fn to be called with the new state after every mutation.
func (s *Store) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Resolve finishes boot-up by restoring a persisted session, if any.
// The store always leaves the loading state, even on error.
func (s *Store) Resolve(ctx context.Context) error {
	var (
		record *Record
		err    error
	)
	if s.persister != nil {
		record, err = s.persister.Load(ctx, s.key)
		if errors.Is(err, ErrNotFound) {
			err = nil
		}
	}

	if record != nil && record.Token != "" && record.User != nil {
		if exp, ok := TokenExpiry(record.Token); ok && !exp.After(time.Now()) {
			s.logger.Debug().Str("session", s.key).Time("expired_at", exp).Msg("Discarding expired persisted session")
			if derr := s.persister.Delete(ctx, s.key); derr != nil {
				s.logger.Warn().Err(derr).Str("session", s.key).Msg("Failed to delete expired session")
			}
			record = nil
		}
	} else {
		record = nil
	}

	s.mu.Lock()
	if record != nil {
		s.token = record.Token
		user := *record.User
		s.user = &user
	}
	s.loading = false
	snap, listeners := s.snapshotLocked(), s.listenersLocked()
	s.mu.Unlock()

	s.notify(listeners, snap)

	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	return nil
}

// Login populates the session after a successful authentication
func (s *Store) Login(ctx context.Context, token string, user *models.User) error {
	if token == "" {
		return ErrMissingToken
	}
	if user == nil {
		return ErrMissingUser
	}

	u := *user
	// The session only becomes visible once it is durable
	if s.persister != nil {
		if err := s.persister.Save(ctx, s.key, &Record{Token: token, User: &u}); err != nil {
			return fmt.Errorf("failed to persist session: %w", err)
		}
	}

	s.mu.Lock()
	s.token = token
	s.user = &u
	s.loading = false
	snap, listeners := s.snapshotLocked(), s.listenersLocked()
	s.mu.Unlock()

	s.notify(listeners, snap)
	return nil
}

// Logout clears the session and its persisted copy
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.clearLocked()
	snap, listeners := s.snapshotLocked(), s.listenersLocked()
	s.mu.Unlock()

	s.notify(listeners, snap)
	return s.deletePersisted(ctx)
}

// Expire tears the session down after the backend rejected token.
// Only the first caller for the current token clears anything; it returns true.
func (s *Store) Expire(ctx context.Context, token string) bool {
	s.mu.Lock()
	if s.token != token || (s.token == "" && s.user == nil) {
		// A rejection still settles a store that never resolved
		if !s.loading {
			s.mu.Unlock()
			return false
		}
		s.loading = false
		snap, listeners := s.snapshotLocked(), s.listenersLocked()
		s.mu.Unlock()
		s.notify(listeners, snap)
		return false
	}
	s.clearLocked()
	snap, listeners := s.snapshotLocked(), s.listenersLocked()
	s.mu.Unlock()

	s.logger.Info().Str("session", s.key).Msg("Session expired, tearing down")
	s.notify(listeners, snap)

	if err := s.deletePersisted(ctx); err != nil {
		s.logger.Warn().Err(err).Str("session", s.key).Msg("Failed to delete persisted session")
	}
	return true
}

func (s *Store) clearLocked() {
	s.token = ""
	s.user = nil
	s.loading = false
}

func (s *Store) listenersLocked() []func(Snapshot) {
	return append([]func(Snapshot){}, s.listeners...)
}

func (s *Store) notify(listeners []func(Snapshot), snap Snapshot) {
	for _, fn := range listeners {
		fn(snap)
	}
}

func (s *Store) deletePersisted(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	if err := s.persister.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
