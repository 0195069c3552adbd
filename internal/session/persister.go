package session

import (
	"context"
	"errors"
	"sync"

	"github.com/placementcell/portal/internal/models"
)

// ErrNotFound is returned by a Persister when no session is stored under a key
var ErrNotFound = errors.New("session not found")

// Record is the persisted form of a session
type Record struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Persister stores sessions across process restarts or page loads.
// This allows the keyring and Redis to be swapped for memory in tests.
type Persister interface {
	Load(ctx context.Context, key string) (*Record, error)
	Save(ctx context.Context, key string, record *Record) error
	Delete(ctx context.Context, key string) error
}

// MemoryPersister keeps sessions in a map
type MemoryPersister struct {
	mu      sync.Mutex
	records map[string]Record
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{records: make(map[string]Record)}
}

func (m *MemoryPersister) Load(_ context.Context, key string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *MemoryPersister) Save(_ context.Context, key string, record *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = *record
	return nil
}

func (m *MemoryPersister) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, key)
	return nil
}
