package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// PlayerStore is the key-value store holding one encoded record per player name.
type PlayerStore interface {
	// PutPlayer writes rec, replacing any record stored under the same name.
	PutPlayer(ctx context.Context, rec *PlayerStatRecord) error
	// PlayerNames lists every stored player name. Order is backend-defined.
	PlayerNames(ctx context.Context) ([]string, error)
	// GetPlayer returns the record for an exact name, or ErrNotFound.
	GetPlayer(ctx context.Context, name string) (*PlayerStatRecord, error)
	// Close releases backend connections.
	Close() error
}

// HealthChecker is implemented by backends that can ping their connection.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// MemoryStore keeps encoded records in process memory. It backs the CLI dry runs
// and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	players map[string]string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		players: make(map[string]string),
	}
}

// PutPlayer stores the encoded record
func (m *MemoryStore) PutPlayer(_ context.Context, rec *PlayerStatRecord) error {
	value, err := EncodeRecord(rec)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[rec.Player] = value
	return nil
}

// PlayerNames returns stored names sorted alphabetically
func (m *MemoryStore) PlayerNames(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.players))
	for name := range m.players {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// GetPlayer decodes the record stored under name
func (m *MemoryStore) GetPlayer(_ context.Context, name string) (*PlayerStatRecord, error) {
	m.mu.RLock()
	value, ok := m.players[name]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return DecodeRecord(name, value)
}

// Raw returns the encoded value stored for name.
func (m *MemoryStore) Raw(name string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.players[name]
	return value, ok
}

// Len returns the number of stored players
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.players)
}

// Close is a no-op for the in-memory store
func (m *MemoryStore) Close() error {
	return nil
}
