// Package memory is the in-process blacklist store.
package memory

import (
	"context"
	"sync"
	"time"

	"mintgate/internal/blacklist"
	"mintgate/pkg/domain"
	"mintgate/pkg/platform/sentinel"
)

type row struct {
	payload   []byte
	createdAt time.Time
}

// Store is an in-memory blacklist store.
type Store struct {
	mu   sync.RWMutex
	rows map[domain.Address]row
}

// New creates an empty store.
func New() *Store {
	return &Store{rows: make(map[domain.Address]row)}
}

// Create inserts a new entry.
func (s *Store) Create(_ context.Context, entry blacklist.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[entry.Address]; ok {
		return sentinel.ErrConflict
	}
	s.rows[entry.Address] = row{
		payload:   blacklist.EncodeEntry(entry),
		createdAt: entry.CreatedAt,
	}
	return nil
}

// Delete removes an entry.
func (s *Store) Delete(_ context.Context, address domain.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[address]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.rows, address)
	return nil
}

// Find loads an entry by address.
func (s *Store) Find(_ context.Context, address domain.Address) (blacklist.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rows[address]
	if !ok {
		return blacklist.Entry{}, sentinel.ErrNotFound
	}
	entry, err := blacklist.DecodeEntry(r.payload)
	if err != nil {
		return blacklist.Entry{}, err
	}
	entry.Address = address
	entry.CreatedAt = r.createdAt
	return entry, nil
}

// Exists reports whether an entry is present without touching its payload.
func (s *Store) Exists(_ context.Context, address domain.Address) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rows[address]
	return ok, nil
}
