// Package memory is the in-process instrument store used in development and
// unit tests. It stores the encoded record bytes rather than live structs so
// the codec path is exercised exactly as it is against PostgreSQL.
package memory

import (
	"context"
	"sync"
	"time"

	"mintgate/internal/instrument"
	"mintgate/pkg/domain"
	"mintgate/pkg/platform/sentinel"
)

type row struct {
	payload   []byte
	createdAt time.Time
	updatedAt time.Time
}

// Store is an in-memory instrument store.
type Store struct {
	mu   sync.RWMutex
	rows map[domain.Address]row
}

// New creates an empty store.
func New() *Store {
	return &Store{rows: make(map[domain.Address]row)}
}

// Create inserts a new configuration.
func (s *Store) Create(_ context.Context, cfg instrument.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[cfg.Address]; ok {
		return sentinel.ErrConflict
	}
	s.rows[cfg.Address] = row{
		payload:   instrument.EncodeConfig(cfg),
		createdAt: cfg.CreatedAt,
		updatedAt: cfg.UpdatedAt,
	}
	return nil
}

// Get loads a configuration by address.
func (s *Store) Get(_ context.Context, address domain.Address) (instrument.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rows[address]
	if !ok {
		return instrument.Config{}, sentinel.ErrNotFound
	}
	cfg, err := instrument.DecodeConfig(r.payload)
	if err != nil {
		return instrument.Config{}, err
	}
	cfg.Address = address
	cfg.CreatedAt = r.createdAt
	cfg.UpdatedAt = r.updatedAt
	return cfg, nil
}

// Update replaces an existing configuration.
func (s *Store) Update(_ context.Context, cfg instrument.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[cfg.Address]
	if !ok {
		return sentinel.ErrNotFound
	}
	r.payload = instrument.EncodeConfig(cfg)
	r.updatedAt = cfg.UpdatedAt
	s.rows[cfg.Address] = r
	return nil
}
