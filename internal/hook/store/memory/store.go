// Package memory is the in-process hook store.
package memory

import (
	"context"
	"sync"
	"time"

	"mintgate/internal/hook"
	"mintgate/pkg/domain"
	"mintgate/pkg/platform/sentinel"
)

type row struct {
	payload   []byte
	createdAt time.Time
	updatedAt time.Time
}

// Store is an in-memory hook store.
type Store struct {
	mu   sync.RWMutex
	rows map[domain.Address]row
}

// New creates an empty store.
func New() *Store {
	return &Store{rows: make(map[domain.Address]row)}
}

// Create inserts a new hook config.
func (s *Store) Create(_ context.Context, cfg hook.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[cfg.Address]; ok {
		return sentinel.ErrConflict
	}
	s.rows[cfg.Address] = row{
		payload:   hook.EncodeConfig(cfg),
		createdAt: cfg.CreatedAt,
		updatedAt: cfg.UpdatedAt,
	}
	return nil
}

// Get loads a hook config by address.
func (s *Store) Get(_ context.Context, address domain.Address) (hook.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rows[address]
	if !ok {
		return hook.Config{}, sentinel.ErrNotFound
	}
	cfg, err := hook.DecodeConfig(r.payload)
	if err != nil {
		return hook.Config{}, err
	}
	cfg.Address = address
	cfg.CreatedAt = r.createdAt
	cfg.UpdatedAt = r.updatedAt
	return cfg, nil
}

// Update replaces an existing hook config.
func (s *Store) Update(_ context.Context, cfg hook.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[cfg.Address]
	if !ok {
		return sentinel.ErrNotFound
	}
	r.payload = hook.EncodeConfig(cfg)
	r.updatedAt = cfg.UpdatedAt
	s.rows[cfg.Address] = r
	return nil
}
