// Package memory is the in-process minter store. Rows hold encoded record
// bytes so the codec path matches the PostgreSQL store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"mintgate/internal/minter"
	"mintgate/pkg/domain"
	"mintgate/pkg/platform/sentinel"
)

type row struct {
	payload   []byte
	createdAt time.Time
	updatedAt time.Time
}

// Store is an in-memory minter store.
type Store struct {
	mu   sync.RWMutex
	rows map[domain.Address]row
}

// New creates an empty store.
func New() *Store {
	return &Store{rows: make(map[domain.Address]row)}
}

// Create inserts a new record.
func (s *Store) Create(_ context.Context, rec minter.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[rec.Address]; ok {
		return sentinel.ErrConflict
	}
	s.rows[rec.Address] = row{
		payload:   minter.EncodeRecord(rec),
		createdAt: rec.CreatedAt,
		updatedAt: rec.UpdatedAt,
	}
	return nil
}

// Get loads a record by address.
func (s *Store) Get(_ context.Context, address domain.Address) (minter.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.decode(address)
}

// Update replaces an existing record.
func (s *Store) Update(_ context.Context, rec minter.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[rec.Address]
	if !ok {
		return sentinel.ErrNotFound
	}
	r.payload = minter.EncodeRecord(rec)
	r.updatedAt = rec.UpdatedAt
	s.rows[rec.Address] = r
	return nil
}

// ListByConfig returns all records under a configuration, oldest first.
func (s *Store) ListByConfig(_ context.Context, config domain.Address) ([]minter.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []minter.Record
	for address := range s.rows {
		rec, err := s.decode(address)
		if err != nil {
			return nil, err
		}
		if rec.Config == config {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) decode(address domain.Address) (minter.Record, error) {
	r, ok := s.rows[address]
	if !ok {
		return minter.Record{}, sentinel.ErrNotFound
	}
	rec, err := minter.DecodeRecord(r.payload)
	if err != nil {
		return minter.Record{}, err
	}
	rec.Address = address
	rec.CreatedAt = r.createdAt
	rec.UpdatedAt = r.updatedAt
	return rec, nil
}
