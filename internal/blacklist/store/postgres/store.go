// Package postgres persists blacklist entries. The Exists probe is a bare
// SELECT EXISTS on the primary key; the payload column is never read on the
// transfer hot path.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"mintgate/internal/blacklist"
	"mintgate/pkg/domain"
	"mintgate/pkg/platform/sentinel"
	txcontext "mintgate/pkg/platform/tx"
)

// Store is a PostgreSQL-backed blacklist store.
type Store struct {
	db *sql.DB
}

// New creates the store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Create inserts a new entry.
func (s *Store) Create(ctx context.Context, entry blacklist.Entry) error {
	query := `
		INSERT INTO blacklist_entries (address, config, payload, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		entry.Address.Bytes(),
		entry.Config.Bytes(),
		blacklist.EncodeEntry(entry),
		entry.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert blacklist entry: %w", err)
	}
	return nil
}

// Delete removes an entry.
func (s *Store) Delete(ctx context.Context, address domain.Address) error {
	res, err := s.execer(ctx).ExecContext(ctx,
		`DELETE FROM blacklist_entries WHERE address = $1`, address.Bytes())
	if err != nil {
		return fmt.Errorf("delete blacklist entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete blacklist entry: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// Find loads an entry by address.
func (s *Store) Find(ctx context.Context, address domain.Address) (blacklist.Entry, error) {
	query := `
		SELECT payload, created_at
		FROM blacklist_entries
		WHERE address = $1
	`
	var payload []byte
	var entry blacklist.Entry
	err := s.execer(ctx).QueryRowContext(ctx, query, address.Bytes()).
		Scan(&payload, &entry.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return blacklist.Entry{}, sentinel.ErrNotFound
	}
	if err != nil {
		return blacklist.Entry{}, fmt.Errorf("find blacklist entry: %w", err)
	}

	createdAt := entry.CreatedAt
	entry, err = blacklist.DecodeEntry(payload)
	if err != nil {
		return blacklist.Entry{}, err
	}
	entry.Address = address
	entry.CreatedAt = createdAt
	return entry, nil
}

// Exists reports whether an entry is present.
func (s *Store) Exists(ctx context.Context, address domain.Address) (bool, error) {
	var exists bool
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM blacklist_entries WHERE address = $1)`,
		address.Bytes(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check blacklist entry: %w", err)
	}
	return exists, nil
}
