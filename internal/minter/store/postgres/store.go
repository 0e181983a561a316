// Package postgres persists minter records. Inside a transaction, Get locks
// the row so concurrent issuance against the same quota serializes.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"mintgate/internal/minter"
	"mintgate/pkg/domain"
	"mintgate/pkg/platform/sentinel"
	txcontext "mintgate/pkg/platform/tx"
)

// Store is a PostgreSQL-backed minter store.
type Store struct {
	db *sql.DB
}

// New creates the store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) execer(ctx context.Context) (dbExecutor, bool) {
	if tx, ok := txcontext.From(ctx); ok {
		return tx, true
	}
	return s.db, false
}

// Create inserts a new record.
func (s *Store) Create(ctx context.Context, rec minter.Record) error {
	query := `
		INSERT INTO minter_records (address, config, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	execer, _ := s.execer(ctx)
	_, err := execer.ExecContext(ctx, query,
		rec.Address.Bytes(),
		rec.Config.Bytes(),
		minter.EncodeRecord(rec),
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert minter record: %w", err)
	}
	return nil
}

// Get loads a record by address, locking the row when called inside a
// transaction.
func (s *Store) Get(ctx context.Context, address domain.Address) (minter.Record, error) {
	query := `
		SELECT payload, created_at, updated_at
		FROM minter_records
		WHERE address = $1
	`
	execer, inTx := s.execer(ctx)
	if inTx {
		query += " FOR UPDATE"
	}

	var payload []byte
	var rec minter.Record
	err := execer.QueryRowContext(ctx, query, address.Bytes()).
		Scan(&payload, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return minter.Record{}, sentinel.ErrNotFound
	}
	if err != nil {
		return minter.Record{}, fmt.Errorf("get minter record: %w", err)
	}

	createdAt, updatedAt := rec.CreatedAt, rec.UpdatedAt
	rec, err = minter.DecodeRecord(payload)
	if err != nil {
		return minter.Record{}, err
	}
	rec.Address = address
	rec.CreatedAt = createdAt
	rec.UpdatedAt = updatedAt
	return rec, nil
}

// Update replaces an existing record.
func (s *Store) Update(ctx context.Context, rec minter.Record) error {
	query := `
		UPDATE minter_records
		SET payload = $2, updated_at = $3
		WHERE address = $1
	`
	execer, _ := s.execer(ctx)
	res, err := execer.ExecContext(ctx, query,
		rec.Address.Bytes(),
		minter.EncodeRecord(rec),
		rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update minter record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update minter record: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// ListByConfig returns all records under a configuration, oldest first.
func (s *Store) ListByConfig(ctx context.Context, config domain.Address) ([]minter.Record, error) {
	query := `
		SELECT address, payload, created_at, updated_at
		FROM minter_records
		WHERE config = $1
		ORDER BY created_at
	`
	execer, _ := s.execer(ctx)
	rows, err := execer.QueryContext(ctx, query, config.Bytes())
	if err != nil {
		return nil, fmt.Errorf("list minter records: %w", err)
	}
	defer rows.Close()

	var out []minter.Record
	for rows.Next() {
		var addressBytes, payload []byte
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&addressBytes, &payload, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan minter record: %w", err)
		}
		rec, err := minter.DecodeRecord(payload)
		if err != nil {
			return nil, err
		}
		copy(rec.Address[:], addressBytes)
		rec.CreatedAt = createdAt
		rec.UpdatedAt = updatedAt
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate minter records: %w", err)
	}
	return out, nil
}
