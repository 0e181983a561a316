// Package postgres persists instrument configurations. Rows carry the
// encoded record payload; the address column is the derived lookup key.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"mintgate/internal/instrument"
	"mintgate/pkg/domain"
	"mintgate/pkg/platform/sentinel"
	txcontext "mintgate/pkg/platform/tx"
)

// Store is a PostgreSQL-backed instrument store.
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

// Create inserts a new configuration.
func (s *Store) Create(ctx context.Context, cfg instrument.Config) error {
	query := `
		INSERT INTO instrument_configs (address, asset, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		cfg.Address.Bytes(),
		cfg.Asset.String(),
		instrument.EncodeConfig(cfg),
		cfg.CreatedAt,
		cfg.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert instrument config: %w", err)
	}
	return nil
}

// Get loads a configuration by address.
func (s *Store) Get(ctx context.Context, address domain.Address) (instrument.Config, error) {
	query := `
		SELECT payload, created_at, updated_at
		FROM instrument_configs
		WHERE address = $1
	`
	var payload []byte
	var cfg instrument.Config
	err := s.execer(ctx).QueryRowContext(ctx, query, address.Bytes()).
		Scan(&payload, &cfg.CreatedAt, &cfg.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return instrument.Config{}, sentinel.ErrNotFound
	}
	if err != nil {
		return instrument.Config{}, fmt.Errorf("get instrument config: %w", err)
	}

	createdAt, updatedAt := cfg.CreatedAt, cfg.UpdatedAt
	cfg, err = instrument.DecodeConfig(payload)
	if err != nil {
		return instrument.Config{}, err
	}
	cfg.Address = address
	cfg.CreatedAt = createdAt
	cfg.UpdatedAt = updatedAt
	return cfg, nil
}

// Update replaces an existing configuration.
func (s *Store) Update(ctx context.Context, cfg instrument.Config) error {
	query := `
		UPDATE instrument_configs
		SET payload = $2, updated_at = $3
		WHERE address = $1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		cfg.Address.Bytes(),
		instrument.EncodeConfig(cfg),
		cfg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update instrument config: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update instrument config: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
