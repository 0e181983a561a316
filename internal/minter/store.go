package minter

import (
	"context"

	"mintgate/pkg/domain"
)

// Store persists minter records keyed by derived address. Create returns
// sentinel.ErrConflict for a taken address; Get and Update return
// sentinel.ErrNotFound for a missing one. Implementations backed by SQL take
// a row lock in Get when the context carries a transaction, so concurrent
// issuance serializes on the record.
type Store interface {
	Create(ctx context.Context, rec Record) error
	Get(ctx context.Context, address domain.Address) (Record, error)
	Update(ctx context.Context, rec Record) error
	ListByConfig(ctx context.Context, config domain.Address) ([]Record, error)
}
