package blacklist

import (
	"context"

	"mintgate/pkg/domain"
)

// Store persists blacklist entries keyed by derived address. Create returns
// sentinel.ErrConflict for a taken address; Delete and Find return
// sentinel.ErrNotFound for a missing one.
//
// Exists is the hot-path probe: implementations answer it without reading or
// decoding the entry payload.
type Store interface {
	Create(ctx context.Context, entry Entry) error
	Delete(ctx context.Context, address domain.Address) error
	Find(ctx context.Context, address domain.Address) (Entry, error)
	Exists(ctx context.Context, address domain.Address) (bool, error)
}
