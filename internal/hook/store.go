package hook

import (
	"context"

	"mintgate/pkg/domain"
)

// Store persists hook configurations keyed by derived address. Create returns
// sentinel.ErrConflict for a taken address; Get and Update return
// sentinel.ErrNotFound for a missing one.
type Store interface {
	Create(ctx context.Context, cfg Config) error
	Get(ctx context.Context, address domain.Address) (Config, error)
	Update(ctx context.Context, cfg Config) error
}
