package instrument

import (
	"context"

	"mintgate/pkg/domain"
)

// Store persists instrument configurations keyed by derived address.
// Implementations return sentinel.ErrConflict from Create when the address is
// taken and sentinel.ErrNotFound from Get and Update when it is absent.
type Store interface {
	Create(ctx context.Context, cfg Config) error
	Get(ctx context.Context, address domain.Address) (Config, error)
	Update(ctx context.Context, cfg Config) error
}
