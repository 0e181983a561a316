// Package hook owns the transfer validation configuration and the transfer
// shapes the validation gate consumes.
package hook

import (
	"time"

	"mintgate/pkg/domain"
)

// Config is the per-instrument hook configuration. Program identifies the
// issuance component the hook validates for; Asset is the back-reference to
// the owning instrument. Paused gates transfers independently of the
// instrument's own pause flag.
type Config struct {
	Address   domain.Address
	Asset     domain.AssetID
	Program   domain.Address
	Authority domain.Identity
	Paused    bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Party is one side of a transfer: the ledger account and its owner identity.
type Party struct {
	Account domain.AccountID
	Owner   domain.Identity
}

// Transfer is one proposed movement of the governed asset.
type Transfer struct {
	Asset  domain.AssetID
	Source Party
	Dest   Party
	Amount uint64
}
