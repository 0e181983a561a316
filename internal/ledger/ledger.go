// Package ledger abstracts the external token ledger. This service is the
// control plane; all balance mutation happens on the ledger, and the types
// here are the contract for requesting it.
package ledger

import (
	"context"

	"mintgate/pkg/domain"
)

// Ledger executes balance operations on the external token ledger.
//
// Freeze and Thaw are pass-throughs: the ledger owns frozen state and this
// service does not second-guess it. TransferWithAuthority moves tokens under
// the instrument's permanent delegate authority, overriding frozen state on
// the source account.
type Ledger interface {
	Mint(ctx context.Context, asset domain.AssetID, dest domain.AccountID, amount uint64, decimals uint8) error
	Burn(ctx context.Context, asset domain.AssetID, source domain.AccountID, amount uint64, decimals uint8) error
	Freeze(ctx context.Context, asset domain.AssetID, account domain.AccountID) error
	Thaw(ctx context.Context, asset domain.AssetID, account domain.AccountID) error
	TransferWithAuthority(ctx context.Context, asset domain.AssetID, source, dest domain.AccountID, amount uint64, decimals uint8) error
}
