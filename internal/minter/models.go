// Package minter owns the per-authority issuance records: who may mint an
// instrument, how much they may ever mint, and how much they have minted.
package minter

import (
	"time"

	"mintgate/pkg/domain"
)

// Record tracks one minting authority on one instrument. Minted only grows;
// revocation zeroes the quota but keeps the record so the issuance history
// stays attributable.
type Record struct {
	Address   domain.Address
	Config    domain.Address
	Authority domain.Identity
	Quota     uint64
	Minted    uint64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Remaining returns the unminted portion of the quota. A quota below the
// minted total (possible after a quota reduction) leaves nothing to mint.
func (r Record) Remaining() uint64 {
	if r.Quota <= r.Minted {
		return 0
	}
	return r.Quota - r.Minted
}
