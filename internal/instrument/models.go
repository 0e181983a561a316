// Package instrument owns the per-asset configuration record: the master
// authority, the delegated compliance roles, and the feature flags that the
// other modules consult before acting.
package instrument

import (
	"time"

	"mintgate/pkg/domain"
)

// String field maxima, enforced at creation and on decode.
const (
	MaxNameLen   = 100
	MaxSymbolLen = 10
	MaxURILen    = 200
)

// Role names a delegated authority on an instrument.
type Role string

const (
	// RoleMaster may update roles, transfer authority and manage minters.
	RoleMaster Role = "master"
	// RolePauser may pause and unpause the instrument.
	RolePauser Role = "pauser"
	// RoleBlacklister may add and remove blacklist entries.
	RoleBlacklister Role = "blacklister"
	// RoleSeizer may seize tokens under the permanent delegate authority.
	RoleSeizer Role = "seizer"
)

// Config is the authoritative configuration of one instrument.
type Config struct {
	Address         domain.Address
	Asset           domain.AssetID
	MasterAuthority domain.Identity
	Blacklister     domain.Identity
	Pauser          domain.Identity
	Seizer          domain.Identity

	Name     string
	Symbol   string
	URI      string
	Decimals uint8

	Paused        bool
	EnableSeize   bool
	EnableHook    bool
	DefaultFrozen bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Holder returns the identity holding a role.
func (c Config) Holder(role Role) domain.Identity {
	switch role {
	case RoleMaster:
		return c.MasterAuthority
	case RolePauser:
		return c.Pauser
	case RoleBlacklister:
		return c.Blacklister
	case RoleSeizer:
		return c.Seizer
	}
	return domain.Identity{}
}
