// Package blacklist owns the per-instrument blacklist entries consulted by
// the transfer hook. The hot-path check is existence only; an entry's content
// is never decoded to decide a transfer.
package blacklist

import (
	"time"

	"mintgate/pkg/domain"
)

// MaxReasonLen bounds the stored reason string.
const MaxReasonLen = 100

// Entry is one blacklisted identity under one instrument configuration.
type Entry struct {
	Address domain.Address
	Config  domain.Address
	User    domain.Identity
	Reason  string

	CreatedAt time.Time
}
