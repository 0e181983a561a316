package instrument

import (
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
)

// Authorize verifies that actor holds the given role on the instrument.
// Authorization is pure identity equality; there is no role hierarchy, so the
// master authority cannot act as pauser unless it also holds that role.
func Authorize(c Config, role Role, actor domain.Identity) error {
	holder := c.Holder(role)
	if holder.IsNil() || actor.IsNil() || holder != actor {
		return dErrors.Newf(dErrors.CodeUnauthorized, "identity does not hold the %s role", role)
	}
	return nil
}
