package instrument

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
)

func TestAuthorize(t *testing.T) {
	var master, pauser, outsider domain.Identity
	master[0] = 0x01
	pauser[0] = 0x02
	outsider[0] = 0x03

	cfg := Config{
		MasterAuthority: master,
		Blacklister:     master,
		Pauser:          pauser,
		Seizer:          master,
	}

	assert.NoError(t, Authorize(cfg, RoleMaster, master))
	assert.NoError(t, Authorize(cfg, RolePauser, pauser))

	// No role hierarchy: master does not imply pauser.
	err := Authorize(cfg, RolePauser, master)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))

	err = Authorize(cfg, RoleSeizer, outsider)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))
}

func TestAuthorize_NilActor(t *testing.T) {
	cfg := Config{}
	err := Authorize(cfg, RoleMaster, domain.Identity{})
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))
}

func TestAuthorize_UnknownRole(t *testing.T) {
	var actor domain.Identity
	actor[0] = 0x01
	err := Authorize(Config{MasterAuthority: actor}, Role("treasurer"), actor)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))
}
