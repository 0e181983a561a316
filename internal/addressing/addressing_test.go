package addressing

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
)

func TestDerive_Deterministic(t *testing.T) {
	a, err := Derive(NamespaceConfig, []byte("usdx"))
	require.NoError(t, err)
	b, err := Derive(NamespaceConfig, []byte("usdx"))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.False(t, a.IsNil())
}

func TestDerive_NamespaceSeparation(t *testing.T) {
	a, err := Derive(NamespaceConfig, []byte("usdx"))
	require.NoError(t, err)
	b, err := Derive(NamespaceHook, []byte("usdx"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "same inputs under different namespaces must not collide")
}

func TestDerive_InputBoundaries(t *testing.T) {
	// ["ab","c"] and ["a","bc"] must hash differently.
	a, err := Derive(NamespaceMinter, []byte("ab"), []byte("c"))
	require.NoError(t, err)
	b, err := Derive(NamespaceMinter, []byte("a"), []byte("bc"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "input boundaries must be part of the preimage")
}

func TestDerive_InputTooLong(t *testing.T) {
	_, err := Derive(NamespaceConfig, bytes.Repeat([]byte{0x41}, MaxInputLen+1))
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeInvalidInput, dErrors.CodeOf(err))
}

func TestDerive_EmptyNamespace(t *testing.T) {
	_, err := Derive("", []byte("usdx"))
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeInvalidInput, dErrors.CodeOf(err))
}

func TestMinterAddress_DistinctPerAuthority(t *testing.T) {
	config, err := ConfigAddress(domain.AssetID("usdx"))
	require.NoError(t, err)

	var alice, bob domain.Identity
	alice[0] = 0x01
	bob[0] = 0x02

	a, err := MinterAddress(config, alice)
	require.NoError(t, err)
	b, err := MinterAddress(config, bob)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestBlacklistAddress_KeyedByConfig(t *testing.T) {
	cfgA, err := ConfigAddress(domain.AssetID("usdx"))
	require.NoError(t, err)
	cfgB, err := ConfigAddress(domain.AssetID("eurx"))
	require.NoError(t, err)

	var user domain.Identity
	user[0] = 0x07

	a, err := BlacklistAddress(cfgA, user)
	require.NoError(t, err)
	b, err := BlacklistAddress(cfgB, user)
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "the same user under different configurations gets distinct entries")
}

func TestIssuanceProgram_StableAndDistinct(t *testing.T) {
	program := IssuanceProgram()
	assert.NotEqual(t, domain.Address{}, program)
	assert.Equal(t, program, IssuanceProgram())

	cfg, err := ConfigAddress(domain.AssetID("usdx"))
	require.NoError(t, err)
	assert.NotEqual(t, cfg, program)
}
