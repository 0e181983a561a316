package hook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mintgate/internal/record"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
)

func sampleHookConfig() Config {
	var program domain.Address
	var authority domain.Identity
	program[0] = 0x50
	authority[0] = 0x01
	return Config{
		Asset:     domain.AssetID("usdx"),
		Program:   program,
		Authority: authority,
		Paused:    true,
	}
}

func TestHookConfigCodec_RoundTrip(t *testing.T) {
	want := sampleHookConfig()
	got, err := DecodeConfig(EncodeConfig(want))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestEncodeConfig_FieldOrder(t *testing.T) {
	// Owning instrument first, then the issuance program reference, the
	// authority, and the pause flag.
	cfg := sampleHookConfig()
	r, err := record.NewReader(record.KindHook, EncodeConfig(cfg))
	require.NoError(t, err)

	assert.Equal(t, string(cfg.Asset), r.ReadString(domain.MaxAssetIDLen))
	assert.Equal(t, [32]byte(cfg.Program), r.ReadBytes32())
	assert.Equal(t, [32]byte(cfg.Authority), r.ReadBytes32())
	assert.Equal(t, cfg.Paused, r.ReadBool())
	require.NoError(t, r.Finish())
}

func TestDecodeConfig_WrongKind(t *testing.T) {
	w := record.NewWriter(record.KindBlacklist)
	w.WriteU64(1)
	_, err := DecodeConfig(w.Bytes())
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeInvalidAccount, dErrors.CodeOf(err))
}
