package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIdentity(t *testing.T) {
	t.Run("valid hex round-trips", func(t *testing.T) {
		raw := strings.Repeat("ab", 32)
		id, err := ParseIdentity(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, id.String())
		assert.False(t, id.IsNil())
	})

	t.Run("wrong length rejected", func(t *testing.T) {
		_, err := ParseIdentity("abcd")
		assert.Error(t, err)
	})

	t.Run("non-hex rejected", func(t *testing.T) {
		_, err := ParseIdentity(strings.Repeat("zz", 32))
		assert.Error(t, err)
	})

	t.Run("zero value is nil", func(t *testing.T) {
		assert.True(t, Identity{}.IsNil())
	})
}

func TestIdentityJSON(t *testing.T) {
	id, err := ParseIdentity(strings.Repeat("0f", 32))
	require.NoError(t, err)

	data, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, `"`+strings.Repeat("0f", 32)+`"`, string(data))

	var back Identity
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, id, back)
}

func TestParseAssetID(t *testing.T) {
	cases := []struct {
		name  string
		input string
		valid bool
	}{
		{"plain", "usdx", true},
		{"namespaced", "ledger:usdx-2022.v1", true},
		{"empty", "", false},
		{"too long", strings.Repeat("a", MaxAssetIDLen+1), false},
		{"bad char", "usd x", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseAssetID(tc.input)
			if tc.valid {
				require.NoError(t, err)
				assert.Equal(t, tc.input, got.String())
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestParseAccountID(t *testing.T) {
	_, err := ParseAccountID("")
	assert.Error(t, err)

	_, err = ParseAccountID(strings.Repeat("a", MaxAccountIDLen+1))
	assert.Error(t, err)

	acct, err := ParseAccountID("acct-1")
	require.NoError(t, err)
	assert.Equal(t, "acct-1", acct.String())
}
