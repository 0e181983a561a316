package blacklist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mintgate/internal/record"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
)

func sampleEntry() Entry {
	var config domain.Address
	var user domain.Identity
	config[0] = 0x0C
	user[0] = 0x0A
	return Entry{
		Config:    config,
		User:      user,
		Reason:    "sanctions match",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestEntryCodec_RoundTrip(t *testing.T) {
	want := sampleEntry()
	got, err := DecodeEntry(EncodeEntry(want))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestEncodeEntry_CarriesCreationTimestamp(t *testing.T) {
	// The timestamp is part of the canonical record, after user and reason.
	entry := sampleEntry()
	r, err := record.NewReader(record.KindBlacklist, EncodeEntry(entry))
	require.NoError(t, err)

	assert.Equal(t, [32]byte(entry.Config), r.ReadBytes32())
	assert.Equal(t, [32]byte(entry.User), r.ReadBytes32())
	assert.Equal(t, entry.Reason, r.ReadString(MaxReasonLen))
	assert.Equal(t, uint64(entry.CreatedAt.Unix()), r.ReadU64())
	require.NoError(t, r.Finish())
}

func TestDecodeEntry_WrongKind(t *testing.T) {
	w := record.NewWriter(record.KindConfig)
	w.WriteU64(1)
	_, err := DecodeEntry(w.Bytes())
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeInvalidAccount, dErrors.CodeOf(err))
}

func TestDecodeEntry_Truncated(t *testing.T) {
	data := EncodeEntry(sampleEntry())
	_, err := DecodeEntry(data[:len(data)-2])
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeInvalidAccount, dErrors.CodeOf(err))
}
