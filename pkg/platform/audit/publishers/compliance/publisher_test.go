package compliance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mintgate/pkg/domain"
	audit "mintgate/pkg/platform/audit"
	auditmem "mintgate/pkg/platform/audit/store/memory"
)

func TestEmit_PersistsEvent(t *testing.T) {
	store := auditmem.New()
	p := New(store)

	err := p.Emit(context.Background(), audit.Event{
		Action: string(audit.EventTokensIssued),
		Asset:  domain.AssetID("usdx"),
		Amount: 100,
	})
	require.NoError(t, err)

	events := store.Events()
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventTokensIssued), events[0].Action)
	assert.False(t, events[0].Timestamp.IsZero(), "timestamp should be defaulted")
}

func TestEmit_FailClosed(t *testing.T) {
	store := auditmem.New()
	store.FailNext(errors.New("outbox unavailable"))
	p := New(store)

	err := p.Emit(context.Background(), audit.Event{
		Action: string(audit.EventBlacklistAdded),
	})
	require.Error(t, err, "a failed audit write must fail the operation")
	assert.Empty(t, store.Events())
}

func TestEmit_RequiresAction(t *testing.T) {
	p := New(auditmem.New())
	err := p.Emit(context.Background(), audit.Event{})
	assert.Error(t, err)
}
