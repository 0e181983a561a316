package security

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mintgate/pkg/platform/audit"
	auditmem "mintgate/pkg/platform/audit/store/memory"
)

func TestEmit_DrainsToStore(t *testing.T) {
	store := auditmem.New()
	p := New(store)

	for i := 0; i < 3; i++ {
		require.NoError(t, p.Emit(context.Background(), audit.Event{
			Action: string(audit.EventTransferRejected),
		}))
	}
	require.NoError(t, p.Close())

	assert.Len(t, store.Events(), 3)
}

func TestEmit_FailOpen(t *testing.T) {
	store := auditmem.New()
	store.FailNext(errors.New("store down"))
	p := New(store)

	// A persist failure is logged, never surfaced to the caller.
	require.NoError(t, p.Emit(context.Background(), audit.Event{
		Action: string(audit.EventTransferRejected),
	}))
	require.NoError(t, p.Close())
	assert.Empty(t, store.Events())
}

func TestEmit_FullBufferDropsEvent(t *testing.T) {
	store := auditmem.New()
	p := &Publisher{
		store: store,
		inbox: make(chan audit.Event, 1),
		done:  make(chan struct{}),
	}

	// No drain goroutine is running yet, so the second emit finds the
	// buffer full and must not block.
	require.NoError(t, p.Emit(context.Background(), audit.Event{Action: "a"}))
	require.NoError(t, p.Emit(context.Background(), audit.Event{Action: "b"}))

	go p.drain()
	require.NoError(t, p.Close())
	require.Len(t, store.Events(), 1)
	assert.Equal(t, "a", store.Events()[0].Action)
}
