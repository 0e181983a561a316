package ledger

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mintgate/internal/platform/config"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
)

const (
	testAsset = domain.AssetID("usdx")
	alice     = domain.AccountID("acct-alice")
	bob       = domain.AccountID("acct-bob")
)

func TestMemory_MintAndBurn(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Mint(ctx, testAsset, alice, 500, 6))
	assert.Equal(t, uint64(500), m.Balance(testAsset, alice))

	require.NoError(t, m.Burn(ctx, testAsset, alice, 200, 6))
	assert.Equal(t, uint64(300), m.Balance(testAsset, alice))

	err := m.Burn(ctx, testAsset, alice, 1000, 6)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeInvalidAmount, dErrors.CodeOf(err))
}

func TestMemory_FrozenDestinationRejectsMint(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Freeze(ctx, testAsset, alice))
	err := m.Mint(ctx, testAsset, alice, 100, 6)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeAccountFrozen, dErrors.CodeOf(err))

	require.NoError(t, m.Thaw(ctx, testAsset, alice))
	require.NoError(t, m.Mint(ctx, testAsset, alice, 100, 6))
}

func TestMemory_TransferWithAuthorityIgnoresFrozen(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	m.SetBalance(testAsset, alice, 300)
	require.NoError(t, m.Freeze(ctx, testAsset, alice))

	require.NoError(t, m.TransferWithAuthority(ctx, testAsset, alice, bob, 300, 6))
	assert.Equal(t, uint64(0), m.Balance(testAsset, alice))
	assert.Equal(t, uint64(300), m.Balance(testAsset, bob))
}

func TestMemory_FailNext(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	injected := dErrors.New(dErrors.CodeInternal, "ledger exploded")
	m.FailNext(injected)

	err := m.Mint(ctx, testAsset, alice, 100, 6)
	require.ErrorIs(t, err, injected)
	assert.Zero(t, m.Balance(testAsset, alice), "failed mint must not credit")

	require.NoError(t, m.Mint(ctx, testAsset, alice, 100, 6), "injection is one-shot")
}

func newTestClient(t *testing.T, handler http.Handler) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(config.LedgerConfig{
		BaseURL: srv.URL,
		Timeout: 2 * time.Second,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHTTPClient_MintSuccess(t *testing.T) {
	var gotPath string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))

	err := client.Mint(context.Background(), testAsset, alice, 100, 6)
	require.NoError(t, err)
	assert.Equal(t, "/v1/assets/usdx/mint", gotPath)
}

func TestHTTPClient_MapsLedgerErrors(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"account_frozen","error_description":"account is frozen"}`))
	}))

	err := client.Freeze(context.Background(), testAsset, alice)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeAccountFrozen, dErrors.CodeOf(err))
}

func TestHTTPClient_UnknownErrorDegradesToInternal(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"novel_failure_mode"}`))
	}))

	err := client.Burn(context.Background(), testAsset, alice, 5, 6)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeInternal, dErrors.CodeOf(err))
}

func TestHTTPClient_ServerErrorsOpenBreaker(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.Error(t, client.Mint(ctx, testAsset, alice, 1, 6))
	}
	assert.True(t, client.breaker.IsOpen(), "repeated 5xx responses should open the circuit")
}
