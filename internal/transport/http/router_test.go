package httptransport

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	blacklisthandler "mintgate/internal/blacklist/handler"
	blacklistsvc "mintgate/internal/blacklist/service"
	blacklistmem "mintgate/internal/blacklist/store/memory"
	hookhandler "mintgate/internal/hook/handler"
	hooksvc "mintgate/internal/hook/service"
	hookmem "mintgate/internal/hook/store/memory"
	instrumenthandler "mintgate/internal/instrument/handler"
	instrumentsvc "mintgate/internal/instrument/service"
	instrumentmem "mintgate/internal/instrument/store/memory"
	"mintgate/internal/ledger"
	minterhandler "mintgate/internal/minter/handler"
	mintersvc "mintgate/internal/minter/service"
	mintermem "mintgate/internal/minter/store/memory"
	"mintgate/internal/platform/config"
	"mintgate/internal/platform/middleware"
	"mintgate/pkg/platform/tx"
)

const testSigningKey = "router-test-signing-key"

func newTestRouter(t *testing.T, checks ...HealthCheck) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	instruments := instrumentsvc.New(instrumentmem.New(), ledger.NewMemory(), tx.Passthrough())
	minters := mintersvc.New(mintermem.New(), instruments, ledger.NewMemory(), tx.Passthrough())
	blacklist := blacklistsvc.New(blacklistmem.New(), instruments, tx.Passthrough())
	hooks := hooksvc.New(hookmem.New(), instruments, blacklist, tx.Passthrough())

	cfg := config.AuthConfig{
		OperatorJWTKey:   testSigningKey,
		SignatureMaxSkew: 30 * time.Second,
	}
	return NewRouter(cfg, logger, Handlers{
		Instruments: instrumenthandler.New(instruments, logger),
		Minters:     minterhandler.New(minters, logger),
		Blacklist:   blacklisthandler.New(blacklist, logger),
		Hooks:       hookhandler.New(hooks, logger),
	}, checks...)
}

func signedRequest(t *testing.T, key ed25519.PrivateKey, method, url string, body any) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(method, url, bytes.NewReader(payload))
	require.NoError(t, err)
	middleware.SignRequest(req, key, payload, time.Now())
	return req
}

func TestNewRouter_MountsAllGroupsOnOneSubtree(t *testing.T) {
	// Construction must not panic with command, query, and execute routes
	// all registered under /v1, and each zone must be reachable.
	router := newTestRouter(t)
	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/instruments", "application/json", bytes.NewReader([]byte(`{}`)))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/v1/instruments/usdx")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/v1/hook/execute", "application/json", bytes.NewReader([]byte(`{}`)))
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEqual(t, http.StatusNotFound, resp.StatusCode)
	assert.NotEqual(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_CommandsRequireSignature(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/instruments", "application/json",
		bytes.NewReader([]byte(`{"asset":"usdx","name":"US Dollar X","symbol":"USDX","decimals":6}`)))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_SignedCommandAccepted(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t))
	defer srv.Close()

	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	req := signedRequest(t, key, http.MethodPost, srv.URL+"/v1/instruments", instrumenthandler.InitializeRequest{
		Asset:    "usdx",
		Name:     "US Dollar X",
		Symbol:   "USDX",
		Decimals: 6,
	})
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestRouter_QueriesRequireOperatorToken(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/instruments/usdx")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_OperatorQuery(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t))
	defer srv.Close()

	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	req := signedRequest(t, key, http.MethodPost, srv.URL+"/v1/instruments", instrumenthandler.InitializeRequest{
		Asset:    "usdx",
		Name:     "US Dollar X",
		Symbol:   "USDX",
		Decimals: 6,
	})
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	token, err := middleware.IssueOperatorToken(testSigningKey, "ops-team", time.Hour)
	require.NoError(t, err)

	get, err := http.NewRequest(http.MethodGet, srv.URL+"/v1/instruments/usdx", nil)
	require.NoError(t, err)
	get.Header.Set("Authorization", "Bearer "+token)
	resp, err = http.DefaultClient.Do(get)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_ExecuteIsUnauthenticated(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t))
	defer srv.Close()

	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	req := signedRequest(t, key, http.MethodPost, srv.URL+"/v1/instruments", instrumenthandler.InitializeRequest{
		Asset:      "usdx",
		Name:       "US Dollar X",
		Symbol:     "USDX",
		Decimals:   6,
		EnableHook: true,
	})
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	req = signedRequest(t, key, http.MethodPost, srv.URL+"/v1/hooks", hookhandler.InitializeRequest{Asset: "usdx"})
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := `{
		"asset": "usdx",
		"source": {"account": "acct-1", "owner": "` + hexIdentity(0x0A) + `"},
		"dest": {"account": "acct-2", "owner": "` + hexIdentity(0x0B) + `"},
		"amount": 100
	}`
	resp, err = http.Post(srv.URL+"/v1/hook/execute", "application/json", bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var decision hookhandler.ExecuteResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decision))
	assert.True(t, decision.Allowed)
}

func hexIdentity(b byte) string {
	raw := make([]byte, 32)
	raw[0] = b
	return hex.EncodeToString(raw)
}

func TestRouter_Health(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_ReadyzReportsFailingDependency(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t,
		HealthCheck{Name: "postgres", Check: func(context.Context) error { return nil }},
		HealthCheck{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }},
	))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var results map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&results))
	assert.Equal(t, "ok", results["postgres"])
	assert.Equal(t, "unavailable", results["redis"])
}

func TestRouter_Metrics(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
