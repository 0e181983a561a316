package middleware

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mintgate/pkg/requestcontext"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func signedRequest(t *testing.T, key ed25519.PrivateKey, body string, at time.Time) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/instruments", strings.NewReader(body))
	SignRequest(req, key, []byte(body), at)
	return req
}

func TestRequireSignature_ValidRequest(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	var gotIdentity string
	handler := RequireSignature(30*time.Second, testLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotIdentity = requestcontext.Identity(r.Context()).String()
			w.WriteHeader(http.StatusOK)
		}),
	)

	now := time.Now()
	req := signedRequest(t, priv, `{"asset":"usdx"}`, now)
	req = req.WithContext(requestcontext.WithTime(req.Context(), now))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, hex.EncodeToString(pub), gotIdentity, "identity should be the hex public key")
}

func TestRequireSignature_RejectsTamperedBody(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	handler := RequireSignature(30*time.Second, testLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run for a tampered request")
		}),
	)

	now := time.Now()
	req := signedRequest(t, priv, `{"asset":"usdx"}`, now)
	req.Body = http.NoBody
	req = req.WithContext(requestcontext.WithTime(req.Context(), now))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireSignature_RejectsStaleTimestamp(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	handler := RequireSignature(30*time.Second, testLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run for a stale request")
		}),
	)

	now := time.Now()
	req := signedRequest(t, priv, "", now.Add(-5*time.Minute))
	req = req.WithContext(requestcontext.WithTime(req.Context(), now))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireSignature_MissingHeaders(t *testing.T) {
	handler := RequireSignature(30*time.Second, testLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run without signature headers")
		}),
	)

	req := httptest.NewRequest(http.MethodPost, "/v1/instruments", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireOperator_ValidToken(t *testing.T) {
	const key = "test-signing-key"
	token, err := IssueOperatorToken(key, "alice", time.Hour)
	require.NoError(t, err)

	var gotOperator string
	handler := RequireOperator(key, testLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotOperator = GetOperator(r.Context())
			w.WriteHeader(http.StatusOK)
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/v1/instruments/usdx", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", gotOperator)
}

func TestRequireOperator_WrongKey(t *testing.T) {
	token, err := IssueOperatorToken("key-a", "alice", time.Hour)
	require.NoError(t, err)

	handler := RequireOperator("key-b", testLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run with a token signed by the wrong key")
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/v1/instruments/usdx", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireOperator_MissingToken(t *testing.T) {
	handler := RequireOperator("key", testLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run without a token")
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/v1/instruments/usdx", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
