package middleware

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"time"

	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
	"mintgate/pkg/platform/httputil"
	"mintgate/pkg/requestcontext"
)

// Signed request headers. The caller signs the canonical message with the
// ed25519 key whose public half is its identity.
const (
	headerIdentity  = "X-Identity"
	headerSignature = "X-Signature"
	headerTimestamp = "X-Timestamp"
)

// SignatureMessage builds the canonical byte string covered by a request
// signature: timestamp, method, path, and the hex SHA-256 of the body, each
// on its own line.
func SignatureMessage(timestamp, method, path string, body []byte) []byte {
	sum := sha256.Sum256(body)
	msg := timestamp + "\n" + method + "\n" + path + "\n" + hex.EncodeToString(sum[:])
	return []byte(msg)
}

// SignRequest computes the three signature headers for a request. Intended
// for clients and tests.
func SignRequest(r *http.Request, key ed25519.PrivateKey, body []byte, at time.Time) {
	ts := at.UTC().Format(time.RFC3339)
	pub := key.Public().(ed25519.PublicKey)
	sig := ed25519.Sign(key, SignatureMessage(ts, r.Method, r.URL.Path, body))
	r.Header.Set(headerIdentity, hex.EncodeToString(pub))
	r.Header.Set(headerSignature, hex.EncodeToString(sig))
	r.Header.Set(headerTimestamp, ts)
}

// RequireSignature verifies the detached ed25519 signature on state-changing
// requests and injects the proven identity into the request context. The
// identity is the signer's public key; authorization against configured roles
// happens later in the service layer.
func RequireSignature(maxSkew time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			identity, err := verifySignature(r, maxSkew)
			if err != nil {
				logger.WarnContext(ctx, "request signature rejected",
					"error", err,
					"path", r.URL.Path,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid request signature"))
				return
			}

			ctx = requestcontext.WithIdentity(ctx, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func verifySignature(r *http.Request, maxSkew time.Duration) (domain.Identity, error) {
	identityHex := r.Header.Get(headerIdentity)
	sigHex := r.Header.Get(headerSignature)
	ts := r.Header.Get(headerTimestamp)
	if identityHex == "" || sigHex == "" || ts == "" {
		return domain.Identity{}, dErrors.New(dErrors.CodeUnauthorized, "missing signature headers")
	}

	identity, err := domain.ParseIdentity(identityHex)
	if err != nil {
		return domain.Identity{}, dErrors.Wrap(err, dErrors.CodeUnauthorized, "malformed identity")
	}
	sig, err := hex.DecodeString(sigHex)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return domain.Identity{}, dErrors.New(dErrors.CodeUnauthorized, "malformed signature")
	}

	signedAt, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return domain.Identity{}, dErrors.Wrap(err, dErrors.CodeUnauthorized, "malformed timestamp")
	}
	now := requestcontext.Now(r.Context())
	if skew := now.Sub(signedAt); skew > maxSkew || skew < -maxSkew {
		return domain.Identity{}, dErrors.New(dErrors.CodeUnauthorized, "signature timestamp outside allowed window")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return domain.Identity{}, dErrors.Wrap(err, dErrors.CodeUnauthorized, "read request body")
	}
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	msg := SignatureMessage(ts, r.Method, r.URL.Path, body)
	if !ed25519.Verify(ed25519.PublicKey(identity.Bytes()), msg, sig) {
		return domain.Identity{}, dErrors.New(dErrors.CodeUnauthorized, "signature verification failed")
	}
	return identity, nil
}
