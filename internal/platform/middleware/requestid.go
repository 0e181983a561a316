// Package middleware holds the HTTP middleware chain: request identity,
// request-scoped time, and the two authentication schemes (detached signature
// for state-changing calls, operator JWT for read-only calls).
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"mintgate/pkg/requestcontext"
)

const headerRequestID = "X-Request-Id"

// RequestID assigns every request a correlation ID. An inbound X-Request-Id
// is honored so callers can stitch traces across services.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), id)
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
