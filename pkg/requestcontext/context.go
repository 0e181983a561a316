// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Middleware sets values; services and handlers read them without importing
// net/http. The verified identity placed here is the product of signature
// verification — services treat it as the acting identity for authorization,
// never an ambient global.
//
// Usage in services (read values):
//
//	actor := requestcontext.Identity(ctx)
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithIdentity(ctx, identity)
//	ctx = requestcontext.WithRequestID(ctx, requestID)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	"mintgate/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	identityKey    struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyIdentity    = identityKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// Identity retrieves the verified acting identity from the context.
// Returns the zero identity if not set.
func Identity(ctx context.Context) domain.Identity {
	if id, ok := ctx.Value(ContextKeyIdentity).(domain.Identity); ok {
		return id
	}
	return domain.Identity{}
}

// WithIdentity injects a verified identity into the context.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, ContextKeyIdentity, id)
}

// RequestID retrieves the correlation id from the context, or "".
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return id
	}
	return ""
}

// WithRequestID injects a correlation id into the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, id)
}

// Now retrieves the request-scoped time, falling back to time.Now so callers
// never need a nil check. All records touched by one request share one "now".
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a fixed time into the context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
