package audit

import "context"

// Store persists audit events. The postgres implementation writes to the
// transactional outbox; the memory implementation backs unit tests.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Publisher emits audit events for security- and compliance-relevant
// operations. Implementations decide delivery semantics: the compliance
// publisher is synchronous and fail-closed, the security publisher is
// asynchronous and fail-open.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}
