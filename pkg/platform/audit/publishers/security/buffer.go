// Package security provides a fail-open asynchronous publisher for security
// events. The hot path (transfer validation) must never block on audit
// delivery, so events are buffered and drained by a background goroutine;
// a full buffer drops the event and logs.
package security

import (
	"context"
	"log/slog"

	audit "mintgate/pkg/platform/audit"
)

// Publisher buffers security events and appends them to the store
// asynchronously.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger
	inbox  chan audit.Event
	done   chan struct{}
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for drop/persist error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithBufferSize overrides the default 1024-event buffer.
func WithBufferSize(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.inbox = make(chan audit.Event, n)
		}
	}
}

// New creates the publisher and starts its drain goroutine.
func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store: store,
		inbox: make(chan audit.Event, 1024),
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	go p.drain()
	return p
}

// Emit enqueues the event without blocking. A full buffer drops the event;
// security audit is best-effort, unlike the compliance publisher.
func (p *Publisher) Emit(_ context.Context, event audit.Event) error {
	select {
	case p.inbox <- event:
	default:
		if p.logger != nil {
			p.logger.Warn("security audit buffer full, event dropped",
				"action", event.Action,
			)
		}
	}
	return nil
}

func (p *Publisher) drain() {
	for event := range p.inbox {
		if err := p.store.Append(context.Background(), event); err != nil && p.logger != nil {
			p.logger.Warn("security audit persist failed",
				"action", event.Action,
				"error", err,
			)
		}
	}
	close(p.done)
}

// Close stops accepting events and waits for the buffer to drain.
func (p *Publisher) Close() error {
	close(p.inbox)
	<-p.done
	return nil
}
