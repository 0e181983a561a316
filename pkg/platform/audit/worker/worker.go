// Package worker drains the audit outbox into Kafka. Kafka is the durable
// home of audit events; the outbox only guarantees that an event is recorded
// atomically with the operation that produced it.
package worker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Topic layout: one topic per audit category.
const (
	TopicCompliance = "mintgate.audit.compliance"
	TopicSecurity   = "mintgate.audit.security"
	TopicOperations = "mintgate.audit.operations"
)

func topicForCategory(category string) string {
	switch category {
	case "compliance":
		return TopicCompliance
	case "security":
		return TopicSecurity
	default:
		return TopicOperations
	}
}

// Worker polls the outbox table and publishes pending entries to Kafka.
type Worker struct {
	db       *sql.DB
	client   *kgo.Client
	logger   *slog.Logger
	interval time.Duration
	batch    int
}

// Option configures the Worker.
type Option func(*Worker)

// WithInterval overrides the default 1s poll interval.
func WithInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithBatchSize overrides the default 100-row batch.
func WithBatchSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.batch = n
		}
	}
}

// New creates an outbox worker.
func New(db *sql.DB, client *kgo.Client, logger *slog.Logger, opts ...Option) *Worker {
	w := &Worker{
		db:       db,
		client:   client,
		logger:   logger,
		interval: time.Second,
		batch:    100,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// EnsureTopics creates the audit topics if they do not exist.
func EnsureTopics(ctx context.Context, client *kgo.Client) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopics(ctx, 3, 1, nil, TopicCompliance, TopicSecurity, TopicOperations)
	if err != nil {
		return fmt.Errorf("create audit topics: %w", err)
	}
	for _, res := range resp.Sorted() {
		// TOPIC_ALREADY_EXISTS is expected on restart.
		if res.Err != nil && !errors.Is(res.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", res.Topic, res.Err)
		}
	}
	return nil
}

// Run polls until the context is canceled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.publishPending(ctx); err != nil {
				w.logger.WarnContext(ctx, "outbox publish pass failed", "error", err)
			}
		}
	}
}

type outboxRow struct {
	id          uuid.UUID
	aggregateID string
	category    string
	payload     []byte
}

func (w *Worker) publishPending(ctx context.Context) error {
	rows, err := w.db.QueryContext(ctx, `
		SELECT id, aggregate_id, category, payload
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`, w.batch)
	if err != nil {
		return fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var pending []outboxRow
	for rows.Next() {
		var row outboxRow
		if err := rows.Scan(&row.id, &row.aggregateID, &row.category, &row.payload); err != nil {
			return fmt.Errorf("scan outbox row: %w", err)
		}
		pending = append(pending, row)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate outbox: %w", err)
	}

	for _, row := range pending {
		record := &kgo.Record{
			Topic: topicForCategory(row.category),
			Key:   []byte(row.aggregateID),
			Value: row.payload,
		}
		if err := w.client.ProduceSync(ctx, record).FirstErr(); err != nil {
			// Leave the row pending; it will be retried next pass.
			return fmt.Errorf("produce outbox entry %s: %w", row.id, err)
		}
		if _, err := w.db.ExecContext(ctx,
			`UPDATE outbox SET published_at = $1 WHERE id = $2`,
			time.Now(), row.id,
		); err != nil {
			return fmt.Errorf("mark outbox entry %s published: %w", row.id, err)
		}
	}
	return nil
}
