//go:build integration

package audit

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"mintgate/pkg/domain"
	"mintgate/pkg/platform/audit"
	auditpg "mintgate/pkg/platform/audit/store/postgres"
	"mintgate/pkg/platform/audit/worker"
	"mintgate/pkg/testutil/containers"
)

func TestOutboxWorker_PublishesToKafka(t *testing.T) {
	pc := containers.NewPostgresContainer(t)
	rp := containers.NewRedpandaContainer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	require.NoError(t, worker.EnsureTopics(ctx, rp.Client))

	store := auditpg.New(pc.DB)
	asset := domain.AssetID("usdx")
	require.NoError(t, store.Append(ctx, audit.Event{
		Action:    string(audit.EventTokensIssued),
		Asset:     asset,
		Subject:   "treasury",
		Amount:    600,
		RequestID: "req-1",
		Timestamp: time.Now().UTC(),
	}))

	w := worker.New(pc.DB, rp.Client, slog.New(slog.NewTextHandler(io.Discard, nil)),
		worker.WithInterval(50*time.Millisecond))
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	go func() { _ = w.Run(workerCtx) }()

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Broker),
		kgo.ConsumeTopics(worker.TopicCompliance),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	var record *kgo.Record
	deadline := time.Now().Add(30 * time.Second)
	for record == nil && time.Now().Before(deadline) {
		fetchCtx, fetchCancel := context.WithTimeout(ctx, 2*time.Second)
		fetches := consumer.PollFetches(fetchCtx)
		fetchCancel()
		fetches.EachRecord(func(r *kgo.Record) {
			record = r
		})
	}
	require.NotNil(t, record, "no audit record arrived on %s", worker.TopicCompliance)

	assert.Equal(t, asset.String(), string(record.Key))
	var payload map[string]any
	require.NoError(t, json.Unmarshal(record.Value, &payload))
	assert.Equal(t, "tokens_issued", payload["action"])
	assert.Equal(t, "compliance", payload["category"])
	assert.Equal(t, "treasury", payload["subject"])
	assert.Equal(t, float64(600), payload["amount"])

	// The row is marked published so it is not re-delivered.
	require.Eventually(t, func() bool {
		var n int
		if err := pc.DB.QueryRow(
			`SELECT COUNT(*) FROM outbox WHERE published_at IS NULL`).Scan(&n); err != nil {
			return false
		}
		return n == 0
	}, 10*time.Second, 100*time.Millisecond)
}
