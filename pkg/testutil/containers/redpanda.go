//go:build integration

package containers

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	tcredpanda "github.com/testcontainers/testcontainers-go/modules/redpanda"
	"github.com/twmb/franz-go/pkg/kgo"
)

// RedpandaContainer wraps a Kafka-compatible Redpanda instance for audit
// streaming tests.
type RedpandaContainer struct {
	Container testcontainers.Container
	Broker    string
	Client    *kgo.Client
}

// NewRedpandaContainer starts a Redpanda container and connects a client.
// The container is terminated via t.Cleanup.
func NewRedpandaContainer(t *testing.T, opts ...kgo.Opt) *RedpandaContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcredpanda.Run(ctx, "redpandadata/redpanda:v24.2.7")
	if err != nil {
		t.Fatalf("failed to start redpanda container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	broker, err := container.KafkaSeedBroker(ctx)
	if err != nil {
		t.Fatalf("failed to get redpanda seed broker: %v", err)
	}

	opts = append([]kgo.Opt{kgo.SeedBrokers(broker)}, opts...)
	client, err := kgo.NewClient(opts...)
	if err != nil {
		t.Fatalf("failed to create kafka client: %v", err)
	}
	t.Cleanup(client.Close)

	if err := client.Ping(ctx); err != nil {
		t.Fatalf("failed to ping redpanda: %v", err)
	}

	return &RedpandaContainer{
		Container: container,
		Broker:    broker,
		Client:    client,
	}
}
