//go:build integration

package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"remitguard/pkg/testutil/containers"
)

func TestProducer_ProduceAndConsume(t *testing.T) {
	rp := containers.NewRedpandaContainer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := Config{Brokers: []string{rp.Broker}, Topic: "remitguard.decisions.test", Partitions: 1, ReplicationFactor: 1}
	producer, err := NewProducer(ctx, cfg)
	require.NoError(t, err)
	defer producer.Close()

	require.NoError(t, producer.Health(ctx))
	require.NoError(t, producer.Produce(ctx, []byte("d-1"), []byte(`{"action":"decision_made"}`)))

	// A second producer must tolerate the topic already existing.
	again, err := NewProducer(ctx, cfg)
	require.NoError(t, err)
	again.Close()

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Broker),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())
	records := fetches.Records()
	require.NotEmpty(t, records)
	assert.Equal(t, "d-1", string(records[0].Key))
	assert.JSONEq(t, `{"action":"decision_made"}`, string(records[0].Value))
}
