package audit_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"remitguard/internal/audit"
	"remitguard/internal/audit/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublisher_EmitStampsAndQueues(t *testing.T) {
	p := audit.NewPublisher(audit.WithBufferSize(1))

	require.NoError(t, p.Emit(context.Background(), audit.Event{Action: audit.EventDecisionMade, DecisionID: "d-1"}))
	event := <-p.Inbox()
	assert.Equal(t, "d-1", event.DecisionID)
	assert.False(t, event.Timestamp.IsZero())
}

func TestPublisher_DropsWhenFull(t *testing.T) {
	p := audit.NewPublisher(audit.WithBufferSize(1), audit.WithPublisherLogger(discardLogger()))
	ctx := context.Background()

	require.NoError(t, p.Emit(ctx, audit.Event{DecisionID: "first"}))
	require.NoError(t, p.Emit(ctx, audit.Event{DecisionID: "second"}))

	assert.Equal(t, "first", (<-p.Inbox()).DecisionID)
	select {
	case e := <-p.Inbox():
		t.Fatalf("unexpected queued event %q", e.DecisionID)
	default:
	}
}

func TestWorker_DeliversUntilCancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockSink(ctrl)
	p := audit.NewPublisher()

	delivered := make(chan string, 2)
	gomock.InOrder(
		sink.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down")),
		sink.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
			delivered <- e.DecisionID
			return nil
		}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- audit.NewWorker(sink, p.Inbox(), discardLogger()).Run(ctx) }()

	require.NoError(t, p.Emit(ctx, audit.Event{DecisionID: "lost"}))
	require.NoError(t, p.Emit(ctx, audit.Event{DecisionID: "kept"}))

	select {
	case id := <-delivered:
		assert.Equal(t, "kept", id, "a failed delivery does not stop the worker")
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestWorker_DrainsQueuedEventsOnShutdown(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockSink(ctrl)
	p := audit.NewPublisher()

	var published []string
	sink.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(3).DoAndReturn(func(ctx context.Context, e audit.Event) error {
		assert.NoError(t, ctx.Err(), "drain publishes under a live context")
		published = append(published, e.DecisionID)
		return nil
	})

	for _, id := range []string{"d-1", "d-2", "d-3"} {
		require.NoError(t, p.Emit(context.Background(), audit.Event{DecisionID: id}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := audit.NewWorker(sink, p.Inbox(), discardLogger()).Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"d-1", "d-2", "d-3"}, published)
}

func TestWorker_DrainIsBounded(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockSink(ctrl)
	p := audit.NewPublisher()

	sink.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(1).DoAndReturn(func(ctx context.Context, _ audit.Event) error {
		<-ctx.Done()
		return ctx.Err()
	})

	require.NoError(t, p.Emit(context.Background(), audit.Event{DecisionID: "stuck"}))
	require.NoError(t, p.Emit(context.Background(), audit.Event{DecisionID: "dropped"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	err := audit.NewWorker(sink, p.Inbox(), discardLogger(), audit.WithDrainTimeout(50*time.Millisecond)).Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestKafkaSink_KeysByDecision(t *testing.T) {
	ctrl := gomock.NewController(t)
	producer := mocks.NewMockMessageProducer(ctrl)

	event := audit.Event{
		Action:     audit.EventDecisionMade,
		DecisionID: "d-42",
		Status:     "REVIEW",
		Reasons:    []string{"High-risk corridor: US -> XX"},
	}
	producer.EXPECT().Produce(gomock.Any(), []byte("d-42"), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, value []byte) error {
			var got audit.Event
			require.NoError(t, json.Unmarshal(value, &got))
			assert.Equal(t, "REVIEW", got.Status)
			assert.Equal(t, audit.EventDecisionMade, got.Action)
			return nil
		})

	require.NoError(t, audit.NewKafkaSink(producer).Publish(context.Background(), event))
}

func TestKafkaSink_WrapsProducerError(t *testing.T) {
	ctrl := gomock.NewController(t)
	producer := mocks.NewMockMessageProducer(ctrl)
	producer.EXPECT().Produce(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("timeout"))

	err := audit.NewKafkaSink(producer).Publish(context.Background(), audit.Event{DecisionID: "d"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "produce audit event")
}

func TestLogSink(t *testing.T) {
	assert.NoError(t, audit.NewLogSink(discardLogger()).Publish(context.Background(), audit.Event{DecisionID: "d"}))
}
