package audit

import (
	"context"
	"log/slog"
)

// LogSink writes events to the structured log. It stands in for Kafka when
// no brokers are configured.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Publish(ctx context.Context, event Event) error {
	s.logger.InfoContext(ctx, "decision event",
		"action", event.Action,
		"decision_id", event.DecisionID,
		"status", event.Status,
		"request_id", event.RequestID,
	)
	return nil
}
