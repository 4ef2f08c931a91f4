package audit

import (
	"context"
	"encoding/json"
	"fmt"
)

// MessageProducer writes a keyed message to the configured topic.
type MessageProducer interface {
	Produce(ctx context.Context, key, value []byte) error
}

// KafkaSink publishes events as JSON keyed by decision ID, so all events for
// one decision land on the same partition.
type KafkaSink struct {
	producer MessageProducer
}

func NewKafkaSink(producer MessageProducer) *KafkaSink {
	return &KafkaSink{producer: producer}
}

func (s *KafkaSink) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	if err := s.producer.Produce(ctx, []byte(event.DecisionID), value); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}
