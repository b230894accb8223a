package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"ktvadmin/logger"
)

// KafkaEmitter streams events to a topic keyed by entity id.
type KafkaEmitter struct {
	writer *kafka.Writer
}

// NewKafkaEmitter builds an async writer; delivery failures surface in the log.
func NewKafkaEmitter(brokers []string, topic string, log *logger.Logger) *KafkaEmitter {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		Async:                  true,
		AllowAutoTopicCreation: true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil && log != nil {
				log.Error("KAFKA", fmt.Sprintf("deliver %d message(s) to %s: %v", len(messages), topic, err))
			}
		},
	}
	return &KafkaEmitter{writer: w}
}

func (e *KafkaEmitter) Emit(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return e.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.EntityID),
		Value: data,
	})
}

func (e *KafkaEmitter) Close() error {
	return e.writer.Close()
}
