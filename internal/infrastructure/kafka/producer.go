package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type Config struct {
	Brokers []string
}

// Producer publishes to any topic; the topic is chosen per message so the
// same writer serves both the recommendation and dead-letter channels.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(cfg Config) *Producer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		MaxAttempts:            5,
		ReadTimeout:            10 * time.Second,
		WriteTimeout:           10 * time.Second,
		Async:                  false,
		AllowAutoTopicCreation: true,
	}

	return &Producer{writer: w}
}

func (p *Producer) Publish(ctx context.Context, topic string, key, value []byte) error {
	err := p.writer.WriteMessages(ctx,
		kafka.Message{
			Topic: topic,
			Key:   key,
			Value: value,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to write message to %s: %w", topic, err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
