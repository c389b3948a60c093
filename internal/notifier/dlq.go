package notifier

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// DeadLetterEnvelope wraps a permanently failed message with enough metadata
// to locate and replay it out of band.
type DeadLetterEnvelope struct {
	OriginalMessage string             `json:"originalMessage"`
	Metadata        DeadLetterMetadata `json:"metadata"`
	Timestamp       string             `json:"timestamp"`
}

type DeadLetterMetadata struct {
	OriginalTopic string `json:"originalTopic"`
	Partition     int    `json:"partition"`
	Offset        int64  `json:"offset"`
	Reason        string `json:"reason"`
}

// DeadLetterKey builds the replay identification key. It is best-effort:
// topic recreation or offset resets can repeat a key, so replay tooling must
// not treat it as a strict dedup key.
func DeadLetterKey(topic string, partition int, offset int64) string {
	return fmt.Sprintf("%s-%d-%d", topic, partition, offset)
}

// DeadLetterHandler publishes failure envelopes to the dead-letter channel.
// It is a terminal sink: it never returns an error to its caller, so the
// DLQ path can never become a new source of retries.
type DeadLetterHandler struct {
	producer Publisher
	topic    string
	logger   *slog.Logger
	now      func() time.Time
}

func NewDeadLetterHandler(producer Publisher, topic string, logger *slog.Logger) *DeadLetterHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeadLetterHandler{
		producer: producer,
		topic:    topic,
		logger:   logger,
		now:      time.Now,
	}
}

func (h *DeadLetterHandler) HandleFailedMessage(ctx context.Context, originalTopic string, raw []byte, reason string, partition int, offset int64) {
	envelope := DeadLetterEnvelope{
		OriginalMessage: base64.StdEncoding.EncodeToString(raw),
		Metadata: DeadLetterMetadata{
			OriginalTopic: originalTopic,
			Partition:     partition,
			Offset:        offset,
			Reason:        reason,
		},
		Timestamp: h.now().UTC().Format(time.RFC3339),
	}

	key := DeadLetterKey(originalTopic, partition, offset)
	value, err := json.Marshal(envelope)
	if err != nil {
		h.logger.Error("failed to marshal dead letter envelope", "key", key, "error", err)
		return
	}

	if err := h.producer.Publish(ctx, h.topic, []byte(key), value); err != nil {
		h.logger.Error("failed to publish to dead letter queue", "key", key, "error", err)
		return
	}

	eventsDeadLettered.Inc()
	h.logger.Info("message sent to dead letter queue",
		"original_topic", originalTopic, "reason", reason, "key", key)
}
