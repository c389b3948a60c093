package notifier

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeadLetterEnvelopeRoundTrip(t *testing.T) {
	producer := &fakePublisher{}
	h := NewDeadLetterHandler(producer, "dead-letter-queue", nil)
	h.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

	original := []byte(`{"userId":"u1","broken":true}`)
	h.HandleFailedMessage(context.Background(), "user-events", original, "High Priority Event Processing Failed", 2, 42)

	require.Len(t, producer.messages, 1)
	msg := producer.messages[0]
	assert.Equal(t, "dead-letter-queue", msg.Topic)
	assert.Equal(t, "user-events-2-42", msg.Key)

	var envelope DeadLetterEnvelope
	require.NoError(t, json.Unmarshal(msg.Value, &envelope))
	assert.Equal(t, "user-events", envelope.Metadata.OriginalTopic)
	assert.Equal(t, 2, envelope.Metadata.Partition)
	assert.Equal(t, int64(42), envelope.Metadata.Offset)
	assert.Equal(t, "High Priority Event Processing Failed", envelope.Metadata.Reason)
	assert.Equal(t, "2025-03-01T12:00:00Z", envelope.Timestamp)

	decoded, err := base64.StdEncoding.DecodeString(envelope.OriginalMessage)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestDeadLetterPublishFailureIsSwallowed(t *testing.T) {
	producer := &fakePublisher{err: assert.AnError}
	h := NewDeadLetterHandler(producer, "dead-letter-queue", nil)

	// Must not panic or propagate: the DLQ is a terminal sink.
	h.HandleFailedMessage(context.Background(), "order-events", []byte(`{}`), "x", 0, 7)
	assert.Empty(t, producer.messages)
}

func TestDeadLetterKeyFormat(t *testing.T) {
	assert.Equal(t, "promotional-events-0-1234", DeadLetterKey("promotional-events", 0, 1234))
	assert.Equal(t, "promotional-events--1--1", DeadLetterKey("promotional-events", -1, -1))
}
