package notifier

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageSource is the consumption surface of a lane, satisfied by the
// kafka consumer wrapper and by fakes in tests.
type MessageSource interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Lane is one independently-configured consumption path: its own consumer
// group, topic set and concurrency limit. Messages from one partition are
// always handled by the same worker, preserving in-partition order while
// distinct partitions run in parallel.
type Lane struct {
	name        string
	consumer    MessageSource
	concurrency int
	processors  map[string]Processor
	dlq         *DeadLetterHandler
	failReason  string
	logger      *slog.Logger
}

func NewLane(name string, consumer MessageSource, concurrency int, processors map[string]Processor, dlq *DeadLetterHandler, failReason string, logger *slog.Logger) *Lane {
	if concurrency <= 0 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Lane{
		name:        name,
		consumer:    consumer,
		concurrency: concurrency,
		processors:  processors,
		dlq:         dlq,
		failReason:  failReason,
		logger:      logger,
	}
}

// Run fetches and dispatches until the context is cancelled, then drains
// the workers.
func (l *Lane) Run(ctx context.Context) {
	queues := make([]chan kafka.Message, l.concurrency)
	var wg sync.WaitGroup
	for i := range queues {
		queues[i] = make(chan kafka.Message)
		wg.Add(1)
		go func(ch <-chan kafka.Message) {
			defer wg.Done()
			for msg := range ch {
				l.handle(ctx, msg)
			}
		}(queues[i])
	}

	for {
		msg, err := l.consumer.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			l.logger.Error("failed to fetch message", "lane", l.name, "error", err)
			time.Sleep(1 * time.Second)
			continue
		}
		queues[msg.Partition%l.concurrency] <- msg
	}

	for _, ch := range queues {
		close(ch)
	}
	wg.Wait()
}

// handle isolates one message: whatever happens here never prevents later
// messages from being attempted.
func (l *Lane) handle(ctx context.Context, msg kafka.Message) {
	if !json.Valid(msg.Value) {
		// A payload that is not JSON is not a retryable business failure:
		// log, skip, and do not involve the DLQ.
		malformedMessages.Inc()
		l.logger.Error("skipping malformed message",
			"lane", l.name, "topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)
		l.commit(ctx, msg)
		return
	}

	proc, ok := l.processors[msg.Topic]
	if !ok {
		l.logger.Warn("no processor for topic", "lane", l.name, "topic", msg.Topic)
		l.commit(ctx, msg)
		return
	}

	src := MessageContext{Topic: msg.Topic, Partition: msg.Partition, Offset: msg.Offset}
	if !proc.ProcessWithRetry(ctx, msg.Value, src) {
		l.dlq.HandleFailedMessage(ctx, msg.Topic, msg.Value, l.failReason, msg.Partition, msg.Offset)
	}
	l.commit(ctx, msg)
}

func (l *Lane) commit(ctx context.Context, msg kafka.Message) {
	if err := l.consumer.CommitMessages(ctx, msg); err != nil {
		l.logger.Error("failed to commit message", "lane", l.name, "topic", msg.Topic, "offset", msg.Offset, "error", err)
	}
}

// Manager owns the two priority lanes so that user-identity and order
// events are never head-of-line-blocked by promotional traffic.
type Manager struct {
	high     *Lane
	standard *Lane
	logger   *slog.Logger
}

func NewManager(high, standard *Lane, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{high: high, standard: standard, logger: logger}
}

// Run blocks until both lanes have drained after context cancellation.
func (m *Manager) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		m.high.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		m.standard.Run(ctx)
	}()
	wg.Wait()
}

// Close disconnects both lanes; a close error on one lane is logged and
// never blocks disconnecting the other.
func (m *Manager) Close() {
	for _, lane := range []*Lane{m.high, m.standard} {
		if err := lane.consumer.Close(); err != nil {
			m.logger.Error("failed to close lane consumer", "lane", lane.name, "error", err)
		}
	}
}
