package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/domain/notification"
)

// MessageContext identifies where a message came from on the bus. Synthetic
// events injected by the campaign trigger use partition and offset -1.
type MessageContext struct {
	Topic     string
	Partition int
	Offset    int64
}

// Processor is one event family's entry point. The boolean result is the
// whole contract: true means the event reached a terminal success state,
// false means it must be dead-lettered. Processors never panic or leak
// errors to the consumer manager.
type Processor interface {
	ProcessWithRetry(ctx context.Context, raw []byte, src MessageContext) bool
}

// RetryPolicy bounds the backoff loop of a processor. An event gets
// MaxRetries+1 attempts; the wait before retry n is BaseDelay * 2^(n-1).
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// Per-family policies. User updates are critical and retried hardest;
// order and recommendation events trade retry count for a longer base delay.
var (
	userUpdatePolicy     = RetryPolicy{MaxRetries: 5, BaseDelay: 500 * time.Millisecond}
	orderUpdatePolicy    = RetryPolicy{MaxRetries: 3, BaseDelay: 1000 * time.Millisecond}
	promotionPolicy      = RetryPolicy{MaxRetries: 5, BaseDelay: 500 * time.Millisecond}
	recommendationPolicy = RetryPolicy{MaxRetries: 3, BaseDelay: 1000 * time.Millisecond}
)

// Deps carries the collaborators shared by every family processor.
type Deps struct {
	Store  NotificationStore
	Mailer EmailSender
	Users  UserDirectory
	Logger *slog.Logger
	// Sleep is the backoff wait, replaceable in tests. Defaults to time.Sleep.
	Sleep func(time.Duration)
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Sleep == nil {
		d.Sleep = time.Sleep
	}
	return d
}

// runWithRetry drives the bounded backoff loop. handle is invoked with the
// current attempt number; a nil error ends the loop with success. Validation
// failures never reach this loop: they are rejected before the first attempt.
func (d Deps) runWithRetry(policy RetryPolicy, family string, handle func(attempt int) error) bool {
	for attempt := 0; ; attempt++ {
		err := handle(attempt)
		if err == nil {
			return true
		}
		d.Logger.Error("event processing failed", "family", family, "attempt", attempt, "error", err)
		if attempt >= policy.MaxRetries {
			return false
		}
		eventsRetried.WithLabelValues(family).Inc()
		d.Sleep(policy.BaseDelay << attempt)
	}
}

// dispatchEmail is the best-effort inline email path. Failures are logged
// and swallowed: a notification record without a sent email is a valid
// terminal state and never triggers a reprocess of the event.
func (d Deps) dispatchEmail(ctx context.Context, rec *notification.Record, subject string) {
	if rec.Email == "" {
		d.Logger.Warn("no email for user, skipping dispatch", "user_id", rec.UserID, "type", rec.Type)
		return
	}
	if _, err := d.Mailer.Send(ctx, rec.Email, subject, rec.Type, rec.Content); err != nil {
		emailsFailed.Inc()
		d.Logger.Error("email dispatch failed", "user_id", rec.UserID, "type", rec.Type, "error", err)
		return
	}
	emailsSent.Inc()
}

func notificationSubject(kind notification.Type) string {
	return fmt.Sprintf("Notification: %s", kind)
}
