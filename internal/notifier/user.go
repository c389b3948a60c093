package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/domain/event"
	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/domain/notification"
)

// UserUpdateProcessor turns user-events into critical notifications with an
// inline email.
type UserUpdateProcessor struct {
	deps   Deps
	policy RetryPolicy
}

func NewUserUpdateProcessor(deps Deps) *UserUpdateProcessor {
	return &UserUpdateProcessor{
		deps:   deps.withDefaults(),
		policy: userUpdatePolicy,
	}
}

func (p *UserUpdateProcessor) ProcessWithRetry(ctx context.Context, raw []byte, src MessageContext) bool {
	ev, err := event.DecodeUserUpdate(raw)
	if err == nil {
		err = ev.Validate()
	}
	if err != nil {
		// Structurally invalid events are hard failures, not retryable ones.
		p.deps.Logger.Error("invalid user update event", "topic", src.Topic, "error", err)
		return false
	}

	return p.deps.runWithRetry(p.policy, string(notification.TypeUserUpdate), func(attempt int) error {
		email, err := p.deps.Users.GetEmail(ctx, ev.UserID)
		if err != nil {
			return fmt.Errorf("resolve user email: %w", err)
		}

		content := ev.Details
		if content == nil {
			content = map[string]any{}
		}

		rec := &notification.Record{
			UserID:   ev.UserID,
			Email:    email,
			Type:     notification.TypeUserUpdate,
			Priority: notification.PriorityCritical,
			Content:  content,
			Metadata: map[string]any{
				"updateType": ev.UpdateType,
				"retryCount": attempt,
			},
			SentAt: time.Now().UTC(),
		}

		created, err := p.deps.Store.Create(ctx, rec)
		if err != nil {
			return fmt.Errorf("create notification: %w", err)
		}

		eventsProcessed.WithLabelValues(string(notification.TypeUserUpdate)).Inc()
		p.deps.dispatchEmail(ctx, created, notificationSubject(notification.TypeUserUpdate))
		return nil
	})
}
