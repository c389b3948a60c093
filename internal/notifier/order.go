package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/domain/event"
	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/domain/notification"
)

// OrderUpdateProcessor turns order-events into standard notifications.
// Order updates are always emailed inline.
type OrderUpdateProcessor struct {
	deps   Deps
	policy RetryPolicy
}

func NewOrderUpdateProcessor(deps Deps) *OrderUpdateProcessor {
	return &OrderUpdateProcessor{
		deps:   deps.withDefaults(),
		policy: orderUpdatePolicy,
	}
}

func (p *OrderUpdateProcessor) ProcessWithRetry(ctx context.Context, raw []byte, src MessageContext) bool {
	ev, err := event.DecodeOrderUpdate(raw)
	if err == nil {
		err = ev.Validate()
	}
	if err != nil {
		p.deps.Logger.Error("invalid order update event", "topic", src.Topic, "error", err)
		return false
	}

	return p.deps.runWithRetry(p.policy, string(notification.TypeOrderUpdate), func(attempt int) error {
		email, err := p.deps.Users.GetEmail(ctx, ev.UserID)
		if err != nil {
			return fmt.Errorf("resolve user email: %w", err)
		}

		rec := &notification.Record{
			UserID:   ev.UserID,
			Email:    email,
			Type:     notification.TypeOrderUpdate,
			Priority: notification.PriorityStandard,
			Content: map[string]any{
				"orderId":      ev.OrderID,
				"eventDetails": ev.AsMap(),
			},
			Metadata: map[string]any{
				"retryCount": attempt,
			},
			SentAt: time.Now().UTC(),
		}

		created, err := p.deps.Store.Create(ctx, rec)
		if err != nil {
			return fmt.Errorf("create notification: %w", err)
		}

		p.deps.Logger.Info("order event processed", "user_id", ev.UserID, "order_id", ev.OrderID)
		eventsProcessed.WithLabelValues(string(notification.TypeOrderUpdate)).Inc()
		p.deps.dispatchEmail(ctx, created, notificationSubject(notification.TypeOrderUpdate))
		return nil
	})
}
