package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/domain/event"
	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/domain/notification"
)

// PromotionProcessor turns promotional-events — upstream product promotions
// and the campaign trigger's synthetic events alike — into standard
// notifications with an inline email.
type PromotionProcessor struct {
	deps   Deps
	policy RetryPolicy
}

func NewPromotionProcessor(deps Deps) *PromotionProcessor {
	return &PromotionProcessor{
		deps:   deps.withDefaults(),
		policy: promotionPolicy,
	}
}

func (p *PromotionProcessor) ProcessWithRetry(ctx context.Context, raw []byte, src MessageContext) bool {
	ev, err := event.DecodePromotion(raw)
	if err == nil {
		err = ev.Validate()
	}
	if err != nil {
		p.deps.Logger.Error("invalid promotion event", "topic", src.Topic, "error", err)
		return false
	}

	return p.deps.runWithRetry(p.policy, string(notification.TypePromotion), func(attempt int) error {
		email := ev.Email
		if email == "" {
			resolved, err := p.deps.Users.GetEmail(ctx, ev.UserID)
			if err != nil {
				return fmt.Errorf("resolve user email: %w", err)
			}
			email = resolved
		}

		content := ev.Details
		if content == nil {
			content = map[string]any{
				"message":   "Promotional event processed",
				"eventType": ev.EventType,
			}
		}

		rec := &notification.Record{
			UserID:   ev.UserID,
			Email:    email,
			Type:     notification.TypePromotion,
			Priority: notification.PriorityStandard,
			Content:  content,
			Metadata: map[string]any{
				"batchId":    ev.Metadata.BatchID,
				"retryCount": attempt,
			},
			SentAt: time.Now().UTC(),
		}

		created, err := p.deps.Store.Create(ctx, rec)
		if err != nil {
			return fmt.Errorf("create notification: %w", err)
		}

		eventsProcessed.WithLabelValues(string(notification.TypePromotion)).Inc()
		p.deps.dispatchEmail(ctx, created, notificationSubject(notification.TypePromotion))
		return nil
	})
}
