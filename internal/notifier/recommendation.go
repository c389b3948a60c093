package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/domain/event"
	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/domain/notification"
)

// RecommendationProcessor persists recommendation-events as standard
// notifications. Emails normally go out through the periodic sweep; setting
// inlineEmail sends them during event processing instead.
type RecommendationProcessor struct {
	deps        Deps
	policy      RetryPolicy
	inlineEmail bool
}

func NewRecommendationProcessor(deps Deps, inlineEmail bool) *RecommendationProcessor {
	return &RecommendationProcessor{
		deps:        deps.withDefaults(),
		policy:      recommendationPolicy,
		inlineEmail: inlineEmail,
	}
}

func (p *RecommendationProcessor) ProcessWithRetry(ctx context.Context, raw []byte, src MessageContext) bool {
	ev, err := event.DecodeRecommendation(raw)
	if err == nil {
		err = ev.Validate()
	}
	if err != nil {
		p.deps.Logger.Error("invalid recommendation event", "topic", src.Topic, "error", err)
		return false
	}

	source := ev.Type
	if source == "" {
		source = "PRODUCT_RECOMMENDATIONS"
	}

	return p.deps.runWithRetry(p.policy, string(notification.TypeRecommendation), func(attempt int) error {
		email, err := p.deps.Users.GetEmail(ctx, ev.UserID)
		if err != nil {
			return fmt.Errorf("resolve user email: %w", err)
		}

		rec := &notification.Record{
			UserID:   ev.UserID,
			Email:    email,
			Type:     notification.TypeRecommendation,
			Priority: notification.PriorityStandard,
			Content: map[string]any{
				"recommendations": ev.Recommendations,
				"timestamp":       ev.Timestamp,
			},
			Metadata: map[string]any{
				"retryCount":           attempt,
				"recommendationSource": source,
				"generatedAt":          ev.Timestamp,
			},
			SentAt: time.Now().UTC(),
		}

		created, err := p.deps.Store.Create(ctx, rec)
		if err != nil {
			return fmt.Errorf("create notification: %w", err)
		}
		eventsProcessed.WithLabelValues(string(notification.TypeRecommendation)).Inc()

		if p.inlineEmail {
			p.sendInline(ctx, created, ev.Recommendations)
		}
		return nil
	})
}

// sendInline mirrors the sweep's send path; a failure here is swallowed and
// the notification stays unsent so the sweep picks it up later.
func (p *RecommendationProcessor) sendInline(ctx context.Context, rec *notification.Record, recs []event.RecommendedProduct) {
	if rec.Email == "" {
		p.deps.Logger.Warn("no email for user, leaving recommendation to the sweep", "user_id", rec.UserID)
		return
	}

	body := formatRecommendationEmail(recs)
	if _, err := p.deps.Mailer.Send(ctx, rec.Email, recommendationEmailSubject, notification.TypeRecommendation, body); err != nil {
		emailsFailed.Inc()
		p.deps.Logger.Error("inline recommendation email failed, sweep will retry", "user_id", rec.UserID, "error", err)
		return
	}
	if err := p.deps.Store.MarkEmailSent(ctx, rec.ID, time.Now().UTC()); err != nil {
		p.deps.Logger.Error("failed to mark recommendation email sent", "notification_id", rec.ID, "error", err)
		return
	}
	emailsSent.Inc()
}
