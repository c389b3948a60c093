package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/domain/event"
	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/domain/notification"
)

const recommendationEmailSubject = "Your Personalized Product Recommendations"

// Sweep periodically drains recommendation notifications whose email has
// not gone out yet. Each tick is independent: records that fail stay
// unsent and are retried on a later tick.
type Sweep struct {
	store       NotificationStore
	users       UserDirectory
	mailer      EmailSender
	batchLimit  int
	concurrency int
	logger      *slog.Logger
	now         func() time.Time
}

func NewSweep(store NotificationStore, users UserDirectory, mailer EmailSender, batchLimit, concurrency int, logger *slog.Logger) *Sweep {
	if batchLimit <= 0 {
		batchLimit = 10
	}
	if concurrency <= 0 {
		concurrency = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweep{
		store:       store,
		users:       users,
		mailer:      mailer,
		batchLimit:  batchLimit,
		concurrency: concurrency,
		logger:      logger,
		now:         time.Now,
	}
}

// Tick processes one batch of unsent recommendation records.
func (s *Sweep) Tick(ctx context.Context) {
	records, err := s.store.ListUnsentRecommendations(ctx, s.batchLimit)
	if err != nil {
		s.logger.Error("sweep tick aborted: failed to list unsent recommendations", "error", err)
		return
	}
	if len(records) == 0 {
		return
	}

	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup
	for _, rec := range records {
		rec := rec
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			s.sendOne(ctx, rec)
		}()
	}
	wg.Wait()
}

func (s *Sweep) sendOne(ctx context.Context, rec *notification.Record) {
	email := rec.Email
	if email == "" {
		resolved, err := s.users.GetEmail(ctx, rec.UserID)
		if err != nil {
			s.markError(ctx, rec.ID, fmt.Sprintf("email lookup failed: %v", err))
			return
		}
		email = resolved
	}
	if !emailPattern.MatchString(email) {
		s.markError(ctx, rec.ID, "no valid email address for user")
		return
	}

	recs, err := recommendationsFromContent(rec.Content)
	if err != nil {
		s.markError(ctx, rec.ID, fmt.Sprintf("malformed recommendations content: %v", err))
		return
	}

	body := formatRecommendationEmail(recs)
	if _, err := s.mailer.Send(ctx, email, recommendationEmailSubject, notification.TypeRecommendation, body); err != nil {
		emailsFailed.Inc()
		s.markError(ctx, rec.ID, err.Error())
		return
	}

	emailsSent.Inc()
	if err := s.store.MarkEmailSent(ctx, rec.ID, s.now()); err != nil {
		s.logger.Error("failed to mark recommendation email as sent",
			"notification_id", rec.ID, "error", err)
	}
}

func (s *Sweep) markError(ctx context.Context, id, msg string) {
	s.logger.Warn("recommendation email not sent", "notification_id", id, "reason", msg)
	if err := s.store.MarkEmailError(ctx, id, msg); err != nil {
		s.logger.Error("failed to record email error", "notification_id", id, "error", err)
	}
}

// recommendationsFromContent extracts the recommended products stored in a
// notification's content payload.
func recommendationsFromContent(content map[string]any) ([]event.RecommendedProduct, error) {
	raw, ok := content["recommendations"]
	if !ok {
		return nil, fmt.Errorf("content has no recommendations field")
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var recs []event.RecommendedProduct
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("recommendations list is empty")
	}
	return recs, nil
}

func formatRecommendationEmail(recs []event.RecommendedProduct) string {
	var b strings.Builder
	b.WriteString("Based on your purchase history, we think you'll love these products:\n\n")
	for _, r := range recs {
		fmt.Fprintf(&b, "- %s\n  Category: %s\n  Price: $%.2f\n", r.Name, r.Category, r.Price)
	}
	b.WriteString("\nHappy shopping!")
	return b.String()
}
