package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"regexp"
	"time"

	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/clients"
	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/domain/event"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// CampaignTrigger periodically samples eligible users and feeds synthetic
// promotional events through the promotion processor, so campaign traffic
// takes the exact same retry path as bus traffic.
type CampaignTrigger struct {
	users     UserDirectory
	processor Processor
	batchSize int
	logger    *slog.Logger
	randInt   func(n int) int
}

func NewCampaignTrigger(users UserDirectory, processor Processor, batchSize int, logger *slog.Logger) *CampaignTrigger {
	if batchSize <= 0 {
		batchSize = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CampaignTrigger{
		users:     users,
		processor: processor,
		batchSize: batchSize,
		logger:    logger,
		randInt:   rand.Intn,
	}
}

// Tick runs one campaign round. A directory failure aborts only this tick;
// nothing is carried over to the next one.
func (t *CampaignTrigger) Tick(ctx context.Context) {
	users, err := t.users.ListUsers(ctx)
	if err != nil {
		t.logger.Error("campaign tick aborted: failed to fetch users", "error", err)
		return
	}

	eligible := t.filterEligible(users)
	if len(eligible) == 0 {
		t.logger.Info("no eligible users for campaign")
		return
	}

	selected := t.sample(eligible, t.batchSize)
	batchID := fmt.Sprintf("PROMO_%d", time.Now().UnixMilli())

	var success, failed int
	for _, u := range selected {
		raw, err := json.Marshal(map[string]any{
			"userId":    u.ID,
			"email":     u.Email,
			"eventType": "PROMOTIONAL_CAMPAIGN",
			"details": map[string]any{
				"message": "Check out our latest promotions!",
				"name":    u.Name,
			},
			"metadata": map[string]any{
				"batchId":     batchID,
				"isAutomated": true,
			},
		})
		if err != nil {
			failed++
			continue
		}

		src := MessageContext{Topic: event.TopicPromotionalEvents, Partition: -1, Offset: -1}
		if t.processor.ProcessWithRetry(ctx, raw, src) {
			success++
			campaignNotifications.Inc()
		} else {
			failed++
		}
	}

	t.logger.Info("campaign tick complete",
		"batch_id", batchID, "selected", len(selected), "success", success, "failed", failed)
}

// filterEligible keeps users with a syntactically valid email whose
// promotion preference is not explicitly disabled.
func (t *CampaignTrigger) filterEligible(users []clients.User) []clients.User {
	eligible := make([]clients.User, 0, len(users))
	for _, u := range users {
		if emailPattern.MatchString(u.Email) && u.Preferences.PromotionsEnabled() {
			eligible = append(eligible, u)
		}
	}
	return eligible
}

// sample picks up to n users uniformly at random without replacement.
func (t *CampaignTrigger) sample(users []clients.User, n int) []clients.User {
	pool := make([]clients.User, len(users))
	copy(pool, users)
	if n > len(pool) {
		n = len(pool)
	}

	picked := make([]clients.User, 0, n)
	for len(picked) < n {
		i := t.randInt(len(pool))
		picked = append(picked, pool[i])
		pool = append(pool[:i], pool[i+1:]...)
	}
	return picked
}
