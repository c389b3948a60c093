package recommender

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/clients"
	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/domain/event"
	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/domain/recommendation"
)

const maxRecommendations = 3

// HistoryReader reads a user's accumulated purchase history.
type HistoryReader interface {
	ReadHistory(ctx context.Context, userID string) ([]recommendation.PurchaseRecord, error)
}

// Catalog looks up products by category.
type Catalog interface {
	GetByCategory(ctx context.Context, category string) ([]clients.Product, error)
}

// Publisher writes a message to a bus topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// fallbackProducts is the last-resort recommendation tier, served when
// neither the ranked categories nor the default category yield anything.
var fallbackProducts = []event.RecommendedProduct{
	{ProductID: "fallback-1", Name: "Wireless Headphones", Price: 79.99, Category: "Electronics"},
	{ProductID: "fallback-2", Name: "Smart Watch", Price: 199.99, Category: "Electronics"},
	{ProductID: "fallback-3", Name: "Bluetooth Speaker", Price: 49.99, Category: "Electronics"},
}

// Engine turns purchase histories into bounded recommendation sets and
// publishes them to the recommendation topic. Selection degrades through
// three tiers: ranked history categories, the configured default category,
// and finally a hardcoded set, so every user always gets a non-empty result.
type Engine struct {
	history         HistoryReader
	catalog         Catalog
	producer        Publisher
	topic           string
	defaultCategory string
	logger          *slog.Logger
	now             func() time.Time
}

func NewEngine(history HistoryReader, catalog Catalog, producer Publisher, topic, defaultCategory string, logger *slog.Logger) *Engine {
	if defaultCategory == "" {
		defaultCategory = "Electronics"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		history:         history,
		catalog:         catalog,
		producer:        producer,
		topic:           topic,
		defaultCategory: defaultCategory,
		logger:          logger,
		now:             time.Now,
	}
}

// GenerateForUser builds one recommendation set for the user and publishes
// it keyed by user id.
func (e *Engine) GenerateForUser(ctx context.Context, userID string) error {
	history, err := e.history.ReadHistory(ctx, userID)
	if err != nil {
		generationFailures.Inc()
		return fmt.Errorf("read history for user %s: %w", userID, err)
	}

	purchased := make(map[string]struct{}, len(history))
	for _, rec := range history {
		purchased[rec.ProductID] = struct{}{}
	}

	recs := e.fromCategories(ctx, rankCategories(history), purchased)
	if len(recs) == 0 {
		recs = e.fromCategories(ctx, []string{e.defaultCategory}, purchased)
	}
	if len(recs) == 0 {
		e.logger.Info("serving fallback recommendations", "user_id", userID)
		fallbackServed.Inc()
		recs = fallbackProducts
	}

	set := recommendation.Set{
		Type:            recommendation.SetType,
		UserID:          userID,
		Timestamp:       e.now().UTC(),
		Recommendations: recs,
	}
	payload, err := json.Marshal(set)
	if err != nil {
		generationFailures.Inc()
		return fmt.Errorf("marshal recommendation set: %w", err)
	}

	if err := e.producer.Publish(ctx, e.topic, []byte(userID), payload); err != nil {
		generationFailures.Inc()
		return fmt.Errorf("publish recommendation set for user %s: %w", userID, err)
	}

	setsEmitted.Inc()
	e.logger.Info("recommendation set published",
		"user_id", userID, "count", len(recs), "topic", e.topic)
	return nil
}

// fromCategories walks categories in order and returns candidates from the
// first category that yields any. A catalog failure for one category is
// logged and the next category is tried.
func (e *Engine) fromCategories(ctx context.Context, categories []string, purchased map[string]struct{}) []event.RecommendedProduct {
	for _, category := range categories {
		products, err := e.catalog.GetByCategory(ctx, category)
		if err != nil {
			e.logger.Warn("catalog lookup failed, trying next category",
				"category", category, "error", err)
			continue
		}
		if recs := pickCandidates(products, purchased); len(recs) > 0 {
			return recs
		}
	}
	return nil
}

// pickCandidates keeps in-stock, not-yet-purchased products in catalog
// order until the set is full.
func pickCandidates(products []clients.Product, purchased map[string]struct{}) []event.RecommendedProduct {
	var recs []event.RecommendedProduct
	for _, p := range products {
		if len(recs) >= maxRecommendations {
			break
		}
		if p.Quantity <= 0 {
			continue
		}
		if _, seen := purchased[p.ID]; seen {
			continue
		}
		recs = append(recs, event.RecommendedProduct{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Category:  p.Category,
		})
	}
	return recs
}

// rankCategories orders the history's categories by total purchased
// quantity, highest first. Unknown entries are skipped; ties keep the
// order in which a category first appears in the history.
func rankCategories(history []recommendation.PurchaseRecord) []string {
	counts := make(map[string]int)
	var order []string
	for _, rec := range history {
		if rec.Category == "" || rec.Category == recommendation.CategoryUnknown {
			continue
		}
		if _, ok := counts[rec.Category]; !ok {
			order = append(order, rec.Category)
		}
		counts[rec.Category] += rec.Quantity
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	return order
}
