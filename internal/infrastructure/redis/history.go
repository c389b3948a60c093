package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/domain/recommendation"
)

// HistoryStore keeps per-user purchase histories as append-only lists and
// order snapshots as hashes. Appends are commutative for the aggregation
// step, so concurrent writers for the same user need no coordination.
type HistoryStore struct {
	client *redis.Client
}

func NewHistoryStore(client *redis.Client) *HistoryStore {
	return &HistoryStore{client: client}
}

func historyKey(userID string) string {
	return "user:" + userID + ":purchaseHistory"
}

func orderKey(orderID string) string {
	return "order:" + orderID
}

// AppendRecord pushes one purchase record onto the end of the user's history.
func (s *HistoryStore) AppendRecord(ctx context.Context, userID string, rec recommendation.PurchaseRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal purchase record: %w", err)
	}
	if err := s.client.RPush(ctx, historyKey(userID), data).Err(); err != nil {
		return fmt.Errorf("append purchase record: %w", err)
	}
	return nil
}

// ReadHistory returns the user's full purchase history in append order.
func (s *HistoryStore) ReadHistory(ctx context.Context, userID string) ([]recommendation.PurchaseRecord, error) {
	items, err := s.client.LRange(ctx, historyKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read purchase history: %w", err)
	}

	records := make([]recommendation.PurchaseRecord, 0, len(items))
	for _, item := range items {
		var rec recommendation.PurchaseRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal purchase record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteOrderSnapshot stores the denormalized order copy under order:<id>.
func (s *HistoryStore) WriteOrderSnapshot(ctx context.Context, snap recommendation.OrderSnapshot) error {
	products, err := json.Marshal(snap.Products)
	if err != nil {
		return fmt.Errorf("marshal snapshot products: %w", err)
	}

	fields := map[string]any{
		"userId":   snap.UserID,
		"orderId":  snap.OrderID,
		"products": string(products),
		"date":     snap.Date.UTC().Format(time.RFC3339),
	}
	if err := s.client.HSet(ctx, orderKey(snap.OrderID), fields).Err(); err != nil {
		return fmt.Errorf("write order snapshot: %w", err)
	}
	return nil
}
