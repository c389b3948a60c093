package recommender

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/clients"
	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/domain/recommendation"
)

// HistoryWriter persists purchase history entries and order snapshots.
type HistoryWriter interface {
	AppendRecord(ctx context.Context, userID string, rec recommendation.PurchaseRecord) error
	WriteOrderSnapshot(ctx context.Context, snap recommendation.OrderSnapshot) error
}

// OrderSource lists the orders to ingest.
type OrderSource interface {
	ListOrders(ctx context.Context) ([]clients.Order, error)
}

// ProductLookup resolves a single product for line-item backfill.
type ProductLookup interface {
	GetByID(ctx context.Context, id string) (*clients.Product, error)
}

// Ingestor copies orders into the purchase history store and drives
// recommendation generation for the affected users.
type Ingestor struct {
	orders  OrderSource
	catalog ProductLookup
	history HistoryWriter
	engine  *Engine
	logger  *slog.Logger
	now     func() time.Time
}

func NewIngestor(orders OrderSource, catalog ProductLookup, history HistoryWriter, engine *Engine, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{
		orders:  orders,
		catalog: catalog,
		history: history,
		engine:  engine,
		logger:  logger,
		now:     time.Now,
	}
}

// Tick ingests the current order set and regenerates recommendations for
// every user that had at least one order.
func (i *Ingestor) Tick(ctx context.Context) {
	users, err := i.Ingest(ctx)
	if err != nil {
		i.logger.Error("ingestion tick aborted", "error", err)
		return
	}

	for _, userID := range users {
		if err := i.engine.GenerateForUser(ctx, userID); err != nil {
			i.logger.Error("recommendation generation failed", "user_id", userID, "error", err)
		}
	}
}

// Ingest copies every listed order into the history store and returns the
// distinct user ids touched. A failure on one order is logged and the rest
// are still processed.
func (i *Ingestor) Ingest(ctx context.Context) ([]string, error) {
	orders, err := i.orders.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	seen := make(map[string]struct{})
	var users []string
	for _, order := range orders {
		if err := i.ingestOrder(ctx, order); err != nil {
			ingestFailures.Inc()
			i.logger.Error("failed to ingest order", "order_id", order.ID, "error", err)
			continue
		}
		ordersIngested.Inc()
		if _, ok := seen[order.UserID]; !ok {
			seen[order.UserID] = struct{}{}
			users = append(users, order.UserID)
		}
	}

	i.logger.Info("order ingestion complete", "orders", len(orders), "users", len(users))
	return users, nil
}

func (i *Ingestor) ingestOrder(ctx context.Context, order clients.Order) error {
	if order.UserID == "" {
		return fmt.Errorf("order %s has no user id", order.ID)
	}

	date := i.now().UTC()
	lines := make([]recommendation.OrderLine, 0, len(order.Products))
	records := make([]recommendation.PurchaseRecord, 0, len(order.Products))
	for _, item := range order.Products {
		line := i.resolveLine(ctx, item)
		lines = append(lines, line)
		records = append(records, recommendation.PurchaseRecord{
			ProductID: line.ProductID,
			Category:  line.Category,
			Quantity:  line.Quantity,
			Price:     line.Price,
			Name:      line.Name,
			Date:      date,
		})
	}

	snap := recommendation.OrderSnapshot{
		OrderID:  order.ID,
		UserID:   order.UserID,
		Products: lines,
		Date:     date,
	}
	if err := i.history.WriteOrderSnapshot(ctx, snap); err != nil {
		return err
	}

	for _, rec := range records {
		if err := i.history.AppendRecord(ctx, order.UserID, rec); err != nil {
			return err
		}
	}
	return nil
}

// resolveLine backfills name, category and price from the catalog when the
// order line lacks them. A failed lookup degrades to placeholder values so
// the purchase is still counted.
func (i *Ingestor) resolveLine(ctx context.Context, item clients.OrderItem) recommendation.OrderLine {
	line := recommendation.OrderLine{
		ProductID: item.ID,
		Quantity:  item.Quantity,
		Name:      item.Name,
		Category:  item.Category,
		Price:     item.Price,
	}
	if line.Name != "" && line.Category != "" {
		return line
	}

	product, err := i.catalog.GetByID(ctx, item.ID)
	if err != nil || product == nil {
		i.logger.Warn("product lookup failed, recording with placeholders",
			"product_id", item.ID, "error", err)
		if line.Name == "" {
			line.Name = "Product " + item.ID
		}
		if line.Category == "" {
			line.Category = recommendation.CategoryUnknown
		}
		return line
	}

	if line.Name == "" {
		line.Name = product.Name
	}
	if line.Category == "" {
		line.Category = product.Category
	}
	if line.Price == 0 {
		line.Price = product.Price
	}
	return line
}
