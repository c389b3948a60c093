package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Order is the orders service's view of a placed order.
type Order struct {
	ID       string      `json:"_id"`
	UserID   string      `json:"userId"`
	Products []OrderItem `json:"products"`
}

// OrderItem is a single line of an order. Name, category and price may be
// absent and get backfilled from the catalog during ingestion.
type OrderItem struct {
	ID       string  `json:"_id"`
	Quantity int     `json:"quantity"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

type ordersResponse struct {
	Result []Order `json:"result"`
}

// OrdersClient talks to the orders service.
type OrdersClient struct {
	baseURL string
	client  *http.Client
}

func NewOrdersClient(baseURL string, timeout time.Duration) *OrdersClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OrdersClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// ListOrders returns the current order set.
func (c *OrdersClient) ListOrders(ctx context.Context) ([]Order, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("orders service returned %d", resp.StatusCode)
	}

	var envelope ordersResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return envelope.Result, nil
}
