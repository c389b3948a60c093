package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Product is the catalog's view of a product.
type Product struct {
	ID       string  `json:"_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Category string  `json:"category"`
}

type productsResponse struct {
	Data struct {
		Products []Product `json:"products"`
	} `json:"data"`
}

type productResponse struct {
	Data struct {
		Product *Product `json:"product"`
	} `json:"data"`
}

// CatalogClient talks to the product catalog service.
type CatalogClient struct {
	baseURL string
	client  *http.Client
}

func NewCatalogClient(baseURL string, timeout time.Duration) *CatalogClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &CatalogClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// GetByCategory returns all products of a category in catalog order.
func (c *CatalogClient) GetByCategory(ctx context.Context, category string) ([]Product, error) {
	path := fmt.Sprintf("%s/category?category=%s", c.baseURL, url.QueryEscape(category))

	var envelope productsResponse
	if err := c.getJSON(ctx, path, &envelope); err != nil {
		return nil, fmt.Errorf("fetch products for category %s: %w", category, err)
	}
	return envelope.Data.Products, nil
}

// GetByID returns a single product, or nil when the catalog does not know it.
func (c *CatalogClient) GetByID(ctx context.Context, id string) (*Product, error) {
	var envelope productResponse
	if err := c.getJSON(ctx, c.baseURL+"/id/"+url.PathEscape(id), &envelope); err != nil {
		return nil, fmt.Errorf("fetch product %s: %w", id, err)
	}
	return envelope.Data.Product, nil
}

func (c *CatalogClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("products service returned %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
