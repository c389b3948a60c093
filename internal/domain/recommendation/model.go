package recommendation

import (
	"time"

	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/domain/event"
)

// PurchaseRecord is one line item of an order, appended to a user's
// purchase history. Records are never mutated; their order in the history
// reflects append order and is used as the ranking tie-break.
type PurchaseRecord struct {
	ProductID string    `json:"productId"`
	Category  string    `json:"category"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
}

// CategoryUnknown marks line items whose product lookup failed. Unknown
// records are kept in the history but excluded from category ranking.
const CategoryUnknown = "Unknown"

// OrderLine is a denormalized product entry of an order snapshot.
type OrderLine struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
}

// OrderSnapshot is the denormalized copy of an order persisted next to the
// purchase history.
type OrderSnapshot struct {
	OrderID  string      `json:"orderId"`
	UserID   string      `json:"userId"`
	Products []OrderLine `json:"products"`
	Date     time.Time   `json:"date"`
}

// SetType is the event type carried by emitted recommendation sets.
const SetType = "PRODUCT_RECOMMENDATIONS"

// Set is the bounded product selection emitted for one user. It is
// serialized as a RecommendationEvent and re-enters the pipeline through
// the standard-priority lane.
type Set struct {
	Type            string                     `json:"type"`
	UserID          string                     `json:"userId"`
	Timestamp       time.Time                  `json:"timestamp"`
	Recommendations []event.RecommendedProduct `json:"recommendations"`
}
