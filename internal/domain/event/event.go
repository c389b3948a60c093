package event

import (
	"encoding/json"
	"errors"
	"time"
)

// Topic names used across the pipeline.
const (
	TopicUserEvents           = "user-events"
	TopicOrderEvents          = "order-events"
	TopicPromotionalEvents    = "promotional-events"
	TopicRecommendationEvents = "recommendation-events"
	TopicDeadLetter           = "dead-letter-queue"
)

var (
	ErrMissingUserID           = errors.New("event is missing userId")
	ErrEmptyRecommendations    = errors.New("event has no recommendations")
	ErrMalformedRecommendation = errors.New("recommendation entry is missing productId, name or category")
)

// UserUpdateEvent is published on user-events whenever a user profile changes.
type UserUpdateEvent struct {
	UserID     string         `json:"userId"`
	UpdateType string         `json:"updateType"`
	Details    map[string]any `json:"details"`

	// Extra holds fields the decoder does not know about so that payload
	// additions from producers survive a round trip through the pipeline.
	Extra map[string]json.RawMessage `json:"-"`
}

func (e *UserUpdateEvent) Validate() error {
	if e.UserID == "" {
		return ErrMissingUserID
	}
	return nil
}

// OrderUpdateEvent is published on order-events for order state transitions.
type OrderUpdateEvent struct {
	UserID  string `json:"userId"`
	OrderID string `json:"orderId"`
	Status  string `json:"status"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (e *OrderUpdateEvent) Validate() error {
	if e.UserID == "" {
		return ErrMissingUserID
	}
	return nil
}

// AsMap rebuilds the full event payload, including unknown fields, for use
// as notification content.
func (e *OrderUpdateEvent) AsMap() map[string]any {
	m := map[string]any{
		"userId":  e.UserID,
		"orderId": e.OrderID,
	}
	if e.Status != "" {
		m["status"] = e.Status
	}
	for k, v := range e.Extra {
		m[k] = v
	}
	return m
}

// PromotionEvent is published on promotional-events, either by upstream
// product services or synthetically by the campaign trigger.
type PromotionEvent struct {
	UserID    string         `json:"userId"`
	Email     string         `json:"email,omitempty"`
	EventType string         `json:"eventType"`
	Details   map[string]any `json:"details,omitempty"`
	Metadata  struct {
		BatchID string `json:"batchId,omitempty"`
	} `json:"metadata,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (e *PromotionEvent) Validate() error {
	if e.UserID == "" {
		return ErrMissingUserID
	}
	return nil
}

// RecommendedProduct is a single entry of a recommendation set.
type RecommendedProduct struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Category  string  `json:"category"`
}

// RecommendationEvent is the envelope emitted by the recommendation engine
// and consumed back through the standard-priority lane.
type RecommendationEvent struct {
	Type            string               `json:"type"`
	UserID          string               `json:"userId"`
	Timestamp       time.Time            `json:"timestamp"`
	Recommendations []RecommendedProduct `json:"recommendations"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (e *RecommendationEvent) Validate() error {
	if e.UserID == "" {
		return ErrMissingUserID
	}
	if len(e.Recommendations) == 0 {
		return ErrEmptyRecommendations
	}
	for _, rec := range e.Recommendations {
		if rec.ProductID == "" || rec.Name == "" || rec.Category == "" {
			return ErrMalformedRecommendation
		}
	}
	return nil
}

func DecodeUserUpdate(data []byte) (*UserUpdateEvent, error) {
	var e UserUpdateEvent
	extra, err := decodeWithExtra(data, &e, "userId", "updateType", "details")
	if err != nil {
		return nil, err
	}
	e.Extra = extra
	return &e, nil
}

func DecodeOrderUpdate(data []byte) (*OrderUpdateEvent, error) {
	var e OrderUpdateEvent
	extra, err := decodeWithExtra(data, &e, "userId", "orderId", "status")
	if err != nil {
		return nil, err
	}
	e.Extra = extra
	return &e, nil
}

func DecodePromotion(data []byte) (*PromotionEvent, error) {
	var e PromotionEvent
	extra, err := decodeWithExtra(data, &e, "userId", "email", "eventType", "details", "metadata")
	if err != nil {
		return nil, err
	}
	e.Extra = extra
	return &e, nil
}

func DecodeRecommendation(data []byte) (*RecommendationEvent, error) {
	var e RecommendationEvent
	extra, err := decodeWithExtra(data, &e, "type", "userId", "timestamp", "recommendations")
	if err != nil {
		return nil, err
	}
	e.Extra = extra
	return &e, nil
}

// decodeWithExtra unmarshals data into v and returns any top-level fields
// not claimed by the typed struct.
func decodeWithExtra(data []byte, v any, known ...string) (map[string]json.RawMessage, error) {
	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}
