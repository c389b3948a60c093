package notification

import "time"

// Type enumerates the notification families produced by the pipeline.
type Type string

const (
	TypePromotion      Type = "promotion"
	TypeOrderUpdate    Type = "order_update"
	TypeRecommendation Type = "recommendation"
	TypeUserUpdate     Type = "user_update"
)

// Priority enumerates the delivery priorities.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityStandard Priority = "standard"
)

// Record is a durable notification. It is created once by an event processor
// and mutated afterwards only by the read- and email-tracking operations.
type Record struct {
	ID               string         `json:"id"`
	UserID           string         `json:"userId"`
	Email            string         `json:"email,omitempty"`
	Type             Type           `json:"type"`
	Priority         Priority       `json:"priority"`
	Content          map[string]any `json:"content"`
	Metadata         map[string]any `json:"metadata"`
	SentAt           time.Time      `json:"sentAt"`
	Read             bool           `json:"read"`
	ReadAt           *time.Time     `json:"readAt,omitempty"`
	EmailSent        bool           `json:"emailSent"`
	EmailError       string         `json:"emailError,omitempty"`
	LastEmailAttempt *time.Time     `json:"lastEmailAttempt,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
}
