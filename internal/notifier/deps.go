package notifier

import (
	"context"
	"time"

	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/clients"
	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/domain/notification"
)

// NotificationStore is the narrow surface the pipeline needs from the
// notification database.
type NotificationStore interface {
	Create(ctx context.Context, rec *notification.Record) (*notification.Record, error)
	ListUnsentRecommendations(ctx context.Context, limit int) ([]*notification.Record, error)
	MarkEmailSent(ctx context.Context, id string, at time.Time) error
	MarkEmailError(ctx context.Context, id string, msg string) error
}

// EmailSender dispatches a single email through the relay.
type EmailSender interface {
	Send(ctx context.Context, to, subject string, kind notification.Type, content any) (*clients.SendResult, error)
}

// UserDirectory resolves user contact data.
type UserDirectory interface {
	GetEmail(ctx context.Context, userID string) (string, error)
	ListUsers(ctx context.Context) ([]clients.User, error)
}

// Publisher writes a message to a bus topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}
