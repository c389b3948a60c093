package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/domain/notification"
)

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// Migrate creates the notifications table and the sweep index when they do
// not exist yet.
func (r *NotificationRepository) Migrate(ctx context.Context) error {
	const table = `
		CREATE TABLE IF NOT EXISTS notifications (
			id                 UUID PRIMARY KEY,
			user_id            TEXT NOT NULL,
			email              TEXT,
			type               TEXT NOT NULL,
			priority           TEXT NOT NULL,
			content            JSONB NOT NULL DEFAULT '{}',
			metadata           JSONB NOT NULL DEFAULT '{}',
			sent_at            TIMESTAMPTZ NOT NULL,
			read               BOOLEAN NOT NULL DEFAULT FALSE,
			read_at            TIMESTAMPTZ,
			email_sent         BOOLEAN NOT NULL DEFAULT FALSE,
			email_error        TEXT,
			last_email_attempt TIMESTAMPTZ,
			created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	const index = `
		CREATE INDEX IF NOT EXISTS idx_notifications_unsent
			ON notifications (type, created_at) WHERE email_sent = FALSE
	`
	if _, err := r.pool.Exec(ctx, table); err != nil {
		return fmt.Errorf("create notifications table: %w", err)
	}
	if _, err := r.pool.Exec(ctx, index); err != nil {
		return fmt.Errorf("create notifications index: %w", err)
	}
	return nil
}

// Create persists a notification record and returns it with its id set.
func (r *NotificationRepository) Create(ctx context.Context, rec *notification.Record) (*notification.Record, error) {
	const sql = `
		INSERT INTO notifications
			(id, user_id, email, type, priority, content, metadata, sent_at, read, email_sent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING id, created_at
	`

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	content, err := json.Marshal(rec.Content)
	if err != nil {
		return nil, fmt.Errorf("marshal notification content: %w", err)
	}
	metadata, err := json.Marshal(rec.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal notification metadata: %w", err)
	}

	row := r.pool.QueryRow(ctx, sql,
		rec.ID, rec.UserID, nullIfEmpty(rec.Email), string(rec.Type), string(rec.Priority),
		content, metadata, rec.SentAt, rec.Read, rec.EmailSent)

	if err := row.Scan(&rec.ID, &rec.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}

	return rec, nil
}

// ListUnsentRecommendations returns recommendation notifications whose email
// has not gone out yet, oldest first, for the periodic sweep.
func (r *NotificationRepository) ListUnsentRecommendations(ctx context.Context, limit int) ([]*notification.Record, error) {
	const sql = `
		SELECT
			id,
			user_id,
			COALESCE(email, ''),
			type,
			priority,
			content,
			metadata,
			sent_at,
			read,
			email_sent,
			COALESCE(email_error, ''),
			created_at
		FROM notifications
		WHERE type = $1 AND email_sent = FALSE
		ORDER BY created_at ASC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, sql, string(notification.TypeRecommendation), limit)
	if err != nil {
		return nil, fmt.Errorf("query unsent recommendations: %w", err)
	}
	defer rows.Close()

	var records []*notification.Record
	for rows.Next() {
		rec := &notification.Record{}
		var content, metadata []byte
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Email, &rec.Type, &rec.Priority,
			&content, &metadata, &rec.SentAt, &rec.Read, &rec.EmailSent, &rec.EmailError, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		if err := json.Unmarshal(content, &rec.Content); err != nil {
			return nil, fmt.Errorf("unmarshal notification content: %w", err)
		}
		if err := json.Unmarshal(metadata, &rec.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal notification metadata: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// MarkEmailSent records a successful email dispatch for a notification.
func (r *NotificationRepository) MarkEmailSent(ctx context.Context, id string, at time.Time) error {
	const sql = `
		UPDATE notifications
		SET email_sent = TRUE, email_error = NULL, sent_at = $2, last_email_attempt = $2
		WHERE id = $1
	`
	if _, err := r.pool.Exec(ctx, sql, id, at); err != nil {
		return fmt.Errorf("mark email sent: %w", err)
	}
	return nil
}

// MarkEmailError records a failed email attempt; the sweep will pick the
// notification up again on a later tick.
func (r *NotificationRepository) MarkEmailError(ctx context.Context, id string, msg string) error {
	const sql = `
		UPDATE notifications
		SET email_error = $2, last_email_attempt = NOW()
		WHERE id = $1
	`
	if _, err := r.pool.Exec(ctx, sql, id, msg); err != nil {
		return fmt.Errorf("mark email error: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
