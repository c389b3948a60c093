package notifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/domain/event"
	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/domain/notification"
)

func unsentRecommendation(id, userID, email string) *notification.Record {
	return &notification.Record{
		ID:     id,
		UserID: userID,
		Email:  email,
		Type:   notification.TypeRecommendation,
		Content: map[string]any{
			"recommendations": []map[string]any{
				{"productId": "p1", "name": "Widget", "price": 9.99, "category": "Tools"},
			},
		},
	}
}

func TestSweepSendsAndMarksUnsentRecords(t *testing.T) {
	store := newFakeStore()
	store.unsent = []*notification.Record{
		unsentRecommendation("n1", "u1", "u1@example.com"),
		unsentRecommendation("n2", "u2", "u2@example.com"),
	}
	mailer := &fakeMailer{}

	s := NewSweep(store, &fakeDirectory{}, mailer, 10, 2, nil)
	s.Tick(context.Background())

	assert.Len(t, mailer.sent, 2)
	assert.ElementsMatch(t, []string{"n1", "n2"}, store.markedSent)
	assert.Empty(t, store.markedError)
	for _, sent := range mailer.sent {
		assert.Equal(t, recommendationEmailSubject, sent.Subject)
		assert.Contains(t, sent.Content.(string), "Widget")
		assert.Contains(t, sent.Content.(string), "$9.99")
	}
}

func TestSweepResolvesMissingEmailViaDirectory(t *testing.T) {
	store := newFakeStore()
	store.unsent = []*notification.Record{unsentRecommendation("n1", "u1", "")}
	mailer := &fakeMailer{}
	users := &fakeDirectory{emails: map[string]string{"u1": "resolved@example.com"}}

	s := NewSweep(store, users, mailer, 10, 1, nil)
	s.Tick(context.Background())

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "resolved@example.com", mailer.sent[0].To)
	assert.Equal(t, []string{"n1"}, store.markedSent)
}

func TestSweepRecordsErrorForUnreachableUser(t *testing.T) {
	store := newFakeStore()
	store.unsent = []*notification.Record{unsentRecommendation("n1", "u1", "")}
	mailer := &fakeMailer{}

	// Directory knows no address for u1.
	s := NewSweep(store, &fakeDirectory{emails: map[string]string{}}, mailer, 10, 1, nil)
	s.Tick(context.Background())

	assert.Empty(t, mailer.sent)
	assert.Empty(t, store.markedSent)
	assert.Contains(t, store.markedError, "n1")
}

func TestSweepRecordsMailerFailure(t *testing.T) {
	store := newFakeStore()
	store.unsent = []*notification.Record{unsentRecommendation("n1", "u1", "u1@example.com")}
	mailer := &fakeMailer{err: assert.AnError}

	s := NewSweep(store, &fakeDirectory{}, mailer, 10, 1, nil)
	s.Tick(context.Background())

	assert.Empty(t, store.markedSent)
	assert.Contains(t, store.markedError, "n1")
}

func TestSweepSkipsMalformedContent(t *testing.T) {
	store := newFakeStore()
	store.unsent = []*notification.Record{{
		ID:      "n1",
		UserID:  "u1",
		Email:   "u1@example.com",
		Type:    notification.TypeRecommendation,
		Content: map[string]any{"recommendations": "not-a-list"},
	}}
	mailer := &fakeMailer{}

	s := NewSweep(store, &fakeDirectory{}, mailer, 10, 1, nil)
	s.Tick(context.Background())

	assert.Empty(t, mailer.sent)
	assert.Contains(t, store.markedError, "n1")
}

func TestSweepTickSurvivesListFailure(t *testing.T) {
	store := newFakeStore()
	store.listErr = assert.AnError

	s := NewSweep(store, &fakeDirectory{}, &fakeMailer{}, 10, 1, nil)
	s.Tick(context.Background())

	assert.Empty(t, store.markedSent)
	assert.Empty(t, store.markedError)
}

func TestFormatRecommendationEmail(t *testing.T) {
	body := formatRecommendationEmail([]event.RecommendedProduct{
		{ProductID: "p1", Name: "Widget", Price: 9.99, Category: "Tools"},
		{ProductID: "p2", Name: "Gadget", Price: 19.5, Category: "Electronics"},
	})

	assert.Contains(t, body, "- Widget\n  Category: Tools\n  Price: $9.99")
	assert.Contains(t, body, "- Gadget\n  Category: Electronics\n  Price: $19.50")
}
