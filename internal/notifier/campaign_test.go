package notifier

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/clients"
	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/domain/notification"
)

func boolPtr(b bool) *bool { return &b }

func TestCampaignFiltersIneligibleUsers(t *testing.T) {
	store := newFakeStore()
	mailer := &fakeMailer{}
	users := &fakeDirectory{users: []clients.User{
		{ID: "u1", Email: "ok@example.com", Name: "Ok"},
		{ID: "u2", Email: "not-an-email", Name: "Bad Address"},
		{ID: "u3", Email: "", Name: "No Address"},
		{ID: "u4", Email: "optout@example.com", Name: "Opt Out",
			Preferences: clients.UserPreferences{Promotions: boolPtr(false)}},
		{ID: "u5", Email: "optin@example.com", Name: "Opt In",
			Preferences: clients.UserPreferences{Promotions: boolPtr(true)}},
	}}
	deps, _ := testDeps(store, mailer, users)

	trigger := NewCampaignTrigger(users, NewPromotionProcessor(deps), 10, nil)
	trigger.Tick(context.Background())

	require.Len(t, store.created, 2)
	got := []string{store.created[0].UserID, store.created[1].UserID}
	assert.ElementsMatch(t, []string{"u1", "u5"}, got)
	for _, rec := range store.created {
		assert.Equal(t, notification.TypePromotion, rec.Type)
		batchID, _ := rec.Metadata["batchId"].(string)
		assert.True(t, strings.HasPrefix(batchID, "PROMO_"), "batch id %q", batchID)
	}
}

func TestCampaignSamplesWithoutReplacement(t *testing.T) {
	store := newFakeStore()
	var pool []clients.User
	for _, id := range []string{"u1", "u2", "u3", "u4", "u5"} {
		pool = append(pool, clients.User{ID: id, Email: id + "@example.com", Name: id})
	}
	users := &fakeDirectory{users: pool}
	deps, _ := testDeps(store, &fakeMailer{}, users)

	trigger := NewCampaignTrigger(users, NewPromotionProcessor(deps), 3, nil)
	trigger.Tick(context.Background())

	require.Len(t, store.created, 3)
	seen := map[string]bool{}
	for _, rec := range store.created {
		assert.False(t, seen[rec.UserID], "user %s selected twice", rec.UserID)
		seen[rec.UserID] = true
	}
}

func TestCampaignBatchSmallerThanPool(t *testing.T) {
	store := newFakeStore()
	users := &fakeDirectory{users: []clients.User{
		{ID: "u1", Email: "u1@example.com"},
		{ID: "u2", Email: "u2@example.com"},
	}}
	deps, _ := testDeps(store, &fakeMailer{}, users)

	trigger := NewCampaignTrigger(users, NewPromotionProcessor(deps), 10, nil)
	trigger.Tick(context.Background())

	// Fewer eligible users than the batch size is not an error.
	assert.Len(t, store.created, 2)
}

func TestCampaignAbortsTickWhenDirectoryFails(t *testing.T) {
	store := newFakeStore()
	users := &fakeDirectory{listErr: assert.AnError}
	deps, _ := testDeps(store, &fakeMailer{}, users)

	trigger := NewCampaignTrigger(users, NewPromotionProcessor(deps), 10, nil)
	trigger.Tick(context.Background())

	assert.Empty(t, store.created)
}

func TestCampaignEventsCarryEmbeddedEmail(t *testing.T) {
	store := newFakeStore()
	mailer := &fakeMailer{}
	users := &fakeDirectory{users: []clients.User{
		{ID: "u1", Email: "u1@example.com", Name: "One"},
	}}
	deps, _ := testDeps(store, mailer, users)

	trigger := NewCampaignTrigger(users, NewPromotionProcessor(deps), 1, nil)
	trigger.Tick(context.Background())

	// The synthetic event embeds the address, so the processor needs no
	// directory lookup and the inline email goes straight out.
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "u1@example.com", mailer.sent[0].To)
	require.Len(t, store.created, 1)
	assert.NotNil(t, store.created[0].Metadata)
}

func TestEmailPattern(t *testing.T) {
	valid := []string{"a@b.co", "user.name+tag@example.com", "x@y.z"}
	invalid := []string{"", "plain", "a@b", "a b@c.d", "@no-local.com", "a@.com "}

	for _, addr := range valid {
		assert.True(t, emailPattern.MatchString(addr), addr)
	}
	for _, addr := range invalid {
		assert.False(t, emailPattern.MatchString(addr), addr)
	}
}
