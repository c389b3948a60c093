package recommender

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/clients"
	"github.com/Rushhaabhhh/Microservices-Backend-System/internal/domain/recommendation"
)

type fakeOrders struct {
	orders []clients.Order
	err    error
}

func (o *fakeOrders) ListOrders(ctx context.Context) ([]clients.Order, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.orders, nil
}

func TestIngestWritesHistoryAndSnapshots(t *testing.T) {
	history := newFakeHistory()
	catalog := &fakeCatalog{byID: map[string]*clients.Product{
		"p1": {ID: "p1", Name: "Widget", Price: 9.99, Category: "Tools"},
	}}
	orders := &fakeOrders{orders: []clients.Order{
		{ID: "o1", UserID: "u1", Products: []clients.OrderItem{{ID: "p1", Quantity: 2}}},
		{ID: "o2", UserID: "u2", Products: []clients.OrderItem{
			{ID: "p2", Quantity: 1, Name: "Gadget", Category: "Electronics", Price: 20},
		}},
		{ID: "o3", UserID: "u1", Products: nil},
	}}

	ing := NewIngestor(orders, catalog, history, nil, nil)
	users, err := ing.Ingest(context.Background())
	require.NoError(t, err)

	// Distinct users, in first-seen order.
	assert.Equal(t, []string{"u1", "u2"}, users)
	assert.Len(t, history.snapshots, 3)

	// p1's category and name are backfilled from the catalog.
	require.Len(t, history.appended["u1"], 1)
	rec := history.appended["u1"][0]
	assert.Equal(t, "Tools", rec.Category)
	assert.Equal(t, "Widget", rec.Name)
	assert.Equal(t, 2, rec.Quantity)

	// p2 arrived fully described; no lookup needed.
	require.Len(t, history.appended["u2"], 1)
	assert.Equal(t, "Electronics", history.appended["u2"][0].Category)
}

func TestIngestRecordsUnknownWhenLookupFails(t *testing.T) {
	history := newFakeHistory()
	catalog := &fakeCatalog{idErr: assert.AnError}
	orders := &fakeOrders{orders: []clients.Order{
		{ID: "o1", UserID: "u1", Products: []clients.OrderItem{{ID: "p9", Quantity: 1}}},
	}}

	ing := NewIngestor(orders, catalog, history, nil, nil)
	users, err := ing.Ingest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, users)

	require.Len(t, history.appended["u1"], 1)
	rec := history.appended["u1"][0]
	assert.Equal(t, recommendation.CategoryUnknown, rec.Category)
	assert.Equal(t, "Product p9", rec.Name)
}

func TestIngestSkipsOrdersWithoutUser(t *testing.T) {
	history := newFakeHistory()
	orders := &fakeOrders{orders: []clients.Order{
		{ID: "o1", UserID: "", Products: []clients.OrderItem{{ID: "p1", Quantity: 1}}},
		{ID: "o2", UserID: "u1", Products: nil},
	}}

	ing := NewIngestor(orders, &fakeCatalog{}, history, nil, nil)
	users, err := ing.Ingest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, users)
	assert.Len(t, history.snapshots, 1)
}

func TestIngestFailsWhenOrderSourceUnavailable(t *testing.T) {
	ing := NewIngestor(&fakeOrders{err: assert.AnError}, &fakeCatalog{}, newFakeHistory(), nil, nil)
	_, err := ing.Ingest(context.Background())
	assert.Error(t, err)
}
