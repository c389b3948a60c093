package event

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeUserUpdateKeepsUnknownFields(t *testing.T) {
	raw := []byte(`{"userId":"u1","updateType":"profile","details":{"field":"name"},"traceId":"abc","source":"mobile"}`)

	ev, err := DecodeUserUpdate(raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", ev.UserID)
	assert.Equal(t, "profile", ev.UpdateType)

	require.Len(t, ev.Extra, 2)
	assert.JSONEq(t, `"abc"`, string(ev.Extra["traceId"]))
	assert.JSONEq(t, `"mobile"`, string(ev.Extra["source"]))
}

func TestDecodeWithoutUnknownFieldsLeavesExtraNil(t *testing.T) {
	ev, err := DecodeUserUpdate([]byte(`{"userId":"u1","updateType":"profile"}`))
	require.NoError(t, err)
	assert.Nil(t, ev.Extra)
}

func TestOrderUpdateAsMapMergesExtra(t *testing.T) {
	raw := []byte(`{"userId":"u1","orderId":"o1","status":"shipped","carrier":"DHL"}`)
	ev, err := DecodeOrderUpdate(raw)
	require.NoError(t, err)

	m := ev.AsMap()
	assert.Equal(t, "u1", m["userId"])
	assert.Equal(t, "o1", m["orderId"])
	assert.Equal(t, "shipped", m["status"])
	assert.Equal(t, json.RawMessage(`"DHL"`), m["carrier"])
}

func TestDecodeRejectsNonObjectPayload(t *testing.T) {
	_, err := DecodeUserUpdate([]byte(`[1,2,3]`))
	assert.Error(t, err)
}

func TestRecommendationValidate(t *testing.T) {
	ok := RecommendedProduct{ProductID: "p1", Name: "Widget", Price: 1, Category: "Tools"}

	tests := []struct {
		name    string
		ev      RecommendationEvent
		wantErr error
	}{
		{"valid", RecommendationEvent{UserID: "u1", Recommendations: []RecommendedProduct{ok}}, nil},
		{"missing user", RecommendationEvent{Recommendations: []RecommendedProduct{ok}}, ErrMissingUserID},
		{"no recommendations", RecommendationEvent{UserID: "u1"}, ErrEmptyRecommendations},
		{"entry without category", RecommendationEvent{UserID: "u1",
			Recommendations: []RecommendedProduct{{ProductID: "p1", Name: "Widget"}}}, ErrMalformedRecommendation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ev.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestPromotionValidateRequiresUser(t *testing.T) {
	ev := PromotionEvent{EventType: "SALE"}
	assert.ErrorIs(t, ev.Validate(), ErrMissingUserID)

	ev.UserID = "u1"
	assert.NoError(t, ev.Validate())
}
