package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistoryKeys(t *testing.T) {
	assert.Equal(t, "user:u1:purchaseHistory", historyKey("u1"))
	assert.Equal(t, "order:o-42", orderKey("o-42"))
}
