package pendingops

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDropsMalformedEntries(t *testing.T) {
	raw := []byte(`[
		{"kind":"create","clientId":"c-1","name":"Sugar","price":4.5},
		{"kind":"create","name":"missing client id"},
		{"kind":"update","name":"missing product id"},
		{"kind":"archive","productId":"p-9"},
		{"kind":"update","productId":"p-1","price":"not-a-number","previous":{"name":"Rice"}}
	]`)

	ops := decodeOperations(raw, "store-1")
	require.Len(t, ops, 2)

	assert.Equal(t, KindCreate, ops[0].Kind)
	assert.Equal(t, "c-1", ops[0].Create.ClientID)
	assert.Equal(t, 4.5, *ops[0].Create.Price)

	assert.Equal(t, KindUpdate, ops[1].Kind)
	assert.Equal(t, "p-1", ops[1].Update.ProductID)
	assert.Nil(t, ops[1].Update.Price)
	assert.Equal(t, "Rice", ops[1].Update.Previous.Name)
}

func TestDecodeCorruptPayloadReturnsNothing(t *testing.T) {
	assert.Nil(t, decodeOperations([]byte(`{"not":"an array"`), "store-1"))
	assert.Nil(t, decodeOperations([]byte(`"scalar"`), "store-1"))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	createdAt := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	in := []Operation{
		{
			Kind:      KindCreate,
			StoreID:   "store-1",
			CreatedAt: createdAt,
			Create:    &Create{ClientID: "c-1", Name: "Sugar", SKU: "SUG-1", Price: f(4.5), StockCount: f(12)},
		},
		{
			Kind:      KindUpdate,
			StoreID:   "store-1",
			CreatedAt: createdAt,
			Update: &Update{
				ProductID: "p-1",
				Name:      "Rice 5kg",
				Previous:  Snapshot{Name: "Rice", Price: f(30)},
			},
		},
	}

	raw, err := encodeOperations(in)
	require.NoError(t, err)

	out := decodeOperations(raw, "store-1")
	require.Len(t, out, 2)
	assert.Equal(t, in[0].Create, out[0].Create)
	assert.Equal(t, in[1].Update, out[1].Update)
	assert.True(t, out[0].CreatedAt.Equal(createdAt))
}
