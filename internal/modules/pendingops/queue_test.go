package pendingops

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sedifex/sedifex-backend/internal/kv"
)

func f(v float64) *float64 { return &v }

func TestQueueCreateIsIdempotentPerClientID(t *testing.T) {
	q := NewQueue(kv.NewMemoryStore())

	q.QueueCreate("store-1", Create{ClientID: "c-1", Name: "Sugar", Price: f(4)})
	q.QueueCreate("store-1", Create{ClientID: "c-1", Name: "Sugar 1kg", Price: f(5)})

	ops := q.List("store-1")
	require.Len(t, ops, 1)
	assert.Equal(t, KindCreate, ops[0].Kind)
	assert.Equal(t, "Sugar 1kg", ops[0].Create.Name)
	assert.Equal(t, 5.0, *ops[0].Create.Price)
}

func TestQueueUpdateKeepsFirstPreviousSnapshot(t *testing.T) {
	q := NewQueue(kv.NewMemoryStore())

	q.QueueUpdate("store-1", Update{
		ProductID: "p-1",
		Name:      "Rice 5kg",
		Previous:  Snapshot{Name: "Rice", Price: f(30)},
	})
	q.QueueUpdate("store-1", Update{
		ProductID: "p-1",
		Name:      "Rice 10kg",
		Previous:  Snapshot{Name: "Rice 5kg", Price: f(55)},
	})

	ops := q.List("store-1")
	require.Len(t, ops, 1)
	assert.Equal(t, "Rice 10kg", ops[0].Update.Name)
	// the baseline from before the first queued edit survives
	assert.Equal(t, "Rice", ops[0].Update.Previous.Name)
	assert.Equal(t, 30.0, *ops[0].Update.Previous.Price)
}

func TestReplaceUpdateIDMigratesClientID(t *testing.T) {
	q := NewQueue(kv.NewMemoryStore())

	q.QueueUpdate("store-1", Update{ProductID: "tmp-1", Name: "Edited offline"})
	q.ReplaceUpdateID("store-1", "tmp-1", "server-42")

	ops := q.List("store-1")
	require.Len(t, ops, 1)
	assert.Equal(t, "server-42", ops[0].Update.ProductID)
	for _, op := range ops {
		assert.NotEqual(t, "tmp-1", op.Update.ProductID)
	}
}

func TestReplaceUpdateIDKeepsEarliestOnCollision(t *testing.T) {
	q := NewQueue(kv.NewMemoryStore())

	q.QueueUpdate("store-1", Update{ProductID: "server-42", Name: "first"})
	q.QueueUpdate("store-1", Update{ProductID: "tmp-1", Name: "second"})
	q.ReplaceUpdateID("store-1", "tmp-1", "server-42")

	ops := q.List("store-1")
	require.Len(t, ops, 1)
	assert.Equal(t, "first", ops[0].Update.Name)
}

func TestListAllStores(t *testing.T) {
	q := NewQueue(kv.NewMemoryStore())

	q.QueueCreate("store-a", Create{ClientID: "c-1", Name: "A"})
	q.QueueCreate("store-b", Create{ClientID: "c-2", Name: "B"})

	assert.Len(t, q.List(""), 2)
	assert.Len(t, q.List("store-a"), 1)
}

func TestRemoveCreateAndUpdate(t *testing.T) {
	q := NewQueue(kv.NewMemoryStore())

	q.QueueCreate("store-1", Create{ClientID: "c-1"})
	q.QueueUpdate("store-1", Update{ProductID: "p-1"})

	q.RemoveCreate("store-1", "c-1")
	ops := q.List("store-1")
	require.Len(t, ops, 1)
	assert.Equal(t, KindUpdate, ops[0].Kind)

	q.RemoveUpdate("store-1", "p-1")
	assert.Empty(t, q.List("store-1"))
}

func TestClearStore(t *testing.T) {
	q := NewQueue(kv.NewMemoryStore())

	q.QueueCreate("store-1", Create{ClientID: "c-1"})
	q.ClearStore("store-1")

	assert.Empty(t, q.List("store-1"))
}

// brokenStore fails every access, modelling a device whose local storage is
// unavailable.
type brokenStore struct{}

var errBroken = errors.New("storage unavailable")

func (brokenStore) Get(string) ([]byte, bool, error)  { return nil, false, errBroken }
func (brokenStore) Set(string, []byte) error          { return errBroken }
func (brokenStore) Delete(string) error               { return errBroken }
func (brokenStore) Keys(string) ([]string, error)     { return nil, errBroken }

func TestBrokenStorageDegradesToNoOp(t *testing.T) {
	q := NewQueue(brokenStore{})

	// none of these may panic or surface an error to the caller
	q.QueueCreate("store-1", Create{ClientID: "c-1", Name: "Sugar"})
	q.QueueUpdate("store-1", Update{ProductID: "p-1"})
	q.ReplaceUpdateID("store-1", "tmp-1", "server-1")
	q.RemoveCreate("store-1", "c-1")
	q.ClearStore("store-1")

	assert.Empty(t, q.List("store-1"))
	assert.Empty(t, q.List(""))
}
