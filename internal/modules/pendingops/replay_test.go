package pendingops

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sedifex/sedifex-backend/internal/kv"
)

type fakeWriter struct {
	createIDs map[string]string // clientID -> server id
	createErr error
	updateErr error

	creates []Create
	updates []Update
}

func (w *fakeWriter) CreateProduct(_ context.Context, _ string, create Create) (string, error) {
	if w.createErr != nil {
		return "", w.createErr
	}
	w.creates = append(w.creates, create)
	return w.createIDs[create.ClientID], nil
}

func (w *fakeWriter) UpdateProduct(_ context.Context, _ string, update Update) error {
	if w.updateErr != nil {
		return w.updateErr
	}
	w.updates = append(w.updates, update)
	return nil
}

func TestReplayCreatesThenRewritesUpdates(t *testing.T) {
	q := NewQueue(kv.NewMemoryStore())
	q.QueueCreate("store-1", Create{ClientID: "tmp-1", Name: "Sugar"})
	q.QueueUpdate("store-1", Update{ProductID: "tmp-1", Name: "Sugar 1kg"})

	w := &fakeWriter{createIDs: map[string]string{"tmp-1": "server-42"}}
	require.NoError(t, NewReplayer(q, w).Replay(context.Background(), "store-1"))

	require.Len(t, w.creates, 1)
	require.Len(t, w.updates, 1)
	// the update reached the backend under the confirmed id
	assert.Equal(t, "server-42", w.updates[0].ProductID)
	assert.Empty(t, q.List("store-1"))
}

func TestReplayStopsOnTransientFailure(t *testing.T) {
	q := NewQueue(kv.NewMemoryStore())
	q.QueueCreate("store-1", Create{ClientID: "c-1", Name: "Sugar"})

	w := &fakeWriter{createErr: status.Error(codes.Unavailable, "backend down")}
	err := NewReplayer(q, w).Replay(context.Background(), "store-1")

	require.Error(t, err)
	// operation stays queued for the next attempt
	require.Len(t, q.List("store-1"), 1)
}

func TestReplayDropsOnTerminalFailure(t *testing.T) {
	q := NewQueue(kv.NewMemoryStore())
	q.QueueCreate("store-1", Create{ClientID: "c-1", Name: "Sugar"})
	q.QueueUpdate("store-1", Update{ProductID: "p-1", Name: "Rice"})

	w := &fakeWriter{
		createErr: errors.New("duplicate sku"),
		updateErr: errors.New("document gone"),
	}
	require.NoError(t, NewReplayer(q, w).Replay(context.Background(), "store-1"))

	// poisoned entries do not wedge the queue
	assert.Empty(t, q.List("store-1"))
}
