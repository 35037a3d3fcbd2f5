package pendingops

import (
	"context"
	"fmt"
	"log"

	"github.com/sedifex/sedifex-backend/internal/docstore"
)

// ProductWriter is the remote side of a replay. CreateProduct returns the
// server-assigned product id for the confirmed create.
type ProductWriter interface {
	CreateProduct(ctx context.Context, storeID string, create Create) (string, error)
	UpdateProduct(ctx context.Context, storeID string, update Update) error
}

// Replayer drains the queue against a ProductWriter once connectivity
// returns. Creates go first so that updates still keyed by a client id can
// be rewritten to the confirmed server id before they are sent.
type Replayer struct {
	queue  *Queue
	writer ProductWriter
}

func NewReplayer(queue *Queue, writer ProductWriter) *Replayer {
	return &Replayer{queue: queue, writer: writer}
}

// Replay sends every queued operation for storeID. A transient failure
// stops the pass and leaves the remaining operations queued for the next
// attempt; a terminal failure drops the operation so one poisoned entry
// cannot wedge the queue.
func (r *Replayer) Replay(ctx context.Context, storeID string) error {
	for _, op := range r.queue.List(storeID) {
		if op.Kind != KindCreate {
			continue
		}
		productID, err := r.writer.CreateProduct(ctx, op.StoreID, *op.Create)
		if err != nil {
			if docstore.IsTransient(err) {
				replayedTotal.WithLabelValues(string(KindCreate), "deferred").Inc()
				return fmt.Errorf("replay create %s: %w", op.Create.ClientID, err)
			}
			replayedTotal.WithLabelValues(string(KindCreate), "dropped").Inc()
			log.Printf("pendingops: dropping create %s for %s: %v", op.Create.ClientID, op.StoreID, err)
			r.queue.RemoveCreate(op.StoreID, op.Create.ClientID)
			continue
		}
		replayedTotal.WithLabelValues(string(KindCreate), "applied").Inc()
		r.queue.RemoveCreate(op.StoreID, op.Create.ClientID)
		r.queue.ReplaceUpdateID(op.StoreID, op.Create.ClientID, productID)
	}

	// Re-list: id rewrites above may have changed the update set.
	for _, op := range r.queue.List(storeID) {
		if op.Kind != KindUpdate {
			continue
		}
		if err := r.writer.UpdateProduct(ctx, op.StoreID, *op.Update); err != nil {
			if docstore.IsTransient(err) {
				replayedTotal.WithLabelValues(string(KindUpdate), "deferred").Inc()
				return fmt.Errorf("replay update %s: %w", op.Update.ProductID, err)
			}
			replayedTotal.WithLabelValues(string(KindUpdate), "dropped").Inc()
			log.Printf("pendingops: dropping update %s for %s: %v", op.Update.ProductID, op.StoreID, err)
		} else {
			replayedTotal.WithLabelValues(string(KindUpdate), "applied").Inc()
		}
		r.queue.RemoveUpdate(op.StoreID, op.Update.ProductID)
	}
	return nil
}
