package pendingops

import (
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sedifex/sedifex-backend/internal/kv"
)

const queueKeyPrefix = "pendingProductOps/"

// Queue durably records product mutations awaiting remote confirmation.
// Entries are keyed per store; within a store a create is unique per client
// id and an update unique per product id — re-queuing replaces instead of
// appending, so a retried edit never becomes two operations.
//
// Storage failures degrade to a logged no-op: when the device's local store
// is unavailable the queue loses durability, never the UI.
type Queue struct {
	mu    sync.Mutex
	store kv.Store
	now   func() time.Time
}

func NewQueue(store kv.Store) *Queue {
	return &Queue{store: store, now: time.Now}
}

// QueueCreate inserts or replaces the queued create for the create's client
// id. A replace keeps the original insertion timestamp.
func (q *Queue) QueueCreate(storeID string, create Create) {
	if storeID == "" || create.ClientID == "" {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	ops := q.load(storeID)
	replaced := false
	for i := range ops {
		if ops[i].Kind == KindCreate && ops[i].Create.ClientID == create.ClientID {
			ops[i].Create = &create
			replaced = true
			break
		}
	}
	if !replaced {
		ops = append(ops, Operation{
			Kind:      KindCreate,
			StoreID:   storeID,
			CreatedAt: q.now().UTC(),
			Create:    &create,
		})
		queuedTotal.WithLabelValues(string(KindCreate)).Inc()
	}
	q.save(storeID, ops)
}

// QueueUpdate inserts or replaces the queued update for the update's product
// id. The pre-edit snapshot is captured once: a replace keeps the snapshot
// of the first queued update so the true baseline survives repeated edits.
func (q *Queue) QueueUpdate(storeID string, update Update) {
	if storeID == "" || update.ProductID == "" {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	ops := q.load(storeID)
	replaced := false
	for i := range ops {
		if ops[i].Kind == KindUpdate && ops[i].Update.ProductID == update.ProductID {
			update.Previous = ops[i].Update.Previous
			ops[i].Update = &update
			replaced = true
			break
		}
	}
	if !replaced {
		ops = append(ops, Operation{
			Kind:      KindUpdate,
			StoreID:   storeID,
			CreatedAt: q.now().UTC(),
			Update:    &update,
		})
		queuedTotal.WithLabelValues(string(KindUpdate)).Inc()
	}
	q.save(storeID, ops)
}

// List returns the queued operations for storeID, or for every store when
// storeID is empty. Returns an empty slice when storage is unavailable.
func (q *Queue) List(storeID string) []Operation {
	q.mu.Lock()
	defer q.mu.Unlock()
	if storeID != "" {
		return q.load(storeID)
	}
	keys, err := q.store.Keys(queueKeyPrefix)
	if err != nil {
		log.Printf("pendingops: list keys: %v", err)
		return nil
	}
	sort.Strings(keys)
	var ops []Operation
	for _, key := range keys {
		ops = append(ops, q.load(strings.TrimPrefix(key, queueKeyPrefix))...)
	}
	return ops
}

// RemoveCreate drops the queued create for clientID after the remote write
// confirms.
func (q *Queue) RemoveCreate(storeID, clientID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	ops := q.load(storeID)
	kept := ops[:0]
	for _, op := range ops {
		if op.Kind == KindCreate && op.Create.ClientID == clientID {
			continue
		}
		kept = append(kept, op)
	}
	q.save(storeID, kept)
}

// RemoveUpdate drops the queued update for productID.
func (q *Queue) RemoveUpdate(storeID, productID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	ops := q.load(storeID)
	kept := ops[:0]
	for _, op := range ops {
		if op.Kind == KindUpdate && op.Update.ProductID == productID {
			continue
		}
		kept = append(kept, op)
	}
	q.save(storeID, kept)
}

// ReplaceUpdateID rewrites queued updates that still target the provisional
// clientID to the server-confirmed productID. If an update already targets
// productID, the earliest queued entry wins and the rest are dropped so the
// same record is never updated twice.
func (q *Queue) ReplaceUpdateID(storeID, clientID, productID string) {
	if clientID == "" || productID == "" {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	ops := q.load(storeID)
	for i := range ops {
		if ops[i].Kind == KindUpdate && ops[i].Update.ProductID == clientID {
			ops[i].Update.ProductID = productID
		}
	}
	seen := false
	kept := ops[:0]
	for _, op := range ops {
		if op.Kind == KindUpdate && op.Update.ProductID == productID {
			if seen {
				continue
			}
			seen = true
		}
		kept = append(kept, op)
	}
	q.save(storeID, kept)
}

// ClearStore wipes every queued operation for storeID (sign-out, store
// switch).
func (q *Queue) ClearStore(storeID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.store.Delete(queueKeyPrefix + storeID); err != nil {
		log.Printf("pendingops: clear store %s: %v", storeID, err)
	}
}

func (q *Queue) load(storeID string) []Operation {
	raw, ok, err := q.store.Get(queueKeyPrefix + storeID)
	if err != nil {
		storageErrors.Inc()
		log.Printf("pendingops: read queue for %s: %v", storeID, err)
		return nil
	}
	if !ok {
		return nil
	}
	return decodeOperations(raw, storeID)
}

func (q *Queue) save(storeID string, ops []Operation) {
	if len(ops) == 0 {
		if err := q.store.Delete(queueKeyPrefix + storeID); err != nil {
			log.Printf("pendingops: clear queue for %s: %v", storeID, err)
		}
		return
	}
	raw, err := encodeOperations(ops)
	if err != nil {
		log.Printf("pendingops: encode queue for %s: %v", storeID, err)
		return
	}
	if err := q.store.Set(queueKeyPrefix+storeID, raw); err != nil {
		storageErrors.Inc()
		log.Printf("pendingops: write queue for %s: %v", storeID, err)
	}
}
