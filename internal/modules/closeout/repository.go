package closeout

import "context"

// Repository defines closeout storage. Records are append-only: there is no
// update or delete.
type Repository interface {
	// Create persists the record. Fails when a closeout already exists for
	// the record's store and day.
	Create(ctx context.Context, r Record) error
	Get(ctx context.Context, storeID, day string) (Record, bool, error)
	ListByStore(ctx context.Context, storeID string, limit int) ([]Record, error)
}
