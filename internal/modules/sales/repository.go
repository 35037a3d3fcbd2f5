package sales

import "context"

// Repository defines sale storage. Sales are append-only.
type Repository interface {
	Create(ctx context.Context, s Sale) error
	// ListForDay returns the sales a store recorded on a calendar day
	// (DayKey format). Consumed by the closeout derivation.
	ListForDay(ctx context.Context, storeID, day string) ([]Sale, error)
	ListRecent(ctx context.Context, storeID string, limit int) ([]Sale, error)
}
