package customer

import "context"

// Repository defines customer storage.
type Repository interface {
	Create(ctx context.Context, c Customer) error
	Update(ctx context.Context, c Customer) error
	Get(ctx context.Context, id string) (Customer, bool, error)
	ListByStore(ctx context.Context, storeID string, limit int) ([]Customer, error)
}
