package product

import "context"

// Repository defines product storage.
type Repository interface {
	Create(ctx context.Context, p Product) error
	Update(ctx context.Context, p Product) error
	Get(ctx context.Context, id string) (Product, bool, error)
	// FindByClientID looks a product up by its client-generated idempotency
	// key, used to make replayed creates effectively-once.
	FindByClientID(ctx context.Context, storeID, clientID string) (Product, bool, error)
	ListByStore(ctx context.Context, storeID string, limit int) ([]Product, error)
}
