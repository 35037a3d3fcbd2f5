package customer

import (
	"context"
	"time"

	"github.com/sedifex/sedifex-backend/internal/docstore"
)

const customersCollection = "customers"

type docstoreRepo struct {
	store docstore.Store
	now   func() time.Time
}

// NewDocstoreRepository stores customers in the customers collection.
func NewDocstoreRepository(store docstore.Store) Repository {
	return &docstoreRepo{store: store, now: time.Now}
}

func (r *docstoreRepo) Create(ctx context.Context, c Customer) error {
	now := r.now().UTC()
	doc := c.toDoc(now)
	doc["createdAt"] = now
	return r.store.Set(ctx, customersCollection, c.ID, doc, false)
}

func (r *docstoreRepo) Update(ctx context.Context, c Customer) error {
	return r.store.Set(ctx, customersCollection, c.ID, c.toDoc(r.now().UTC()), true)
}

func (r *docstoreRepo) Get(ctx context.Context, id string) (Customer, bool, error) {
	doc, ok, err := r.store.Get(ctx, customersCollection, id)
	if err != nil || !ok {
		return Customer{}, false, err
	}
	return NormalizeCustomer(doc.ID, doc.Data), true, nil
}

func (r *docstoreRepo) ListByStore(ctx context.Context, storeID string, limit int) ([]Customer, error) {
	docs, err := r.store.Run(ctx, customersCollection, docstore.Query{
		OrderBy: "updatedAt",
		Desc:    true,
		Limit:   limit,
	}.Where("storeId", "==", storeID))
	if err != nil {
		return nil, err
	}
	customers := make([]Customer, 0, len(docs))
	for _, doc := range docs {
		customers = append(customers, NormalizeCustomer(doc.ID, doc.Data))
	}
	return customers, nil
}
