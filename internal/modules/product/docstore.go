package product

import (
	"context"
	"time"

	"github.com/sedifex/sedifex-backend/internal/docstore"
)

const productsCollection = "products"

type docstoreRepo struct {
	store docstore.Store
	now   func() time.Time
}

// NewDocstoreRepository stores products in the products collection.
func NewDocstoreRepository(store docstore.Store) Repository {
	return &docstoreRepo{store: store, now: time.Now}
}

func (r *docstoreRepo) Create(ctx context.Context, p Product) error {
	now := r.now().UTC()
	doc := p.toDoc(now)
	doc["createdAt"] = now
	return r.store.Set(ctx, productsCollection, p.ID, doc, false)
}

func (r *docstoreRepo) Update(ctx context.Context, p Product) error {
	return r.store.Set(ctx, productsCollection, p.ID, p.toDoc(r.now().UTC()), true)
}

func (r *docstoreRepo) Get(ctx context.Context, id string) (Product, bool, error) {
	doc, ok, err := r.store.Get(ctx, productsCollection, id)
	if err != nil || !ok {
		return Product{}, false, err
	}
	return NormalizeProduct(doc.ID, doc.Data), true, nil
}

func (r *docstoreRepo) FindByClientID(ctx context.Context, storeID, clientID string) (Product, bool, error) {
	docs, err := r.store.Run(ctx, productsCollection, docstore.Query{Limit: 1}.
		Where("storeId", "==", storeID).
		Where("clientId", "==", clientID))
	if err != nil || len(docs) == 0 {
		return Product{}, false, err
	}
	return NormalizeProduct(docs[0].ID, docs[0].Data), true, nil
}

func (r *docstoreRepo) ListByStore(ctx context.Context, storeID string, limit int) ([]Product, error) {
	docs, err := r.store.Run(ctx, productsCollection, docstore.Query{
		OrderBy: "updatedAt",
		Desc:    true,
		Limit:   limit,
	}.Where("storeId", "==", storeID))
	if err != nil {
		return nil, err
	}
	products := make([]Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, NormalizeProduct(doc.ID, doc.Data))
	}
	return products, nil
}
