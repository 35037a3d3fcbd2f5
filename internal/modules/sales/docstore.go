package sales

import (
	"context"
	"time"

	"github.com/sedifex/sedifex-backend/internal/docstore"
)

const salesCollection = "sales"

type docstoreRepo struct {
	store docstore.Store
	now   func() time.Time
}

// NewDocstoreRepository stores sales in the sales collection.
func NewDocstoreRepository(store docstore.Store) Repository {
	return &docstoreRepo{store: store, now: time.Now}
}

func (r *docstoreRepo) Create(ctx context.Context, s Sale) error {
	return r.store.Set(ctx, salesCollection, s.ID, s.toDoc(r.now().UTC()), false)
}

func (r *docstoreRepo) ListForDay(ctx context.Context, storeID, day string) ([]Sale, error) {
	docs, err := r.store.Run(ctx, salesCollection, docstore.Query{}.
		Where("storeId", "==", storeID).
		Where("day", "==", day))
	if err != nil {
		return nil, err
	}
	return normalizeAll(docs), nil
}

func (r *docstoreRepo) ListRecent(ctx context.Context, storeID string, limit int) ([]Sale, error) {
	docs, err := r.store.Run(ctx, salesCollection, docstore.Query{
		OrderBy: "createdAt",
		Desc:    true,
		Limit:   limit,
	}.Where("storeId", "==", storeID))
	if err != nil {
		return nil, err
	}
	return normalizeAll(docs), nil
}

func normalizeAll(docs []docstore.Document) []Sale {
	list := make([]Sale, 0, len(docs))
	for _, doc := range docs {
		list = append(list, NormalizeSale(doc.ID, doc.Data))
	}
	return list
}
