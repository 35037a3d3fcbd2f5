package closeout

import (
	"context"
	"fmt"

	"github.com/sedifex/sedifex-backend/internal/docstore"
)

const closeoutsCollection = "closeouts"

// ErrAlreadyClosed is returned when the store already closed that day.
var ErrAlreadyClosed = fmt.Errorf("day already closed")

type docstoreRepo struct{ store docstore.Store }

// NewDocstoreRepository stores closeouts in the closeouts collection.
func NewDocstoreRepository(store docstore.Store) Repository {
	return &docstoreRepo{store: store}
}

func (r *docstoreRepo) Create(ctx context.Context, rec Record) error {
	id := RecordID(rec.StoreID, rec.Day)
	_, exists, err := r.store.Get(ctx, closeoutsCollection, id)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyClosed
	}
	return r.store.Set(ctx, closeoutsCollection, id, rec.toDoc(), false)
}

func (r *docstoreRepo) Get(ctx context.Context, storeID, day string) (Record, bool, error) {
	doc, ok, err := r.store.Get(ctx, closeoutsCollection, RecordID(storeID, day))
	if err != nil || !ok {
		return Record{}, false, err
	}
	return NormalizeRecord(doc.ID, doc.Data), true, nil
}

func (r *docstoreRepo) ListByStore(ctx context.Context, storeID string, limit int) ([]Record, error) {
	docs, err := r.store.Run(ctx, closeoutsCollection, docstore.Query{
		OrderBy: "day",
		Desc:    true,
		Limit:   limit,
	}.Where("storeId", "==", storeID))
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(docs))
	for _, doc := range docs {
		records = append(records, NormalizeRecord(doc.ID, doc.Data))
	}
	return records, nil
}
