package payment

import (
	"context"
	"time"

	"github.com/sedifex/sedifex-backend/internal/docstore"
)

// Repository defines checkout transaction storage.
type Repository interface {
	Create(ctx context.Context, t Transaction) error
	UpdateStatus(ctx context.Context, reference, status, gatewayMessage string) error
	GetByReference(ctx context.Context, reference string) (Transaction, bool, error)
	ListByStore(ctx context.Context, storeID string) ([]Transaction, error)
}

const transactionsCollection = "billingTransactions"

type docstoreRepo struct {
	store docstore.Store
	now   func() time.Time
}

// NewDocstoreRepository stores checkout transactions keyed by their gateway
// reference.
func NewDocstoreRepository(store docstore.Store) Repository {
	return &docstoreRepo{store: store, now: time.Now}
}

func (r *docstoreRepo) Create(ctx context.Context, t Transaction) error {
	now := r.now().UTC()
	doc := t.toDoc(now)
	doc["createdAt"] = now
	return r.store.Set(ctx, transactionsCollection, t.Reference, doc, false)
}

func (r *docstoreRepo) UpdateStatus(ctx context.Context, reference, status, gatewayMessage string) error {
	doc := map[string]interface{}{
		"status":    normalizeStatus(status),
		"updatedAt": r.now().UTC(),
	}
	if gatewayMessage != "" {
		doc["gatewayMessage"] = gatewayMessage
	}
	return r.store.Set(ctx, transactionsCollection, reference, doc, true)
}

func (r *docstoreRepo) GetByReference(ctx context.Context, reference string) (Transaction, bool, error) {
	doc, ok, err := r.store.Get(ctx, transactionsCollection, reference)
	if err != nil || !ok {
		return Transaction{}, false, err
	}
	return NormalizeTransaction(doc.ID, doc.Data), true, nil
}

func (r *docstoreRepo) ListByStore(ctx context.Context, storeID string) ([]Transaction, error) {
	docs, err := r.store.Run(ctx, transactionsCollection, docstore.Query{
		OrderBy: "createdAt",
		Desc:    true,
	}.Where("storeId", "==", storeID))
	if err != nil {
		return nil, err
	}
	transactions := make([]Transaction, 0, len(docs))
	for _, doc := range docs {
		transactions = append(transactions, NormalizeTransaction(doc.ID, doc.Data))
	}
	return transactions, nil
}
