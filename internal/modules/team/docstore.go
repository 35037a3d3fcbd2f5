package team

import (
	"context"
	"time"

	"github.com/sedifex/sedifex-backend/internal/docstore"
)

const membersCollection = "teamMembers"

type docstoreRepo struct {
	store docstore.Store
	now   func() time.Time
}

// NewDocstoreRepository stores memberships in the teamMembers collection.
func NewDocstoreRepository(store docstore.Store) Repository {
	return &docstoreRepo{store: store, now: time.Now}
}

func (r *docstoreRepo) Upsert(ctx context.Context, m Membership) error {
	now := r.now().UTC()
	doc := m.toDoc(now)

	existing, ok, err := r.store.Get(ctx, membersCollection, m.UID)
	if err != nil {
		return err
	}
	if !ok || docstore.Time(existing.Data, "createdAt").IsZero() {
		doc["createdAt"] = now
	}
	if err := r.store.Set(ctx, membersCollection, m.UID, doc, true); err != nil {
		return err
	}

	if m.Email == "" {
		return nil
	}
	mirror := m.toDoc(now)
	existingMirror, ok, err := r.store.Get(ctx, membersCollection, m.Email)
	if err != nil {
		return err
	}
	if !ok || docstore.Time(existingMirror.Data, "createdAt").IsZero() {
		mirror["createdAt"] = now
	}
	return r.store.Set(ctx, membersCollection, m.Email, mirror, true)
}

func (r *docstoreRepo) GetByUID(ctx context.Context, uid string) (Membership, bool, error) {
	doc, ok, err := r.store.Get(ctx, membersCollection, uid)
	if err != nil || !ok {
		return Membership{}, false, err
	}
	return NormalizeMembership(doc.ID, doc.Data), true, nil
}

func (r *docstoreRepo) ListByUser(ctx context.Context, uid string) ([]Membership, error) {
	docs, err := r.store.Run(ctx, membersCollection, docstore.Query{}.Where("uid", "==", uid))
	if err != nil {
		return nil, err
	}
	return dedupeByStore(docs), nil
}

func (r *docstoreRepo) ListByStore(ctx context.Context, storeID string) ([]Membership, error) {
	docs, err := r.store.Run(ctx, membersCollection, docstore.Query{}.Where("storeId", "==", storeID))
	if err != nil {
		return nil, err
	}
	var members []Membership
	for _, doc := range docs {
		m := NormalizeMembership(doc.ID, doc.Data)
		// Skip email-mirror documents: the uid-keyed doc is canonical.
		if doc.ID != m.UID {
			continue
		}
		members = append(members, m)
	}
	return members, nil
}

// dedupeByStore collapses the uid doc and its email mirror into one
// membership per store, preferring the uid-keyed document.
func dedupeByStore(docs []docstore.Document) []Membership {
	byStore := make(map[string]Membership)
	var order []string
	for _, doc := range docs {
		m := NormalizeMembership(doc.ID, doc.Data)
		if m.StoreID == "" {
			continue
		}
		existing, seen := byStore[m.StoreID]
		if !seen {
			byStore[m.StoreID] = m
			order = append(order, m.StoreID)
			continue
		}
		if existing.UID != doc.ID && m.UID == doc.ID {
			byStore[m.StoreID] = m
		}
	}
	members := make([]Membership, 0, len(order))
	for _, storeID := range order {
		members = append(members, byStore[storeID])
	}
	return members
}
