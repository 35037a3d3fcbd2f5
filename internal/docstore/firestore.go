package docstore

import (
	"context"
	"log"
	"sync"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore adapts a Firestore client to the Store interface.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (Document, bool, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, err
	}
	return Document{ID: snap.Ref.ID, Data: snap.Data()}, true, nil
}

func (s *FirestoreStore) Set(ctx context.Context, collection, id string, data map[string]interface{}, merge bool) error {
	ref := s.client.Collection(collection).Doc(id)
	if merge {
		_, err := ref.Set(ctx, data, firestore.MergeAll)
		return err
	}
	_, err := ref.Set(ctx, data)
	return err
}

func (s *FirestoreStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.client.Collection(collection).Doc(id).Delete(ctx)
	return err
}

func (s *FirestoreStore) Run(ctx context.Context, collection string, q Query) ([]Document, error) {
	it := s.build(collection, q).Documents(ctx)
	defer it.Stop()
	var docs []Document
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			return docs, nil
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
}

func (s *FirestoreStore) Watch(ctx context.Context, collection string, q Query) (<-chan []Document, func(), error) {
	watchCtx, cancelCtx := context.WithCancel(ctx)
	snaps := s.build(collection, q).Snapshots(watchCtx)
	out := make(chan []Document, 4)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			cancelCtx()
			snaps.Stop()
		})
	}

	go func() {
		defer close(out)
		for {
			snap, err := snaps.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					log.Printf("docstore: firestore watch on %s ended: %v", collection, err)
				}
				return
			}
			snapshots, err := snap.Documents.GetAll()
			if err != nil {
				log.Printf("docstore: firestore watch read on %s: %v", collection, err)
				continue
			}
			var docs []Document
			for _, doc := range snapshots {
				docs = append(docs, Document{ID: doc.Ref.ID, Data: doc.Data()})
			}
			select {
			case out <- docs:
			case <-watchCtx.Done():
				return
			}
		}
	}()
	return out, cancel, nil
}

func (s *FirestoreStore) build(collection string, q Query) firestore.Query {
	query := s.client.Collection(collection).Query
	for _, f := range q.Filters {
		query = query.Where(f.Field, f.Op, f.Value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Desc {
			dir = firestore.Desc
		}
		query = query.OrderBy(q.OrderBy, dir)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	return query
}
