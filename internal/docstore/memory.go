package docstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used by tests and by syncd when no remote
// backend is configured.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]interface{}
	watchers    map[int]*memoryWatcher
	nextWatcher int
}

type memoryWatcher struct {
	collection string
	query      Query
	ch         chan []Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]map[string]interface{}),
		watchers:    make(map[int]*memoryWatcher),
	}
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Document, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.collections[collection][id]
	if !ok {
		return Document{}, false, nil
	}
	return Document{ID: id, Data: cloneData(data)}, true, nil
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, data map[string]interface{}, merge bool) error {
	if id == "" {
		id = uuid.New().String()
	}
	s.mu.Lock()
	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string]map[string]interface{})
		s.collections[collection] = docs
	}
	existing, exists := docs[id]
	if merge && exists {
		for key, value := range cloneData(data) {
			existing[key] = value
		}
	} else {
		docs[id] = cloneData(data)
	}
	s.mu.Unlock()
	s.notify(collection)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	delete(s.collections[collection], id)
	s.mu.Unlock()
	s.notify(collection)
	return nil
}

func (s *MemoryStore) Run(ctx context.Context, collection string, q Query) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.run(collection, q), nil
}

func (s *MemoryStore) Watch(ctx context.Context, collection string, q Query) (<-chan []Document, func(), error) {
	s.mu.Lock()
	id := s.nextWatcher
	s.nextWatcher++
	watcher := &memoryWatcher{collection: collection, query: q, ch: make(chan []Document, 4)}
	s.watchers[id] = watcher
	// Initial snapshot so subscribers paint immediately.
	watcher.ch <- s.run(collection, q)
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.watchers, id)
			close(watcher.ch)
			s.mu.Unlock()
		})
	}
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return watcher.ch, cancel, nil
}

func (s *MemoryStore) notify(collection string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, watcher := range s.watchers {
		if watcher.collection != collection {
			continue
		}
		select {
		case watcher.ch <- s.run(collection, watcher.query):
		default:
		}
	}
}

// run assumes the caller holds at least a read lock.
func (s *MemoryStore) run(collection string, q Query) []Document {
	var results []Document
	for id, data := range s.collections[collection] {
		if matchesFilters(data, q.Filters) {
			results = append(results, Document{ID: id, Data: cloneData(data)})
		}
	}
	sort.Slice(results, func(i, j int) bool {
		if q.OrderBy != "" {
			less := compareValues(results[i].Data[q.OrderBy], results[j].Data[q.OrderBy]) < 0
			if q.Desc {
				return !less
			}
			return less
		}
		return results[i].ID < results[j].ID
	})
	if q.Limit > 0 && len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results
}

func matchesFilters(data map[string]interface{}, filters []Filter) bool {
	for _, f := range filters {
		cmp := compareValues(data[f.Field], f.Value)
		switch f.Op {
		case "==":
			if cmp != 0 {
				return false
			}
		case ">=":
			if cmp < 0 {
				return false
			}
		case "<=":
			if cmp > 0 {
				return false
			}
		case ">":
			if cmp <= 0 {
				return false
			}
		case "<":
			if cmp >= 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func compareValues(a, b interface{}) int {
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func cloneData(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for key, value := range data {
		if nested, ok := value.(map[string]interface{}); ok {
			out[key] = cloneData(nested)
			continue
		}
		out[key] = value
	}
	return out
}
