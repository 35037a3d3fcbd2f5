package docstore

import "context"

// Filter is a single field predicate. Op is one of "==", ">=", "<=", ">", "<".
type Filter struct {
	Field string
	Op    string
	Value interface{}
}

// Query describes a collection read: equality/range predicates, optional
// ordering and an optional limit.
type Query struct {
	Filters []Filter
	OrderBy string
	Desc    bool
	Limit   int
}

// Where returns a copy of the query with an extra filter.
func (q Query) Where(field, op string, value interface{}) Query {
	filters := make([]Filter, 0, len(q.Filters)+1)
	filters = append(filters, q.Filters...)
	filters = append(filters, Filter{Field: field, Op: op, Value: value})
	q.Filters = filters
	return q
}

// Document is one remote record: its id plus an untyped payload. Every field
// read out of Data must go through the defensive accessors in fields.go —
// the payload is partially trusted.
type Document struct {
	ID   string
	Data map[string]interface{}
}

// Store is the document database boundary. Collections hold schemaless
// documents addressed by string ids.
type Store interface {
	Get(ctx context.Context, collection, id string) (Document, bool, error)
	// Set writes data under id. With merge true, existing fields not named in
	// data are preserved.
	Set(ctx context.Context, collection, id string, data map[string]interface{}, merge bool) error
	Delete(ctx context.Context, collection, id string) error
	Run(ctx context.Context, collection string, q Query) ([]Document, error)
	// Watch re-delivers the query result whenever the collection changes.
	// The returned cancel function stops delivery and releases the watcher;
	// the channel is closed after cancel or when ctx is done.
	Watch(ctx context.Context, collection string, q Query) (<-chan []Document, func(), error)
}
