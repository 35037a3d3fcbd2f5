package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

// PostgresStore keeps documents as JSONB rows for self-hosted deployments
// that run without Firestore. Range and equality predicates are evaluated
// against extracted JSON fields; Watch falls back to polling.
type PostgresStore struct {
	db           *sql.DB
	pollInterval time.Duration
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, pollInterval: 2 * time.Second}
}

// Migrate creates the documents table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id         TEXT NOT NULL,
			data       JSONB NOT NULL,
			PRIMARY KEY (collection, id)
		)`)
	return err
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (Document, bool, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection=$1 AND id=$2`, collection, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, err
	}
	data, err := decodeJSON(raw)
	if err != nil {
		return Document{}, false, err
	}
	return Document{ID: id, Data: data}, true, nil
}

func (s *PostgresStore) Set(ctx context.Context, collection, id string, data map[string]interface{}, merge bool) error {
	raw, err := json.Marshal(encodeTimes(data))
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if merge {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO documents (collection, id, data) VALUES ($1,$2,$3)
			ON CONFLICT (collection, id) DO UPDATE SET data = documents.data || excluded.data`,
			collection, id, raw)
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data) VALUES ($1,$2,$3)
		ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data`,
		collection, id, raw)
	return err
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection=$1 AND id=$2`, collection, id)
	return err
}

func (s *PostgresStore) Run(ctx context.Context, collection string, q Query) ([]Document, error) {
	query, args, err := buildSelect(collection, q)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var docs []Document
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		data, err := decodeJSON(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: id, Data: data})
	}
	return docs, rows.Err()
}

func (s *PostgresStore) Watch(ctx context.Context, collection string, q Query) (<-chan []Document, func(), error) {
	watchCtx, cancelCtx := context.WithCancel(ctx)
	out := make(chan []Document, 4)
	var once sync.Once
	cancel := func() { once.Do(cancelCtx) }

	go func() {
		defer close(out)
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()
		for {
			docs, err := s.Run(watchCtx, collection, q)
			if err == nil {
				select {
				case out <- docs:
				default:
				}
			}
			select {
			case <-ticker.C:
			case <-watchCtx.Done():
				return
			}
		}
	}()
	return out, cancel, nil
}

func buildSelect(collection string, q Query) (string, []interface{}, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, data FROM documents WHERE collection=$1`)
	args := []interface{}{collection}
	for _, f := range q.Filters {
		op := f.Op
		switch op {
		case "==":
			op = "="
		case ">=", "<=", ">", "<":
		default:
			return "", nil, fmt.Errorf("unsupported filter op %q", f.Op)
		}
		args = append(args, fmt.Sprint(filterValue(f.Value)))
		fmt.Fprintf(&sb, ` AND data->>%s %s $%d`, quoteLiteral(f.Field), op, len(args))
	}
	if q.OrderBy != "" {
		fmt.Fprintf(&sb, ` ORDER BY data->>%s`, quoteLiteral(q.OrderBy))
		if q.Desc {
			sb.WriteString(" DESC")
		}
	} else {
		sb.WriteString(` ORDER BY id`)
	}
	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&sb, ` LIMIT $%d`, len(args))
	}
	return sb.String(), args, nil
}

func filterValue(value interface{}) interface{} {
	if t, ok := value.(time.Time); ok {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return value
}

// quoteLiteral protects JSON field names interpolated into the query text.
// Field names come from our own repositories, never from request input.
func quoteLiteral(field string) string {
	return "'" + strings.ReplaceAll(field, "'", "''") + "'"
}

func decodeJSON(raw []byte) (map[string]interface{}, error) {
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return data, nil
}

// encodeTimes rewrites time.Time values to RFC 3339 strings so the JSON
// round-trip through Postgres stays lexicographically orderable.
func encodeTimes(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for key, value := range data {
		switch v := value.(type) {
		case time.Time:
			out[key] = v.UTC().Format(time.RFC3339Nano)
		case map[string]interface{}:
			out[key] = encodeTimes(v)
		default:
			out[key] = value
		}
	}
	return out
}
