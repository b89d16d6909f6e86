package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresStore implements Store on a single documents table with a jsonb
// body. IncrementField executes as one UPDATE statement, so it is atomic at
// the row level without any client-side read-modify-write.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore wraps an existing database handle.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// ConnectPostgres opens the database from its DSN pieces.
func ConnectPostgres(host, port, user, password, dbname string) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=require",
		host, user, password, dbname, port)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the documents table if it is missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id         TEXT NOT NULL,
			data       JSONB NOT NULL,
			PRIMARY KEY (collection, id)
		)
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	query := `SELECT data FROM documents WHERE collection = $1 AND id = $2`

	var raw []byte
	err := s.db.GetContext(ctx, &raw, query, collection, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s/%s: %w", collection, id, err)
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode document %s/%s: %w", collection, id, err)
	}
	return &Document{ID: id, Fields: fields}, nil
}

func (s *PostgresStore) Set(ctx context.Context, collection, id string, fields map[string]any, merge bool) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode document %s/%s: %w", collection, id, err)
	}

	// jsonb || merges top level; the domain only merge-writes top-level
	// fields, so that matches the store contract.
	query := `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data
	`
	if merge {
		query = `
			INSERT INTO documents (collection, id, data)
			VALUES ($1, $2, $3)
			ON CONFLICT (collection, id) DO UPDATE SET data = documents.data || EXCLUDED.data
		`
	}

	if _, err := s.db.ExecContext(ctx, query, collection, id, data); err != nil {
		return fmt.Errorf("failed to set document %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) (bool, error) {
	query := `DELETE FROM documents WHERE collection = $1 AND id = $2`

	result, err := s.db.ExecContext(ctx, query, collection, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete document %s/%s: %w", collection, id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (s *PostgresStore) IncrementField(ctx context.Context, collection, id, fieldPath string, delta int64) error {
	query := `
		UPDATE documents
		SET data = jsonb_set(
			data,
			$3::text[],
			to_jsonb(COALESCE((data #>> $3::text[])::bigint, 0) + $4),
			true
		)
		WHERE collection = $1 AND id = $2
	`

	path := pq.Array(strings.Split(fieldPath, "."))
	result, err := s.db.ExecContext(ctx, query, collection, id, path, delta)
	if err != nil {
		return fmt.Errorf("failed to increment %s on %s/%s: %w", fieldPath, collection, id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// QueryByField filters on a jsonb path as text. The domain only queries
// string fields (ids and name prefixes), so text comparison is correct here.
func (s *PostgresStore) QueryByField(ctx context.Context, collection, field string, rng Range, limit int) ([]Document, error) {
	path := pq.Array(strings.Split(field, "."))

	var query string
	var args []interface{}

	switch {
	case rng.Eq != nil:
		query = `
			SELECT id, data FROM documents
			WHERE collection = $1 AND data #>> $2::text[] = $3
			ORDER BY id
			LIMIT $4
		`
		args = []interface{}{collection, path, fmt.Sprint(rng.Eq), limitOrDefault(limit)}
	case len(rng.In) > 0:
		values := make([]string, len(rng.In))
		for i, v := range rng.In {
			values[i] = fmt.Sprint(v)
		}
		query = `
			SELECT id, data FROM documents
			WHERE collection = $1 AND data #>> $2::text[] = ANY($3)
			ORDER BY id
			LIMIT $4
		`
		args = []interface{}{collection, path, pq.Array(values), limitOrDefault(limit)}
	default:
		query = `
			SELECT id, data FROM documents
			WHERE collection = $1
			  AND ($3::text IS NULL OR data #>> $2::text[] >= $3)
			  AND ($4::text IS NULL OR data #>> $2::text[] <= $4)
			ORDER BY data #>> $2::text[]
			LIMIT $5
		`
		args = []interface{}{collection, path, textOrNil(rng.GTE), textOrNil(rng.LTE), limitOrDefault(limit)}
	}

	type row struct {
		ID   string `db:"id"`
		Data []byte `db:"data"`
	}

	var rows []row
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query %s by %s: %w", collection, field, err)
	}

	results := make([]Document, 0, len(rows))
	for _, r := range rows {
		var fields map[string]any
		if err := json.Unmarshal(r.Data, &fields); err != nil {
			return nil, fmt.Errorf("failed to decode document %s/%s: %w", collection, r.ID, err)
		}
		results = append(results, Document{ID: r.ID, Fields: fields})
	}
	return results, nil
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return 1000
	}
	return limit
}

func textOrNil(v any) interface{} {
	if v == nil {
		return nil
	}
	return fmt.Sprint(v)
}
