// Package docstore abstracts the hosted document database the app persists
// to. Documents are schemaless field maps addressed by collection path and id;
// subcollections are plain path segments ("users/u1/followers"). The store
// exposes exactly the operations the domain needs: point reads, set with
// optional merge, delete, a server-side atomic field increment, and single
// field queries.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get and IncrementField when the document does
// not exist.
var ErrNotFound = errors.New("document not found")

// Document is a schemaless record. Fields use JSON types only (string,
// float64, bool, map[string]any, []any); Marshal/Unmarshal normalize domain
// structs in and out of that shape.
type Document struct {
	ID     string
	Fields map[string]any
}

// Range is a single-field query constraint. Exactly one of Eq, In, or a
// GTE/LTE pair should be set. Range queries order results by the queried
// field ascending.
type Range struct {
	Eq  any
	In  []any
	GTE any
	LTE any
}

// Store is the document database interface. Implementations must make
// IncrementField a server-side atomic primitive: concurrent increments on the
// same field must never lose updates. Set with identical data and Delete of a
// missing document are not errors.
type Store interface {
	// Get returns the document or ErrNotFound.
	Get(ctx context.Context, collection, id string) (*Document, error)

	// Set writes the fields. With merge, existing fields not present in the
	// write are preserved; without, the document is replaced.
	Set(ctx context.Context, collection, id string, fields map[string]any, merge bool) error

	// Delete removes the document, reporting whether it existed. Deleting a
	// missing document is a no-op, not an error.
	Delete(ctx context.Context, collection, id string) (existed bool, err error)

	// IncrementField atomically adds delta to a numeric field addressed by a
	// dot path ("stats.likesReceived"). A missing field starts from zero; a
	// missing document is ErrNotFound.
	IncrementField(ctx context.Context, collection, id, fieldPath string, delta int64) error

	// QueryByField returns up to limit documents whose field matches rng.
	QueryByField(ctx context.Context, collection, field string, rng Range, limit int) ([]Document, error)
}

// Marshal converts a domain struct into a document field map via its JSON
// representation, so every backend sees the same normalized value types.
func Marshal(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode document fields: %w", err)
	}
	return fields, nil
}

// Unmarshal decodes a document field map into a domain struct. Unknown fields
// are ignored; this is the validation boundary for schemaless data.
func Unmarshal(fields map[string]any, v any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode document fields: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal document: %w", err)
	}
	return nil
}
