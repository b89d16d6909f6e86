package docstore

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-process Store used by tests and local development.
// All operations hold a single mutex, so IncrementField is trivially atomic.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]map[string]map[string]any
}

// NewMemoryStore creates an empty in-memory document store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]map[string]any),
	}
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return &Document{ID: id, Fields: deepCopyMap(doc)}, nil
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, fields map[string]any, merge bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[collection]
	if !ok {
		col = make(map[string]map[string]any)
		s.collections[collection] = col
	}

	if merge {
		existing, ok := col[id]
		if !ok {
			existing = make(map[string]any)
			col[id] = existing
		}
		mergeMap(existing, deepCopyMap(fields))
		return nil
	}

	col[id] = deepCopyMap(fields)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[collection]
	if !ok {
		return false, nil
	}
	if _, ok := col[id]; !ok {
		return false, nil
	}
	delete(col, id)
	return true, nil
}

func (s *MemoryStore) IncrementField(ctx context.Context, collection, id, fieldPath string, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return ErrNotFound
	}

	parts := strings.Split(fieldPath, ".")
	node := doc
	for _, part := range parts[:len(parts)-1] {
		child, ok := node[part].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[part] = child
		}
		node = child
	}

	leaf := parts[len(parts)-1]
	current, _ := node[leaf].(float64) // missing or non-numeric starts from zero
	node[leaf] = current + float64(delta)
	return nil
}

func (s *MemoryStore) QueryByField(ctx context.Context, collection, field string, rng Range, limit int) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.collections[collection]))
	for id := range s.collections[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids) // deterministic iteration for tests

	var results []Document
	for _, id := range ids {
		doc := s.collections[collection][id]
		if matchRange(fieldValue(doc, field), rng) {
			results = append(results, Document{ID: id, Fields: deepCopyMap(doc)})
		}
	}

	if rng.GTE != nil || rng.LTE != nil {
		sort.SliceStable(results, func(i, j int) bool {
			return lessValue(fieldValue(results[i].Fields, field), fieldValue(results[j].Fields, field))
		})
	}

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// fieldValue resolves a dot path inside a document.
func fieldValue(doc map[string]any, fieldPath string) any {
	parts := strings.Split(fieldPath, ".")
	var node any = doc
	for _, part := range parts {
		m, ok := node.(map[string]any)
		if !ok {
			return nil
		}
		node = m[part]
	}
	return node
}

func matchRange(v any, rng Range) bool {
	if rng.Eq != nil {
		return v == rng.Eq
	}
	if len(rng.In) > 0 {
		for _, candidate := range rng.In {
			if v == candidate {
				return true
			}
		}
		return false
	}
	if v == nil {
		return false
	}
	if rng.GTE != nil && lessValue(v, rng.GTE) {
		return false
	}
	if rng.LTE != nil && lessValue(rng.LTE, v) {
		return false
	}
	return true
}

// lessValue compares two JSON-typed values of the same kind.
func lessValue(a, b any) bool {
	switch av := a.(type) {
	case string:
		bv, _ := b.(string)
		return av < bv
	case float64:
		bv, _ := b.(float64)
		return av < bv
	default:
		return false
	}
}

func deepCopyMap(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = deepCopyValue(v)
	}
	return dst
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case []any:
		cp := make([]any, len(t))
		for i, item := range t {
			cp[i] = deepCopyValue(item)
		}
		return cp
	default:
		return v
	}
}

// mergeMap merges src into dst, descending into nested maps the way a
// merge-write preserves untouched sibling fields.
func mergeMap(dst, src map[string]any) {
	for k, v := range src {
		if srcChild, ok := v.(map[string]any); ok {
			if dstChild, ok := dst[k].(map[string]any); ok {
				mergeMap(dstChild, srcChild)
				continue
			}
		}
		dst[k] = v
	}
}
