package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

const (
	docKeyPrefix = "doc:"
	colKeyPrefix = "col:"
)

// RedisStore implements Store on Redis. Each document is a hash whose fields
// are dot-flattened paths with JSON-encoded values; a per-collection set
// indexes document ids for queries. IncrementField maps to HINCRBY, Redis's
// server-side atomic increment, so concurrent counters never lose updates.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Store backed by the given Redis URL.
// URL format: redis://[:password@]host:port[/db]
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &RedisStore{client: redis.NewClient(opts)}, nil
}

// NewRedisStoreFromClient wraps an existing client, reusing its pooling.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Ping verifies the connection. Call on startup to fail fast.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func docKey(collection, id string) string {
	return docKeyPrefix + collection + ":" + id
}

func colKey(collection string) string {
	return colKeyPrefix + collection
}

func (s *RedisStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	raw, err := s.client.HGetAll(ctx, docKey(collection, id)).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s/%s: %w", collection, id, err)
	}
	if len(raw) == 0 {
		return nil, ErrNotFound
	}

	fields, err := unflattenFields(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return &Document{ID: id, Fields: fields}, nil
}

func (s *RedisStore) Set(ctx context.Context, collection, id string, fields map[string]any, merge bool) error {
	flat, err := flattenFields(fields)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}

	pipe := s.client.TxPipeline()
	if !merge {
		pipe.Del(ctx, docKey(collection, id))
	}
	if len(flat) > 0 {
		pipe.HSet(ctx, docKey(collection, id), flat)
	}
	pipe.SAdd(ctx, colKey(collection), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, collection, id string) (bool, error) {
	pipe := s.client.TxPipeline()
	delCmd := pipe.Del(ctx, docKey(collection, id))
	pipe.SRem(ctx, colKey(collection), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return delCmd.Val() > 0, nil
}

func (s *RedisStore) IncrementField(ctx context.Context, collection, id, fieldPath string, delta int64) error {
	// HINCRBY would silently create the document; match the other backends
	// by requiring it to exist. The existence probe is not atomic with the
	// increment, but the increment itself is, which is what the counter
	// invariant depends on.
	exists, err := s.client.Exists(ctx, docKey(collection, id)).Result()
	if err != nil {
		return fmt.Errorf("exists %s/%s: %w", collection, id, err)
	}
	if exists == 0 {
		return ErrNotFound
	}

	if err := s.client.HIncrBy(ctx, docKey(collection, id), fieldPath, delta).Err(); err != nil {
		return fmt.Errorf("hincrby %s/%s %s: %w", collection, id, fieldPath, err)
	}
	return nil
}

// QueryByField walks the collection index and filters client-side. Fine for
// the collection sizes this app sees; a real deployment would maintain
// secondary indexes instead.
func (s *RedisStore) QueryByField(ctx context.Context, collection, field string, rng Range, limit int) ([]Document, error) {
	ids, err := s.client.SMembers(ctx, colKey(collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("smembers %s: %w", collection, err)
	}

	var results []Document
	for _, id := range ids {
		doc, err := s.Get(ctx, collection, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		if matchRange(fieldValue(doc.Fields, field), rng) {
			results = append(results, *doc)
		}
	}

	if rng.GTE != nil || rng.LTE != nil {
		sortByField(results, field)
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// flattenFields converts nested maps to dot-path hash fields. Leaf values are
// JSON-encoded; bare numbers stay HINCRBY-compatible.
func flattenFields(fields map[string]any) (map[string]string, error) {
	flat := make(map[string]string)
	if err := flattenInto(flat, "", fields); err != nil {
		return nil, err
	}
	return flat, nil
}

func flattenInto(flat map[string]string, prefix string, fields map[string]any) error {
	for k, v := range fields {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if child, ok := v.(map[string]any); ok {
			if err := flattenInto(flat, key, child); err != nil {
				return err
			}
			continue
		}
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode field %s: %w", key, err)
		}
		flat[key] = string(data)
	}
	return nil
}

func unflattenFields(flat map[string]string) (map[string]any, error) {
	fields := make(map[string]any)
	for key, raw := range flat {
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("decode field %s: %w", key, err)
		}

		parts := strings.Split(key, ".")
		node := fields
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = v
	}
	return fields, nil
}

func sortByField(docs []Document, field string) {
	sort.SliceStable(docs, func(i, j int) bool {
		return lessValue(fieldValue(docs[i].Fields, field), fieldValue(docs[j].Fields, field))
	})
}
