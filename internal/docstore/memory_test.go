package docstore

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestMemoryStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	fields := map[string]any{"val": true, "displayName": "alice"}
	if err := store.Set(ctx, "users/u2/followers", "u1", fields, false); err != nil {
		t.Fatalf("set: %v", err)
	}

	doc, err := store.Get(ctx, "users/u2/followers", "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc.Fields["val"] != true {
		t.Errorf("val = %v, want true", doc.Fields["val"])
	}
	if doc.Fields["displayName"] != "alice" {
		t.Errorf("displayName = %v, want alice", doc.Fields["displayName"])
	}

	existed, err := store.Delete(ctx, "users/u2/followers", "u1")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !existed {
		t.Error("expected delete to report the document existed")
	}

	if _, err := store.Get(ctx, "users/u2/followers", "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after delete = %v, want ErrNotFound", err)
	}

	existed, err = store.Delete(ctx, "users/u2/followers", "u1")
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if existed {
		t.Error("second delete should report the document was already gone")
	}
}

func TestMemoryStore_MergePreservesSiblings(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Set(ctx, "users", "u1", map[string]any{
		"displayName": "alice",
		"stats":       map[string]any{"likesReceived": float64(3)},
	}, false); err != nil {
		t.Fatalf("set: %v", err)
	}

	// Merge touching only displayName must leave the nested stats intact.
	if err := store.Set(ctx, "users", "u1", map[string]any{
		"displayName": "alice2",
	}, true); err != nil {
		t.Fatalf("merge: %v", err)
	}

	doc, err := store.Get(ctx, "users", "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc.Fields["displayName"] != "alice2" {
		t.Errorf("displayName = %v, want alice2", doc.Fields["displayName"])
	}
	stats, ok := doc.Fields["stats"].(map[string]any)
	if !ok || stats["likesReceived"] != float64(3) {
		t.Errorf("stats = %v, want likesReceived 3", doc.Fields["stats"])
	}
}

func TestMemoryStore_NonMergeReplacesDocument(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Set(ctx, "users", "u1", map[string]any{"a": "x", "b": "y"}, false); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "users", "u1", map[string]any{"a": "z"}, false); err != nil {
		t.Fatalf("replace: %v", err)
	}

	doc, err := store.Get(ctx, "users", "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, ok := doc.Fields["b"]; ok {
		t.Error("non-merge set should have dropped field b")
	}
}

func TestMemoryStore_IncrementField(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.IncrementField(ctx, "users", "missing", "stats.likesReceived", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("increment on missing doc = %v, want ErrNotFound", err)
	}

	if err := store.Set(ctx, "users", "u1", map[string]any{"displayName": "alice"}, false); err != nil {
		t.Fatalf("set: %v", err)
	}

	// Missing counter field starts from zero.
	if err := store.IncrementField(ctx, "users", "u1", "stats.likesReceived", 1); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := store.IncrementField(ctx, "users", "u1", "stats.likesReceived", -1); err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if err := store.IncrementField(ctx, "users", "u1", "stats.likesReceived", 5); err != nil {
		t.Fatalf("increment: %v", err)
	}

	doc, err := store.Get(ctx, "users", "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	stats := doc.Fields["stats"].(map[string]any)
	if got := stats["likesReceived"]; got != float64(5) {
		t.Errorf("likesReceived = %v, want 5", got)
	}
}

func TestMemoryStore_ConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Set(ctx, "users", "u1", map[string]any{}, false); err != nil {
		t.Fatalf("set: %v", err)
	}

	const workers = 20
	const perWorker = 50

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if err := store.IncrementField(ctx, "users", "u1", "stats.likesReceived", 1); err != nil {
					t.Errorf("increment: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	doc, err := store.Get(ctx, "users", "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	stats := doc.Fields["stats"].(map[string]any)
	if got := stats["likesReceived"]; got != float64(workers*perWorker) {
		t.Errorf("likesReceived = %v, want %d", got, workers*perWorker)
	}
}

func TestMemoryStore_QueryByField(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	seed := map[string]string{
		"t1": "Mazda RX-7",
		"t2": "Mazda MX-5",
		"t3": "Nissan GT-R",
	}
	for id, car := range seed {
		if err := store.Set(ctx, "tunes", id, map[string]any{"carName": car}, false); err != nil {
			t.Fatalf("set %s: %v", id, err)
		}
	}

	// Prefix range query.
	docs, err := store.QueryByField(ctx, "tunes", "carName", Range{GTE: "Mazda", LTE: "Mazda\uf8ff"}, 0)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d docs, want 2", len(docs))
	}

	// Equality query.
	docs, err = store.QueryByField(ctx, "tunes", "carName", Range{Eq: "Nissan GT-R"}, 0)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "t3" {
		t.Fatalf("eq query = %v, want [t3]", docs)
	}

	// In query with limit.
	docs, err = store.QueryByField(ctx, "tunes", "carName", Range{In: []any{"Mazda RX-7", "Nissan GT-R"}}, 1)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("got %d docs, want limit of 1", len(docs))
	}
}
