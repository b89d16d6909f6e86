package repository

import (
	"context"
	"errors"
	"fmt"

	"apexgarage/internal/docstore"
	"apexgarage/internal/model"
)

type tuneRepository struct {
	store docstore.Store
}

func NewTuneRepository(store docstore.Store) TuneRepository {
	return &tuneRepository{store: store}
}

func (r *tuneRepository) Create(ctx context.Context, tune *model.Tune) error {
	return r.write(ctx, tune, "create")
}

func (r *tuneRepository) Update(ctx context.Context, tune *model.Tune) error {
	return r.write(ctx, tune, "update")
}

func (r *tuneRepository) write(ctx context.Context, tune *model.Tune, op string) error {
	fields, err := docstore.Marshal(tune)
	if err != nil {
		return fmt.Errorf("failed to encode tune: %w", err)
	}
	if err := r.store.Set(ctx, TunesCollection, tune.ID, fields, false); err != nil {
		return fmt.Errorf("failed to %s tune: %w", op, err)
	}
	return nil
}

func (r *tuneRepository) GetByID(ctx context.Context, id string) (*model.Tune, error) {
	doc, err := r.store.Get(ctx, TunesCollection, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, model.ErrTuneNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tune: %w", err)
	}
	return decodeTune(doc)
}

func (r *tuneRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.store.Delete(ctx, TunesCollection, id); err != nil {
		return fmt.Errorf("failed to delete tune: %w", err)
	}
	return nil
}

func (r *tuneRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.Tune, error) {
	docs, err := r.store.QueryByField(ctx, TunesCollection, "userId", docstore.Range{Eq: userID}, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list tunes by user: %w", err)
	}
	return decodeTunes(docs)
}

func (r *tuneRepository) ListByUsers(ctx context.Context, userIDs []string, limit int) ([]model.Tune, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	in := make([]any, len(userIDs))
	for i, id := range userIDs {
		in[i] = id
	}

	docs, err := r.store.QueryByField(ctx, TunesCollection, "userId", docstore.Range{In: in}, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list tunes by users: %w", err)
	}
	return decodeTunes(docs)
}

func (r *tuneRepository) SearchByCarName(ctx context.Context, prefix string, limit int) ([]model.Tune, error) {
	rng := docstore.Range{GTE: prefix, LTE: prefix + prefixUpperBound}
	docs, err := r.store.QueryByField(ctx, TunesCollection, "carName", rng, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search tunes: %w", err)
	}
	return decodeTunes(docs)
}

// ListRecent returns the newest tunes first, for the feed's fallback when the
// viewer follows nobody. createdAt is stored RFC3339, so string order is
// chronological.
func (r *tuneRepository) ListRecent(ctx context.Context, limit int) ([]model.Tune, error) {
	docs, err := r.store.QueryByField(ctx, TunesCollection, "createdAt", docstore.Range{GTE: ""}, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent tunes: %w", err)
	}

	tunes, err := decodeTunes(docs)
	if err != nil {
		return nil, err
	}

	// Range queries come back ascending; reverse for newest-first.
	for i, j := 0, len(tunes)-1; i < j; i, j = i+1, j-1 {
		tunes[i], tunes[j] = tunes[j], tunes[i]
	}
	if limit > 0 && len(tunes) > limit {
		tunes = tunes[:limit]
	}
	return tunes, nil
}

func decodeTune(doc *docstore.Document) (*model.Tune, error) {
	var t model.Tune
	if err := docstore.Unmarshal(doc.Fields, &t); err != nil {
		return nil, fmt.Errorf("failed to decode tune %s: %w", doc.ID, err)
	}
	t.ID = doc.ID
	return &t, nil
}

func decodeTunes(docs []docstore.Document) ([]model.Tune, error) {
	tunes := make([]model.Tune, 0, len(docs))
	for i := range docs {
		t, err := decodeTune(&docs[i])
		if err != nil {
			return nil, err
		}
		tunes = append(tunes, *t)
	}
	return tunes, nil
}
