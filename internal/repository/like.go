package repository

import (
	"context"
	"errors"
	"fmt"

	"apexgarage/internal/docstore"
	"apexgarage/internal/model"
)

type likeRepository struct {
	store docstore.Store
}

func NewLikeRepository(store docstore.Store) LikeRepository {
	return &likeRepository{store: store}
}

func (r *likeRepository) Create(ctx context.Context, targetID, viewerID string, rec *model.LikeRecord) error {
	fields, err := docstore.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode like record: %w", err)
	}
	if err := r.store.Set(ctx, profileLikesCollection(targetID), viewerID, fields, false); err != nil {
		return fmt.Errorf("failed to write like record: %w", err)
	}
	return nil
}

func (r *likeRepository) Delete(ctx context.Context, targetID, viewerID string) (bool, error) {
	existed, err := r.store.Delete(ctx, profileLikesCollection(targetID), viewerID)
	if err != nil {
		return false, fmt.Errorf("failed to delete like record: %w", err)
	}
	return existed, nil
}

func (r *likeRepository) Get(ctx context.Context, targetID, viewerID string) (*model.LikeRecord, bool, error) {
	doc, err := r.store.Get(ctx, profileLikesCollection(targetID), viewerID)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get like record: %w", err)
	}

	var rec model.LikeRecord
	if err := docstore.Unmarshal(doc.Fields, &rec); err != nil {
		return nil, false, fmt.Errorf("failed to decode like record: %w", err)
	}
	return &rec, true, nil
}

func (r *likeRepository) Exists(ctx context.Context, targetID, viewerID string) (bool, error) {
	_, found, err := r.Get(ctx, targetID, viewerID)
	return found, err
}

func (r *likeRepository) CountForTarget(ctx context.Context, targetID string) (int64, error) {
	docs, err := r.store.QueryByField(ctx, profileLikesCollection(targetID), "val", docstore.Range{Eq: true}, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to count like records: %w", err)
	}
	return int64(len(docs)), nil
}
