package repository

import (
	"context"
	"errors"
	"fmt"

	"apexgarage/internal/docstore"
	"apexgarage/internal/model"
)

type followRepository struct {
	store docstore.Store
}

func NewFollowRepository(store docstore.Store) FollowRepository {
	return &followRepository{store: store}
}

func (r *followRepository) SetFollower(ctx context.Context, targetID, viewerID string, rec *model.FollowRecord) error {
	return r.setRecord(ctx, followersCollection(targetID), viewerID, rec)
}

func (r *followRepository) SetFollowing(ctx context.Context, viewerID, targetID string, rec *model.FollowRecord) error {
	return r.setRecord(ctx, followingCollection(viewerID), targetID, rec)
}

func (r *followRepository) setRecord(ctx context.Context, collection, id string, rec *model.FollowRecord) error {
	fields, err := docstore.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode follow record: %w", err)
	}
	// Overwrite, not merge: re-follow recreates the record.
	if err := r.store.Set(ctx, collection, id, fields, false); err != nil {
		return fmt.Errorf("failed to write follow record: %w", err)
	}
	return nil
}

func (r *followRepository) DeleteFollower(ctx context.Context, targetID, viewerID string) (bool, error) {
	existed, err := r.store.Delete(ctx, followersCollection(targetID), viewerID)
	if err != nil {
		return false, fmt.Errorf("failed to delete follower record: %w", err)
	}
	return existed, nil
}

func (r *followRepository) DeleteFollowing(ctx context.Context, viewerID, targetID string) (bool, error) {
	existed, err := r.store.Delete(ctx, followingCollection(viewerID), targetID)
	if err != nil {
		return false, fmt.Errorf("failed to delete following record: %w", err)
	}
	return existed, nil
}

func (r *followRepository) GetFollower(ctx context.Context, targetID, viewerID string) (*model.FollowRecord, bool, error) {
	doc, err := r.store.Get(ctx, followersCollection(targetID), viewerID)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get follower record: %w", err)
	}

	var rec model.FollowRecord
	if err := docstore.Unmarshal(doc.Fields, &rec); err != nil {
		return nil, false, fmt.Errorf("failed to decode follower record: %w", err)
	}
	return &rec, true, nil
}

func (r *followRepository) Exists(ctx context.Context, viewerID, targetID string) (bool, error) {
	_, found, err := r.GetFollower(ctx, targetID, viewerID)
	return found, err
}

func (r *followRepository) ListFollowers(ctx context.Context, userID string) ([]model.UserSummary, error) {
	return r.listRecords(ctx, followersCollection(userID))
}

func (r *followRepository) ListFollowing(ctx context.Context, userID string) ([]model.UserSummary, error) {
	return r.listRecords(ctx, followingCollection(userID))
}

// listRecords returns one summary per mirror record; the record id is the
// counterpart's user id and the denormalized identity renders the list
// without profile lookups.
func (r *followRepository) listRecords(ctx context.Context, collection string) ([]model.UserSummary, error) {
	docs, err := r.store.QueryByField(ctx, collection, "val", docstore.Range{Eq: true}, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list follow records: %w", err)
	}

	users := make([]model.UserSummary, 0, len(docs))
	for i := range docs {
		var rec model.FollowRecord
		if err := docstore.Unmarshal(docs[i].Fields, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode follow record %s: %w", docs[i].ID, err)
		}
		users = append(users, model.UserSummary{
			ID:          docs[i].ID,
			DisplayName: rec.DisplayName,
			PhotoURL:    rec.PhotoURL,
		})
	}
	return users, nil
}

func (r *followRepository) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	docs, err := r.store.QueryByField(ctx, followingCollection(userID), "val", docstore.Range{Eq: true}, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list following ids: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for i := range docs {
		ids = append(ids, docs[i].ID)
	}
	return ids, nil
}
