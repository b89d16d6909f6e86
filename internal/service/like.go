package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"apexgarage/internal/model"
	"apexgarage/internal/repository"
)

// LikeService toggles the like edge viewer->target and keeps the target's
// denormalized stats.likesReceived counter consistent with the edge set.
//
// The counter only ever moves through the store's atomic increment primitive;
// the edge write and the counter update are still two separate operations, so
// a failure between them is compensated by undoing the edge write. The
// decrement on unlike is guarded by whether the delete actually removed an
// edge, which both keeps an unlike-of-nothing from touching the store and
// closes the double-unlike under-count race.
type LikeService struct {
	likeRepo    repository.LikeRepository
	profileRepo repository.ProfileRepository
	now         func() time.Time
}

func NewLikeService(likeRepo repository.LikeRepository, profileRepo repository.ProfileRepository) *LikeService {
	return &LikeService{
		likeRepo:    likeRepo,
		profileRepo: profileRepo,
		now:         time.Now,
	}
}

// SetLiked establishes or removes the like edge viewer->target.
func (s *LikeService) SetLiked(ctx context.Context, viewerID, targetID string, liked bool) error {
	if viewerID == "" {
		return model.ErrAuthRequired
	}
	if viewerID == targetID {
		return model.ErrCannotLikeSelf
	}

	if liked {
		return s.like(ctx, viewerID, targetID)
	}
	return s.unlike(ctx, viewerID, targetID)
}

func (s *LikeService) like(ctx context.Context, viewerID, targetID string) error {
	rec := model.NewLikeRecord(s.now().UTC())

	// Edge first, counter second. The order is fixed.
	if err := s.likeRepo.Create(ctx, targetID, viewerID, rec); err != nil {
		return err
	}

	if err := s.profileRepo.IncrementLikesReceived(ctx, targetID, 1); err != nil {
		if _, undoErr := s.likeRepo.Delete(ctx, targetID, viewerID); undoErr != nil {
			log.Printf("[LikeService] partial consistency drift: like edge viewer=%s target=%s uncounted: %v",
				viewerID, targetID, undoErr)
		}
		return fmt.Errorf("counter increment failed: %w", err)
	}

	return nil
}

func (s *LikeService) unlike(ctx context.Context, viewerID, targetID string) error {
	// Snapshot for compensation before the delete.
	prior, _, err := s.likeRepo.Get(ctx, targetID, viewerID)
	if err != nil {
		return err
	}

	existed, err := s.likeRepo.Delete(ctx, targetID, viewerID)
	if err != nil {
		return err
	}
	if !existed {
		// Nothing was removed, so nothing to uncount.
		return nil
	}

	if err := s.profileRepo.IncrementLikesReceived(ctx, targetID, -1); err != nil {
		if prior == nil {
			prior = model.NewLikeRecord(s.now().UTC())
		}
		if undoErr := s.likeRepo.Create(ctx, targetID, viewerID, prior); undoErr != nil {
			log.Printf("[LikeService] partial consistency drift: like edge viewer=%s target=%s removed but still counted: %v",
				viewerID, targetID, undoErr)
		}
		return fmt.Errorf("counter decrement failed: %w", err)
	}

	return nil
}

// IsLiked reports whether viewer currently likes target.
func (s *LikeService) IsLiked(ctx context.Context, viewerID, targetID string) (bool, error) {
	return s.likeRepo.Exists(ctx, targetID, viewerID)
}
