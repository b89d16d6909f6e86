package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"apexgarage/internal/model"
	"apexgarage/internal/repository"
)

// FollowService toggles the directed follow relationship between two racers
// and keeps its two mirror records synchronized.
//
// The backing store has no multi-document transactions, so the two writes run
// sequentially in a fixed order: follower record under the target first, then
// the following record under the viewer. If the second write fails the first
// is compensated (deleted on follow, restored on unfollow). Compensation can
// itself fail, leaving the mirrors diverged until the next re-toggle; that
// residual window is inherent to the per-document write model and is only
// logged, never auto-repaired.
type FollowService struct {
	followRepo  repository.FollowRepository
	profileRepo repository.ProfileRepository
	now         func() time.Time
}

func NewFollowService(followRepo repository.FollowRepository, profileRepo repository.ProfileRepository) *FollowService {
	return &FollowService{
		followRepo:  followRepo,
		profileRepo: profileRepo,
		now:         time.Now,
	}
}

// SetFollowing establishes or removes the follow edge viewer->target.
// Self-follows and anonymous viewers are rejected before any write. Setting a
// state that already holds is harmless: record writes overwrite and record
// deletes tolerate absence.
func (s *FollowService) SetFollowing(ctx context.Context, viewerID, targetID string, following bool) error {
	if viewerID == "" {
		return model.ErrAuthRequired
	}
	if viewerID == targetID {
		return model.ErrCannotFollowSelf
	}

	if following {
		return s.follow(ctx, viewerID, targetID)
	}
	return s.unfollow(ctx, viewerID, targetID)
}

func (s *FollowService) follow(ctx context.Context, viewerID, targetID string) error {
	viewer, err := s.profileRepo.GetByID(ctx, viewerID)
	if err != nil {
		return err
	}
	target, err := s.profileRepo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	followerRec := model.NewFollowRecord(viewer.Summary(), now)
	followingRec := model.NewFollowRecord(target.Summary(), now)

	// Follower record first; this order decides which half survives a
	// partial failure and must stay fixed.
	if err := s.followRepo.SetFollower(ctx, targetID, viewerID, followerRec); err != nil {
		return err
	}

	if err := s.followRepo.SetFollowing(ctx, viewerID, targetID, followingRec); err != nil {
		if _, undoErr := s.followRepo.DeleteFollower(ctx, targetID, viewerID); undoErr != nil {
			log.Printf("[FollowService] partial consistency drift: follower record for viewer=%s remains on target=%s: %v",
				viewerID, targetID, undoErr)
		}
		return fmt.Errorf("mirror write failed: %w", err)
	}

	return nil
}

func (s *FollowService) unfollow(ctx context.Context, viewerID, targetID string) error {
	// Snapshot the follower record so a failed second delete can restore it.
	prior, found, err := s.followRepo.GetFollower(ctx, targetID, viewerID)
	if err != nil {
		return err
	}

	if _, err := s.followRepo.DeleteFollower(ctx, targetID, viewerID); err != nil {
		return err
	}

	if _, err := s.followRepo.DeleteFollowing(ctx, viewerID, targetID); err != nil {
		if found {
			if undoErr := s.followRepo.SetFollower(ctx, targetID, viewerID, prior); undoErr != nil {
				log.Printf("[FollowService] partial consistency drift: follower record for viewer=%s lost on target=%s: %v",
					viewerID, targetID, undoErr)
			}
		}
		return fmt.Errorf("mirror delete failed: %w", err)
	}

	return nil
}

// IsFollowing reports whether viewer currently follows target.
func (s *FollowService) IsFollowing(ctx context.Context, viewerID, targetID string) (bool, error) {
	return s.followRepo.Exists(ctx, viewerID, targetID)
}

// GetFollowers lists the users following userID from the mirror records.
func (s *FollowService) GetFollowers(ctx context.Context, userID string) (*model.FollowListResponse, error) {
	users, err := s.followRepo.ListFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.FollowListResponse{Users: users}, nil
}

// GetFollowing lists the users userID follows from the mirror records.
func (s *FollowService) GetFollowing(ctx context.Context, userID string) (*model.FollowListResponse, error) {
	users, err := s.followRepo.ListFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.FollowListResponse{Users: users}, nil
}
