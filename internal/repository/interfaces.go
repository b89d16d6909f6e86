package repository

import (
	"context"
	"time"

	"apexgarage/internal/model"
)

// Collection layout in the document store:
//
//	users/{userId}                          profile document
//	users/{userId}/followers/{viewerId}     follower mirror record
//	users/{userId}/following/{targetId}     following mirror record
//	users/{userId}/profile_likes/{viewerId} like edge
//	tunes/{tuneId}                          tune document
const (
	ProfilesCollection = "users"
	TunesCollection    = "tunes"

	// LikesReceivedField is the denormalized counter on the profile document.
	LikesReceivedField = "stats.likesReceived"
)

func followersCollection(userID string) string {
	return ProfilesCollection + "/" + userID + "/followers"
}

func followingCollection(userID string) string {
	return ProfilesCollection + "/" + userID + "/following"
}

func profileLikesCollection(userID string) string {
	return ProfilesCollection + "/" + userID + "/profile_likes"
}

type ProfileRepository interface {
	Create(ctx context.Context, profile *model.UserProfile) error
	GetByID(ctx context.Context, id string) (*model.UserProfile, error)
	GetByEmail(ctx context.Context, email string) (*model.UserProfile, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CompleteOnboarding(ctx context.Context, id, displayName string, now time.Time) error
	Search(ctx context.Context, prefix string, limit int) ([]model.UserSummary, error)
	// IncrementLikesReceived adjusts the denormalized counter through the
	// store's atomic increment primitive.
	IncrementLikesReceived(ctx context.Context, id string, delta int64) error
}

type FollowRepository interface {
	// SetFollower writes users/{targetID}/followers/{viewerID}.
	SetFollower(ctx context.Context, targetID, viewerID string, rec *model.FollowRecord) error
	// SetFollowing writes users/{viewerID}/following/{targetID}.
	SetFollowing(ctx context.Context, viewerID, targetID string, rec *model.FollowRecord) error
	DeleteFollower(ctx context.Context, targetID, viewerID string) (existed bool, err error)
	DeleteFollowing(ctx context.Context, viewerID, targetID string) (existed bool, err error)
	// GetFollower returns the follower mirror record, or found=false.
	GetFollower(ctx context.Context, targetID, viewerID string) (rec *model.FollowRecord, found bool, err error)
	// Exists reports whether viewer follows target (follower-side record).
	Exists(ctx context.Context, viewerID, targetID string) (bool, error)
	ListFollowers(ctx context.Context, userID string) ([]model.UserSummary, error)
	ListFollowing(ctx context.Context, userID string) ([]model.UserSummary, error)
	// FollowingIDs returns the ids the user follows, for feed assembly.
	FollowingIDs(ctx context.Context, userID string) ([]string, error)
}

type LikeRepository interface {
	// Create writes users/{targetID}/profile_likes/{viewerID}.
	Create(ctx context.Context, targetID, viewerID string, rec *model.LikeRecord) error
	Delete(ctx context.Context, targetID, viewerID string) (existed bool, err error)
	Get(ctx context.Context, targetID, viewerID string) (rec *model.LikeRecord, found bool, err error)
	Exists(ctx context.Context, targetID, viewerID string) (bool, error)
	// CountForTarget recounts the edge set; used by the reconciler, never by
	// the hot path.
	CountForTarget(ctx context.Context, targetID string) (int64, error)
}

type TuneRepository interface {
	Create(ctx context.Context, tune *model.Tune) error
	GetByID(ctx context.Context, id string) (*model.Tune, error)
	Update(ctx context.Context, tune *model.Tune) error
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string, limit int) ([]model.Tune, error)
	ListByUsers(ctx context.Context, userIDs []string, limit int) ([]model.Tune, error)
	SearchByCarName(ctx context.Context, prefix string, limit int) ([]model.Tune, error)
	ListRecent(ctx context.Context, limit int) ([]model.Tune, error)
}
