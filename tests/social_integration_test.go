package integration_test

import (
	"context"
	"testing"
	"time"

	"apexgarage/internal/docstore"
	"apexgarage/internal/model"
	"apexgarage/internal/repository"
	"apexgarage/internal/service"
)

// ============================================================================
// Social graph integration
// ============================================================================
//
// Drives the follow and like services end to end over the in-memory document
// store and asserts the raw document layout underneath: the mirror record
// paths, the denormalized identity on the records, and the likesReceived
// counter on the profile document.

type socialStack struct {
	store       docstore.Store
	profileRepo repository.ProfileRepository
	followRepo  repository.FollowRepository
	likeRepo    repository.LikeRepository
	followSvc   *service.FollowService
	likeSvc     *service.LikeService
}

func newSocialStack(t *testing.T) *socialStack {
	t.Helper()

	store := docstore.NewMemoryStore()
	profileRepo := repository.NewProfileRepository(store)
	followRepo := repository.NewFollowRepository(store)
	likeRepo := repository.NewLikeRepository(store)

	return &socialStack{
		store:       store,
		profileRepo: profileRepo,
		followRepo:  followRepo,
		likeRepo:    likeRepo,
		followSvc:   service.NewFollowService(followRepo, profileRepo),
		likeSvc:     service.NewLikeService(likeRepo, profileRepo),
	}
}

func (s *socialStack) seedProfile(t *testing.T, id, displayName string) {
	t.Helper()

	now := time.Now().UTC()
	if err := s.profileRepo.Create(context.Background(), &model.UserProfile{
		ID:          id,
		DisplayName: &displayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}); err != nil {
		t.Fatalf("seed profile %s: %v", id, err)
	}
}

func TestSocialGraph_FollowAndLikeLifecycle(t *testing.T) {
	s := newSocialStack(t)
	ctx := context.Background()

	s.seedProfile(t, "u1", "alice")
	s.seedProfile(t, "u2", "bob")

	// alice follows bob
	if err := s.followSvc.SetFollowing(ctx, "u1", "u2", true); err != nil {
		t.Fatalf("follow: %v", err)
	}

	// Raw follower record under the target carries the viewer's identity.
	doc, err := s.store.Get(ctx, "users/u2/followers", "u1")
	if err != nil {
		t.Fatalf("read users/u2/followers/u1: %v", err)
	}
	if doc.Fields["val"] != true {
		t.Errorf("followers record val = %v, want true", doc.Fields["val"])
	}
	if doc.Fields["displayName"] != "alice" {
		t.Errorf("followers record displayName = %v, want alice", doc.Fields["displayName"])
	}

	// Raw following record under the viewer carries the target's identity.
	doc, err = s.store.Get(ctx, "users/u1/following", "u2")
	if err != nil {
		t.Fatalf("read users/u1/following/u2: %v", err)
	}
	if doc.Fields["displayName"] != "bob" {
		t.Errorf("following record displayName = %v, want bob", doc.Fields["displayName"])
	}

	// alice likes bob's profile: edge plus counter
	if err := s.likeSvc.SetLiked(ctx, "u1", "u2", true); err != nil {
		t.Fatalf("like: %v", err)
	}

	if _, err := s.store.Get(ctx, "users/u2/profile_likes", "u1"); err != nil {
		t.Fatalf("read users/u2/profile_likes/u1: %v", err)
	}

	bob, err := s.profileRepo.GetByID(ctx, "u2")
	if err != nil {
		t.Fatalf("read bob: %v", err)
	}
	if bob.Stats.LikesReceived != 1 {
		t.Errorf("likesReceived = %d, want 1", bob.Stats.LikesReceived)
	}

	// Tear the relationship back down.
	if err := s.likeSvc.SetLiked(ctx, "u1", "u2", false); err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if err := s.followSvc.SetFollowing(ctx, "u1", "u2", false); err != nil {
		t.Fatalf("unfollow: %v", err)
	}

	bob, err = s.profileRepo.GetByID(ctx, "u2")
	if err != nil {
		t.Fatalf("read bob: %v", err)
	}
	if bob.Stats.LikesReceived != 0 {
		t.Errorf("likesReceived after unlike = %d, want 0", bob.Stats.LikesReceived)
	}

	for _, path := range []struct{ collection, id string }{
		{"users/u2/followers", "u1"},
		{"users/u1/following", "u2"},
		{"users/u2/profile_likes", "u1"},
	} {
		if _, err := s.store.Get(ctx, path.collection, path.id); err == nil {
			t.Errorf("document %s/%s should be gone", path.collection, path.id)
		}
	}
}

func TestSocialGraph_FeedFollowsAuthors(t *testing.T) {
	s := newSocialStack(t)
	ctx := context.Background()

	s.seedProfile(t, "u1", "alice")
	s.seedProfile(t, "u2", "bob")
	s.seedProfile(t, "u3", "carol")

	tuneRepo := repository.NewTuneRepository(s.store)
	tuneSvc := service.NewTuneService(tuneRepo, s.profileRepo, s.followRepo)

	// bob and carol each publish a tune; alice follows only bob.
	if _, err := tuneSvc.Create(ctx, "u2", &model.CreateTuneRequest{CarName: "Mazda RX-7"}); err != nil {
		t.Fatalf("create bob's tune: %v", err)
	}
	if _, err := tuneSvc.Create(ctx, "u3", &model.CreateTuneRequest{CarName: "Nissan GT-R"}); err != nil {
		t.Fatalf("create carol's tune: %v", err)
	}

	if err := s.followSvc.SetFollowing(ctx, "u1", "u2", true); err != nil {
		t.Fatalf("follow: %v", err)
	}

	feed, err := tuneSvc.GetFeed(ctx, "u1")
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(feed.Tunes) != 1 {
		t.Fatalf("feed has %d tunes, want 1 (only followed authors)", len(feed.Tunes))
	}
	if feed.Tunes[0].CreatorName != "bob" {
		t.Errorf("feed tune creator = %s, want bob", feed.Tunes[0].CreatorName)
	}

	// A viewer following nobody falls back to the latest tunes site-wide.
	feed, err = tuneSvc.GetFeed(ctx, "u3")
	if err != nil {
		t.Fatalf("fallback feed: %v", err)
	}
	if len(feed.Tunes) != 2 {
		t.Errorf("fallback feed has %d tunes, want 2", len(feed.Tunes))
	}
}
