package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"apexgarage/internal/docstore"
	"apexgarage/internal/model"
	"apexgarage/internal/repository"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================
//
// The relationship services are exercised against the real repositories over
// the in-memory document store, so the tests verify the actual record paths
// and mirror layout, not mock bookkeeping. Failure injection happens one
// level down, at the store.

// flakyStore wraps a Store and fails chosen operations, for driving the
// compensation paths.
type flakyStore struct {
	docstore.Store

	failSet       func(collection, id string) error
	failDelete    func(collection, id string) error
	failIncrement func(collection, id string) error

	setCalls    int
	deleteCalls int
}

func (f *flakyStore) Set(ctx context.Context, collection, id string, fields map[string]any, merge bool) error {
	f.setCalls++
	if f.failSet != nil {
		if err := f.failSet(collection, id); err != nil {
			return err
		}
	}
	return f.Store.Set(ctx, collection, id, fields, merge)
}

func (f *flakyStore) Delete(ctx context.Context, collection, id string) (bool, error) {
	f.deleteCalls++
	if f.failDelete != nil {
		if err := f.failDelete(collection, id); err != nil {
			return false, err
		}
	}
	return f.Store.Delete(ctx, collection, id)
}

func (f *flakyStore) IncrementField(ctx context.Context, collection, id, fieldPath string, delta int64) error {
	if f.failIncrement != nil {
		if err := f.failIncrement(collection, id); err != nil {
			return err
		}
	}
	return f.Store.IncrementField(ctx, collection, id, fieldPath, delta)
}

type socialFixture struct {
	store       *flakyStore
	profileRepo repository.ProfileRepository
	followRepo  repository.FollowRepository
	followSvc   *FollowService
}

func newSocialFixture(t *testing.T) *socialFixture {
	t.Helper()

	store := &flakyStore{Store: docstore.NewMemoryStore()}
	profileRepo := repository.NewProfileRepository(store)
	followRepo := repository.NewFollowRepository(store)

	f := &socialFixture{
		store:       store,
		profileRepo: profileRepo,
		followRepo:  followRepo,
		followSvc:   NewFollowService(followRepo, profileRepo),
	}

	f.seedProfile(t, "u1", "alice")
	f.seedProfile(t, "u2", "bob")
	return f
}

func (f *socialFixture) seedProfile(t *testing.T, id, displayName string) {
	t.Helper()

	now := time.Now().UTC()
	profile := &model.UserProfile{
		ID:          id,
		DisplayName: &displayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := f.profileRepo.Create(context.Background(), profile); err != nil {
		t.Fatalf("seed profile %s: %v", id, err)
	}
}

// mirrorState reads both halves of the follow relationship directly from the
// store paths.
func (f *socialFixture) mirrorState(t *testing.T, viewerID, targetID string) (followerExists, followingExists bool) {
	t.Helper()
	ctx := context.Background()

	_, followerExists, _ = f.followRepo.GetFollower(ctx, targetID, viewerID)
	followingExists, err := f.followRepo.Exists(ctx, viewerID, targetID)
	if err != nil {
		t.Fatalf("read following record: %v", err)
	}
	return followerExists, followingExists
}

// =============================================================================
// FOLLOW TESTS
// =============================================================================

func TestFollowService_Follow_WritesBothMirrors(t *testing.T) {
	f := newSocialFixture(t)
	ctx := context.Background()

	if err := f.followSvc.SetFollowing(ctx, "u1", "u2", true); err != nil {
		t.Fatalf("follow: %v", err)
	}

	rec, found, err := f.followRepo.GetFollower(ctx, "u2", "u1")
	if err != nil {
		t.Fatalf("read follower record: %v", err)
	}
	if !found {
		t.Fatal("expected follower record under target")
	}
	if !rec.Val {
		t.Error("follower record val should be true")
	}
	if rec.DisplayName == nil || *rec.DisplayName != "alice" {
		t.Errorf("follower record displayName = %v, want alice (the viewer's name)", rec.DisplayName)
	}

	followerExists, followingExists := f.mirrorState(t, "u1", "u2")
	if !followerExists || !followingExists {
		t.Errorf("mirror state = (%v, %v), want both true", followerExists, followingExists)
	}

	isFollowing, err := f.followSvc.IsFollowing(ctx, "u1", "u2")
	if err != nil {
		t.Fatalf("IsFollowing: %v", err)
	}
	if !isFollowing {
		t.Error("IsFollowing should report true after follow")
	}
}

func TestFollowService_Follow_Idempotent(t *testing.T) {
	f := newSocialFixture(t)
	ctx := context.Background()

	if err := f.followSvc.SetFollowing(ctx, "u1", "u2", true); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if err := f.followSvc.SetFollowing(ctx, "u1", "u2", true); err != nil {
		t.Fatalf("second follow: %v", err)
	}

	followers, err := f.followSvc.GetFollowers(ctx, "u2")
	if err != nil {
		t.Fatalf("GetFollowers: %v", err)
	}
	if len(followers.Users) != 1 {
		t.Errorf("followers = %d, want 1 after duplicate follow", len(followers.Users))
	}
}

func TestFollowService_Follow_SelfRejectedBeforeAnyWrite(t *testing.T) {
	f := newSocialFixture(t)

	writesBefore := f.store.setCalls

	err := f.followSvc.SetFollowing(context.Background(), "u1", "u1", true)
	if !errors.Is(err, model.ErrCannotFollowSelf) {
		t.Fatalf("err = %v, want ErrCannotFollowSelf", err)
	}

	if f.store.setCalls != writesBefore {
		t.Errorf("self-follow performed %d writes, want 0", f.store.setCalls-writesBefore)
	}
}

func TestFollowService_Follow_AnonymousRejected(t *testing.T) {
	f := newSocialFixture(t)

	err := f.followSvc.SetFollowing(context.Background(), "", "u2", true)
	if !errors.Is(err, model.ErrAuthRequired) {
		t.Fatalf("err = %v, want ErrAuthRequired", err)
	}
}

func TestFollowService_Follow_UnknownTarget(t *testing.T) {
	f := newSocialFixture(t)

	err := f.followSvc.SetFollowing(context.Background(), "u1", "ghost", true)
	if !errors.Is(err, model.ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestFollowService_Follow_MirrorFailureCompensates(t *testing.T) {
	f := newSocialFixture(t)
	ctx := context.Background()

	// Fail the second write (the following record under the viewer).
	f.store.failSet = func(collection, id string) error {
		if collection == "users/u1/following" {
			return fmt.Errorf("store unavailable")
		}
		return nil
	}

	err := f.followSvc.SetFollowing(ctx, "u1", "u2", true)
	if err == nil {
		t.Fatal("expected follow to fail")
	}

	followerExists, followingExists := f.mirrorState(t, "u1", "u2")
	if followerExists || followingExists {
		t.Errorf("mirror state after compensation = (%v, %v), want both false", followerExists, followingExists)
	}
}

func TestFollowService_Unfollow_RemovesBothMirrors(t *testing.T) {
	f := newSocialFixture(t)
	ctx := context.Background()

	if err := f.followSvc.SetFollowing(ctx, "u1", "u2", true); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if err := f.followSvc.SetFollowing(ctx, "u1", "u2", false); err != nil {
		t.Fatalf("unfollow: %v", err)
	}

	followerExists, followingExists := f.mirrorState(t, "u1", "u2")
	if followerExists || followingExists {
		t.Errorf("mirror state = (%v, %v), want both false", followerExists, followingExists)
	}
}

func TestFollowService_Unfollow_OfNothingIsNoop(t *testing.T) {
	f := newSocialFixture(t)

	if err := f.followSvc.SetFollowing(context.Background(), "u1", "u2", false); err != nil {
		t.Fatalf("unfollow of nothing: %v", err)
	}
}

func TestFollowService_Unfollow_MirrorFailureRestoresRecord(t *testing.T) {
	f := newSocialFixture(t)
	ctx := context.Background()

	if err := f.followSvc.SetFollowing(ctx, "u1", "u2", true); err != nil {
		t.Fatalf("follow: %v", err)
	}

	// Fail the second delete (the following record under the viewer).
	f.store.failDelete = func(collection, id string) error {
		if collection == "users/u1/following" {
			return fmt.Errorf("store unavailable")
		}
		return nil
	}

	err := f.followSvc.SetFollowing(ctx, "u1", "u2", false)
	if err == nil {
		t.Fatal("expected unfollow to fail")
	}

	// The follower record was deleted first, then restored when the mirror
	// delete failed, so the pair is still consistent.
	followerExists, followingExists := f.mirrorState(t, "u1", "u2")
	if !followerExists || !followingExists {
		t.Errorf("mirror state after compensation = (%v, %v), want both true", followerExists, followingExists)
	}

	// Restored record carries the original denormalized identity.
	rec, _, err := f.followRepo.GetFollower(ctx, "u2", "u1")
	if err != nil {
		t.Fatalf("read follower record: %v", err)
	}
	if rec.DisplayName == nil || *rec.DisplayName != "alice" {
		t.Errorf("restored record displayName = %v, want alice", rec.DisplayName)
	}
}

func TestFollowService_Lists(t *testing.T) {
	f := newSocialFixture(t)
	ctx := context.Background()
	f.seedProfile(t, "u3", "carol")

	if err := f.followSvc.SetFollowing(ctx, "u1", "u2", true); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if err := f.followSvc.SetFollowing(ctx, "u3", "u2", true); err != nil {
		t.Fatalf("follow: %v", err)
	}

	followers, err := f.followSvc.GetFollowers(ctx, "u2")
	if err != nil {
		t.Fatalf("GetFollowers: %v", err)
	}
	if len(followers.Users) != 2 {
		t.Fatalf("followers = %d, want 2", len(followers.Users))
	}

	following, err := f.followSvc.GetFollowing(ctx, "u1")
	if err != nil {
		t.Fatalf("GetFollowing: %v", err)
	}
	if len(following.Users) != 1 {
		t.Fatalf("following = %d, want 1", len(following.Users))
	}
	if following.Users[0].ID != "u2" {
		t.Errorf("following[0] = %s, want u2", following.Users[0].ID)
	}
	if following.Users[0].DisplayName == nil || *following.Users[0].DisplayName != "bob" {
		t.Errorf("following[0].DisplayName = %v, want bob", following.Users[0].DisplayName)
	}
}
