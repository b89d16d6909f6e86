package model

import (
	"errors"
	"time"
)

// FollowRecord is one half of a follow edge. The same shape is written twice:
// under users/{target}/followers/{viewer} carrying the viewer's identity, and
// under users/{viewer}/following/{target} carrying the target's identity.
// Records are never updated in place; re-follow recreates them.
type FollowRecord struct {
	Val         bool      `json:"val"`
	DisplayName *string   `json:"displayName"`
	PhotoURL    *string   `json:"photoURL"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewFollowRecord builds the mirror record for the given counterpart identity.
func NewFollowRecord(counterpart UserSummary, now time.Time) *FollowRecord {
	return &FollowRecord{
		Val:         true,
		DisplayName: counterpart.DisplayName,
		PhotoURL:    counterpart.PhotoURL,
		Timestamp:   now,
	}
}

// FollowListResponse is the follower/following listing payload.
type FollowListResponse struct {
	Users []UserSummary `json:"users"`
}

var (
	ErrCannotFollowSelf = errors.New("cannot follow yourself")
)
