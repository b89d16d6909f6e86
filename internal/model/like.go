package model

import (
	"errors"
	"time"
)

// LikeRecord is the edge stored under users/{target}/profile_likes/{viewer}.
// Its existence must correspond to the viewer having been counted exactly once
// in the target's stats.likesReceived counter.
type LikeRecord struct {
	Val       bool      `json:"val"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLikeRecord builds a fresh like edge.
func NewLikeRecord(now time.Time) *LikeRecord {
	return &LikeRecord{Val: true, Timestamp: now}
}

var (
	ErrCannotLikeSelf = errors.New("cannot like yourself")
)
