package model

import (
	"errors"
	"time"
)

// UserProfile represents a racer's profile document stored under users/{id}.
// The id is opaque and assigned by the auth layer; everything else lives in
// the document body.
type UserProfile struct {
	ID                  string       `json:"id"`
	Email               *string      `json:"email"`
	PasswordHashed      string       `json:"-"`
	DisplayName         *string      `json:"displayName"`
	PhotoURL            *string      `json:"photoURL"`
	OnboardingCompleted bool         `json:"onboardingCompleted"`
	Stats               ProfileStats `json:"stats"`
	CreatedAt           time.Time    `json:"createdAt"`
	UpdatedAt           time.Time    `json:"updatedAt"`
}

// ProfileStats holds denormalized aggregates on the profile document.
// LikesReceived is maintained by LikeService through atomic increments; it can
// drift from the edge set if the second of two sequential writes fails.
type ProfileStats struct {
	LikesReceived int64 `json:"likesReceived"`
}

// UserSummary is the denormalized identity carried on mirror records and
// returned by follower/following/search listings.
type UserSummary struct {
	ID          string  `json:"id"`
	DisplayName *string `json:"displayName"`
	PhotoURL    *string `json:"photoURL"`
	IsFollowing bool    `json:"isFollowing"`
}

// Summary returns the denormalized identity for this profile.
func (u *UserProfile) Summary() UserSummary {
	return UserSummary{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		PhotoURL:    u.PhotoURL,
	}
}

// ProfileResponse is the profile payload enriched with the viewer's
// relationship to it, mirroring what the profile page loads in one go.
type ProfileResponse struct {
	User        *UserProfile `json:"user"`
	IsFollowing bool         `json:"is_following"`
	IsLiked     bool         `json:"is_liked"`
	TuneCount   int          `json:"tune_count"`
}

// RegisterRequest represents the data needed to register a new user
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// OnboardingRequest completes a fresh account with its public identity.
type OnboardingRequest struct {
	DisplayName string `json:"display_name"`
}

var (
	// ErrUserNotFound is returned when a profile document cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailExists is returned when attempting to register a taken email
	ErrEmailExists = errors.New("email already registered")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAuthRequired is returned when an action needs an authenticated viewer
	ErrAuthRequired = errors.New("authentication required")
)
