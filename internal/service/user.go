package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"apexgarage/internal/model"
	"apexgarage/internal/repository"
)

// UserService handles business logic for racer profiles.
type UserService struct {
	profileRepo repository.ProfileRepository
	followRepo  repository.FollowRepository
	likeRepo    repository.LikeRepository
	tuneRepo    repository.TuneRepository
}

func NewUserService(profileRepo repository.ProfileRepository, followRepo repository.FollowRepository, likeRepo repository.LikeRepository, tuneRepo repository.TuneRepository) *UserService {
	return &UserService{
		profileRepo: profileRepo,
		followRepo:  followRepo,
		likeRepo:    likeRepo,
		tuneRepo:    tuneRepo,
	}
}

// Register creates a new account and its profile document. The account starts
// without a display name; onboarding fills that in.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.UserProfile, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, fmt.Errorf("password is required")
	}

	exists, err := s.profileRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, model.ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	profile := &model.UserProfile{
		ID:             uuid.NewString(),
		Email:          &email,
		PasswordHashed: string(hashedPassword),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if req.DisplayName != "" {
		displayName := req.DisplayName
		profile.DisplayName = &displayName
		profile.OnboardingCompleted = true
	}

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return profile, nil
}

// Login authenticates with email and password.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.UserProfile, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	profile, err := s.profileRepo.GetByEmail(ctx, email)
	if err != nil {
		// Don't reveal whether the email exists or not
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHashed), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return profile, nil
}

// CompleteOnboarding sets the public identity on a fresh account.
func (s *UserService) CompleteOnboarding(ctx context.Context, userID string, req *model.OnboardingRequest) (*model.UserProfile, error) {
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		return nil, fmt.Errorf("display name is required")
	}

	if err := s.profileRepo.CompleteOnboarding(ctx, userID, displayName, time.Now().UTC()); err != nil {
		return nil, err
	}

	return s.profileRepo.GetByID(ctx, userID)
}

// GetByID retrieves a profile by ID.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.UserProfile, error) {
	return s.profileRepo.GetByID(ctx, id)
}

// GetProfile retrieves a profile with the viewer's relationship to it. The
// profile lookup fails fast; the relationship probes degrade gracefully so a
// flaky edge read never blocks the page.
func (s *UserService) GetProfile(ctx context.Context, userID string, viewerID *string) (*model.ProfileResponse, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &model.ProfileResponse{User: profile}

	if viewerID != nil && *viewerID != userID {
		if isFollowing, err := s.followRepo.Exists(ctx, *viewerID, userID); err == nil {
			resp.IsFollowing = isFollowing
		}
		if isLiked, err := s.likeRepo.Exists(ctx, userID, *viewerID); err == nil {
			resp.IsLiked = isLiked
		}
	}

	if tunes, err := s.tuneRepo.ListByUser(ctx, userID, 0); err == nil {
		resp.TuneCount = len(tunes)
	}

	return resp, nil
}

// Search finds racers whose display name starts with the query, enriched with
// the viewer's follow status.
func (s *UserService) Search(ctx context.Context, query string, limit int, viewerID *string) ([]model.UserSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.UserSummary{}, nil
	}

	users, err := s.profileRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	if viewerID != nil {
		for i := range users {
			if users[i].ID == *viewerID {
				continue
			}
			if isFollowing, err := s.followRepo.Exists(ctx, *viewerID, users[i].ID); err == nil {
				users[i].IsFollowing = isFollowing
			}
		}
	}

	return users, nil
}
