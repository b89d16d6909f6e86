package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"apexgarage/internal/model"
	"apexgarage/internal/repository"
	"apexgarage/internal/tuning"
)

const (
	// feedAuthorCap bounds how many followed authors one feed query covers.
	feedAuthorCap = 10

	defaultSearchLimit = 20
)

// fallbackCreatorName is shown when a tune is saved before onboarding set a
// display name.
const fallbackCreatorName = "Unnamed Racer"

// TuneService handles business logic for tune sheets: the garage, the feed and
// car-name search.
type TuneService struct {
	tuneRepo    repository.TuneRepository
	profileRepo repository.ProfileRepository
	followRepo  repository.FollowRepository
}

func NewTuneService(tuneRepo repository.TuneRepository, profileRepo repository.ProfileRepository, followRepo repository.FollowRepository) *TuneService {
	return &TuneService{
		tuneRepo:    tuneRepo,
		profileRepo: profileRepo,
		followRepo:  followRepo,
	}
}

// Create saves a new tune with the creator's identity denormalized onto it.
func (s *TuneService) Create(ctx context.Context, userID string, req *model.CreateTuneRequest) (*model.Tune, error) {
	creator, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	creatorName := fallbackCreatorName
	if creator.DisplayName != nil && *creator.DisplayName != "" {
		creatorName = *creator.DisplayName
	}

	tune := &model.Tune{
		ID:           uuid.NewString(),
		UserID:       userID,
		CreatorName:  creatorName,
		CreatorPhoto: creator.PhotoURL,
		CarName:      req.CarName,
		ImageURL:     req.ImageURL,
		PP:           req.PP,
		Stats:        req.Stats,
		Tyres:        req.Tyres,
		Parts:        req.Parts,
		Settings:     req.Settings,
		CreatedAt:    time.Now().UTC(),
	}

	if err := tune.Validate(); err != nil {
		return nil, err
	}
	if err := tuning.ValidateGearbox(tune.Settings.Transmission); err != nil {
		return nil, fmt.Errorf("invalid gearbox: %w", err)
	}

	if err := s.tuneRepo.Create(ctx, tune); err != nil {
		return nil, fmt.Errorf("failed to save tune: %w", err)
	}

	return tune, nil
}

// GetByID retrieves one tune sheet.
func (s *TuneService) GetByID(ctx context.Context, id string) (*model.Tune, error) {
	return s.tuneRepo.GetByID(ctx, id)
}

// Update replaces the editable fields of an existing tune. Only the owner may
// update; creator identity and timestamps are preserved.
func (s *TuneService) Update(ctx context.Context, userID, tuneID string, req *model.CreateTuneRequest) (*model.Tune, error) {
	tune, err := s.tuneRepo.GetByID(ctx, tuneID)
	if err != nil {
		return nil, err
	}
	if tune.UserID != userID {
		return nil, model.ErrNotTuneOwner
	}

	tune.CarName = req.CarName
	tune.ImageURL = req.ImageURL
	tune.PP = req.PP
	tune.Stats = req.Stats
	tune.Tyres = req.Tyres
	tune.Parts = req.Parts
	tune.Settings = req.Settings

	if err := tune.Validate(); err != nil {
		return nil, err
	}
	if err := tuning.ValidateGearbox(tune.Settings.Transmission); err != nil {
		return nil, fmt.Errorf("invalid gearbox: %w", err)
	}

	if err := s.tuneRepo.Update(ctx, tune); err != nil {
		return nil, fmt.Errorf("failed to update tune: %w", err)
	}

	return tune, nil
}

// Delete removes a tune. Only the owner may delete.
func (s *TuneService) Delete(ctx context.Context, userID, tuneID string) error {
	tune, err := s.tuneRepo.GetByID(ctx, tuneID)
	if err != nil {
		return err
	}
	if tune.UserID != userID {
		return model.ErrNotTuneOwner
	}
	return s.tuneRepo.Delete(ctx, tuneID)
}

// GetGarage lists a user's saved tunes.
func (s *TuneService) GetGarage(ctx context.Context, userID string) (*model.TuneListResponse, error) {
	tunes, err := s.tuneRepo.ListByUser(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	return &model.TuneListResponse{Tunes: tunes}, nil
}

// Search finds tunes whose car name starts with the query.
func (s *TuneService) Search(ctx context.Context, query string, limit int) (*model.TuneListResponse, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if query == "" {
		return &model.TuneListResponse{Tunes: []model.Tune{}}, nil
	}

	tunes, err := s.tuneRepo.SearchByCarName(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return &model.TuneListResponse{Tunes: tunes}, nil
}

// GetFeed assembles the viewer's feed: tunes from the people they follow,
// falling back to the latest tunes site-wide when they follow nobody yet.
func (s *TuneService) GetFeed(ctx context.Context, viewerID string) (*model.TuneListResponse, error) {
	followedIDs, err := s.followRepo.FollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	if len(followedIDs) == 0 {
		tunes, err := s.tuneRepo.ListRecent(ctx, model.FeedTuneLimit)
		if err != nil {
			return nil, err
		}
		return &model.TuneListResponse{Tunes: tunes}, nil
	}

	// The author set is capped, matching the client's batching limit; a
	// larger following list only sees its first slice in the feed.
	if len(followedIDs) > feedAuthorCap {
		followedIDs = followedIDs[:feedAuthorCap]
	}

	tunes, err := s.tuneRepo.ListByUsers(ctx, followedIDs, model.FeedTuneLimit)
	if err != nil {
		return nil, err
	}
	return &model.TuneListResponse{Tunes: tunes}, nil
}
