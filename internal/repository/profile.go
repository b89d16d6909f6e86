package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"apexgarage/internal/docstore"
	"apexgarage/internal/model"
)

// prefixUpperBound closes a prefix range the way the client did with
// term..term+"\uf8ff": every string starting with the prefix sorts below it.
const prefixUpperBound = "\uf8ff"

// passwordField is kept out of the UserProfile JSON shape and spliced in and
// out here, so the hash persists without ever reaching an API response.
const passwordField = "passwordHashed"

type profileRepository struct {
	store docstore.Store
}

func NewProfileRepository(store docstore.Store) ProfileRepository {
	return &profileRepository{store: store}
}

func (r *profileRepository) Create(ctx context.Context, p *model.UserProfile) error {
	fields, err := docstore.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	fields[passwordField] = p.PasswordHashed

	if err := r.store.Set(ctx, ProfilesCollection, p.ID, fields, false); err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*model.UserProfile, error) {
	doc, err := r.store.Get(ctx, ProfilesCollection, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return decodeProfile(doc)
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*model.UserProfile, error) {
	docs, err := r.store.QueryByField(ctx, ProfilesCollection, "email", docstore.Range{Eq: email}, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to query profile by email: %w", err)
	}
	if len(docs) == 0 {
		return nil, model.ErrUserNotFound
	}
	return decodeProfile(&docs[0])
}

func (r *profileRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	docs, err := r.store.QueryByField(ctx, ProfilesCollection, "email", docstore.Range{Eq: email}, 1)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return len(docs) > 0, nil
}

// CompleteOnboarding merge-writes the public identity onto the profile,
// preserving stats and credentials already on the document.
func (r *profileRepository) CompleteOnboarding(ctx context.Context, id, displayName string, now time.Time) error {
	fields := map[string]any{
		"displayName":         displayName,
		"onboardingCompleted": true,
		"updatedAt":           now.UTC().Format(time.RFC3339Nano),
	}
	if err := r.store.Set(ctx, ProfilesCollection, id, fields, true); err != nil {
		return fmt.Errorf("failed to complete onboarding: %w", err)
	}
	return nil
}

func (r *profileRepository) Search(ctx context.Context, prefix string, limit int) ([]model.UserSummary, error) {
	rng := docstore.Range{GTE: prefix, LTE: prefix + prefixUpperBound}
	docs, err := r.store.QueryByField(ctx, ProfilesCollection, "displayName", rng, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search profiles: %w", err)
	}

	users := make([]model.UserSummary, 0, len(docs))
	for i := range docs {
		p, err := decodeProfile(&docs[i])
		if err != nil {
			return nil, err
		}
		users = append(users, p.Summary())
	}
	return users, nil
}

func (r *profileRepository) IncrementLikesReceived(ctx context.Context, id string, delta int64) error {
	err := r.store.IncrementField(ctx, ProfilesCollection, id, LikesReceivedField, delta)
	if errors.Is(err, docstore.ErrNotFound) {
		return model.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to increment likes received: %w", err)
	}
	return nil
}

func decodeProfile(doc *docstore.Document) (*model.UserProfile, error) {
	var p model.UserProfile
	if err := docstore.Unmarshal(doc.Fields, &p); err != nil {
		return nil, fmt.Errorf("failed to decode profile %s: %w", doc.ID, err)
	}
	p.ID = doc.ID
	if hash, ok := doc.Fields[passwordField].(string); ok {
		p.PasswordHashed = hash
	}
	return &p, nil
}
