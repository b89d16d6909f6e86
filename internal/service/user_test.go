package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"apexgarage/internal/model"
)

// mockProfileRepository lets each test script repository behavior without a
// store behind it.
type mockProfileRepository struct {
	createFn        func(ctx context.Context, p *model.UserProfile) error
	getByIDFn       func(ctx context.Context, id string) (*model.UserProfile, error)
	getByEmailFn    func(ctx context.Context, email string) (*model.UserProfile, error)
	existsByEmailFn func(ctx context.Context, email string) (bool, error)
	searchFn        func(ctx context.Context, prefix string, limit int) ([]model.UserSummary, error)

	createCalls []*model.UserProfile
}

func (m *mockProfileRepository) Create(ctx context.Context, p *model.UserProfile) error {
	m.createCalls = append(m.createCalls, p)
	if m.createFn != nil {
		return m.createFn(ctx, p)
	}
	return nil
}

func (m *mockProfileRepository) GetByID(ctx context.Context, id string) (*model.UserProfile, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockProfileRepository) GetByEmail(ctx context.Context, email string) (*model.UserProfile, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockProfileRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(ctx, email)
	}
	return false, nil
}

func (m *mockProfileRepository) CompleteOnboarding(ctx context.Context, id, displayName string, now time.Time) error {
	return nil
}

func (m *mockProfileRepository) Search(ctx context.Context, prefix string, limit int) ([]model.UserSummary, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, prefix, limit)
	}
	return nil, nil
}

func (m *mockProfileRepository) IncrementLikesReceived(ctx context.Context, id string, delta int64) error {
	return nil
}

func TestUserService_Register_Success(t *testing.T) {
	mockRepo := &mockProfileRepository{}
	svc := NewUserService(mockRepo, nil, nil, nil)

	req := &model.RegisterRequest{
		Email:    "Alice@Example.com",
		Password: "securepassword123",
	}

	profile, err := svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if profile.ID == "" {
		t.Error("expected a generated profile id")
	}

	// Email is normalized to lower case.
	if profile.Email == nil || *profile.Email != "alice@example.com" {
		t.Errorf("email = %v, want alice@example.com", profile.Email)
	}

	// No display name yet: onboarding is still pending.
	if profile.OnboardingCompleted {
		t.Error("expected OnboardingCompleted false without a display name")
	}

	// Password is hashed, never stored as given.
	if profile.PasswordHashed == req.Password {
		t.Error("password should be hashed, not stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHashed), []byte(req.Password)); err != nil {
		t.Errorf("stored hash does not verify against the password: %v", err)
	}

	if len(mockRepo.createCalls) != 1 {
		t.Errorf("Create called %d times, want 1", len(mockRepo.createCalls))
	}
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	mockRepo := &mockProfileRepository{
		existsByEmailFn: func(ctx context.Context, email string) (bool, error) {
			return true, nil
		},
	}
	svc := NewUserService(mockRepo, nil, nil, nil)

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "alice@example.com",
		Password: "securepassword123",
	})
	if !errors.Is(err, model.ErrEmailExists) {
		t.Fatalf("err = %v, want ErrEmailExists", err)
	}

	if len(mockRepo.createCalls) != 0 {
		t.Error("Create should not be called for a duplicate email")
	}
}

func TestUserService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	email := "alice@example.com"
	mockRepo := &mockProfileRepository{
		getByEmailFn: func(ctx context.Context, e string) (*model.UserProfile, error) {
			if e == email {
				return &model.UserProfile{ID: "u1", Email: &email, PasswordHashed: string(hash)}, nil
			}
			return nil, model.ErrUserNotFound
		},
	}
	svc := NewUserService(mockRepo, nil, nil, nil)

	cases := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid credentials", "alice@example.com", "correct-password", nil},
		{"wrong password", "alice@example.com", "wrong-password", model.ErrInvalidCredentials},
		// Unknown email reports the same error as a wrong password.
		{"unknown email", "ghost@example.com", "correct-password", model.ErrInvalidCredentials},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), &model.LoginRequest{
				Email:    tc.email,
				Password: tc.password,
			})
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}
