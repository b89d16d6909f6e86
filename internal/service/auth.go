package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"apexgarage/internal/config"
	"apexgarage/internal/model"
)

// AuthService issues short-lived access tokens for profile ids.
type AuthService struct {
	config *config.Config
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{config: cfg}
}

// IssueToken signs an HS256 access token for the user.
func (s *AuthService) IssueToken(userID string) (*model.TokenResponse, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Duration(s.config.AccessTokenMaxAge) * time.Second).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return nil, err
	}

	return &model.TokenResponse{
		AccessToken: signed,
		ExpiresIn:   s.config.AccessTokenMaxAge,
	}, nil
}
