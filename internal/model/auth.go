package model

// Auth error codes for HTTP responses
const (
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "TOKEN_INVALID"
)

// TokenResponse carries the issued access token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// AuthResponse is returned by register/login.
type AuthResponse struct {
	User  *UserProfile  `json:"user"`
	Token TokenResponse `json:"token"`
}
