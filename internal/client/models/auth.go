// Package models defines the client-side data model and the JSON shapes
// exchanged with the bucket service.
package models

import "time"

// TokenPair is the user's bearer credential pair. Either token may be empty
// when read back from the store.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// User is the profile returned by the OAuth callback.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// AuthResponse is the body of a successful OAuth callback exchange.
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// Pair returns the token pair carried by the response.
func (r *AuthResponse) Pair() TokenPair {
	return TokenPair{AccessToken: r.AccessToken, RefreshToken: r.RefreshToken}
}

// Claims is the identity decoded by the backend from a valid access token.
// It is never stored.
type Claims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Provider string `json:"provider"`
}

// ValidateResponse is the body of POST /auth/validate.
type ValidateResponse struct {
	Claims Claims `json:"claims"`
}

// SessionInfo summarises the local session for display.
// ExpiresAt is zero when the access token carries no readable expiry.
type SessionInfo struct {
	Authenticated bool
	ExpiresAt     time.Time
}

// ErrorResponse is the error envelope used by every endpoint.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
