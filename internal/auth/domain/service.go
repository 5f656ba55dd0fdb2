package domain

import (
	"context"
	"time"
)

type SignupRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ClientInfo is captured at login for session rows.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

type AuthResult struct {
	User      *User
	Token     string
	ExpiresAt time.Time
}

type Service interface {
	Signup(ctx context.Context, req SignupRequest, client ClientInfo) (*AuthResult, error)
	Login(ctx context.Context, req LoginRequest, client ClientInfo) (*AuthResult, error)
	Logout(ctx context.Context, token string) error
	// Authenticate resolves a raw session token to its user. It is the
	// hot path behind the auth middleware.
	Authenticate(ctx context.Context, token string) (*User, *Session, error)
}
