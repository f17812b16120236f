package dto

import (
	"time"

	"github.com/ticketai/triage-service/internal/domain"
)

// SignupRequest payload.
type SignupRequest struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Skills   []string `json:"skills"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest is the admin edit payload.
type UpdateUserRequest struct {
	Email  string          `json:"email"`
	Role   domain.UserRole `json:"role"`
	Skills []string        `json:"skills"`
}

// UserResponse is the public account view (no password hash).
type UserResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      domain.UserRole `json:"role"`
	Skills    []string        `json:"skills"`
	CreatedAt time.Time       `json:"created_at"`
}

// AuthResponse carries the account and its token.
type AuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}
