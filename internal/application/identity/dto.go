package identity

import (
	"time"

	"github.com/swas/backend/internal/domain/identity"
)

// LoginInput contains the input for user login
type LoginInput struct {
	UserID   string
	Password string
	IP       string // Client IP for login tracking
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
	User                  UserDTO   `json:"user"`
}

// RefreshTokenResult contains the result of a token refresh
type RefreshTokenResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// LogoutInput identifies the token being logged out
type LogoutInput struct {
	UserID   string
	TokenJTI string
	TTL      time.Duration // remaining lifetime of the access token
}

// CreateUserInput contains input for creating a user
type CreateUserInput struct {
	UserID   string
	BranchID string
	Position identity.Position
	Password string
}

// UserDTO is the public view of a user; the password hash never leaves the service
type UserDTO struct {
	UserID      string     `json:"user_id"`
	UserNumber  int        `json:"user_number"`
	BranchID    string     `json:"branch_id"`
	Position    string     `json:"position"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ToUserDTO converts a domain user
func ToUserDTO(u *identity.User) UserDTO {
	return UserDTO{
		UserID:      u.UserID,
		UserNumber:  u.UserNumber,
		BranchID:    u.BranchID,
		Position:    string(u.Position),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
