package auth

import "github.com/angelmondragon/bookstore-backend/internal/users"

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the tokens and user produced by a successful login.
type LoginResponse struct {
	UserID       int64          `json:"user_id"`
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
}

// RegisterRequest contains the payload required to open an account.
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=64"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"omitempty,max=32"`
	Location  string `json:"location" validate:"omitempty,max=255"`
}

// RegisterResponse is returned after the account row is committed.
type RegisterResponse struct {
	UserID int64 `json:"user_id"`
}

// VerifyResponse reports the verified account.
type VerifyResponse struct {
	UserID     int64 `json:"user_id"`
	IsVerified bool  `json:"is_verified"`
}
