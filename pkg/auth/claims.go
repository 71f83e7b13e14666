package auth

import "github.com/golang-jwt/jwt/v5"

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID    int64
	Superuser bool
	JTI       string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID    int64 `json:"user_id"`
	Superuser bool  `json:"superuser,omitempty"`
	jwt.RegisteredClaims
}

// VerificationClaims is carried by the link sent after registration.
type VerificationClaims struct {
	UserID  int64  `json:"user_id"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

const verificationPurpose = "verify_account"
