package models

import "time"

// User represents a registered account.
type User struct {
	// ID is the unique identifier for the user (UUID).
	ID string
	// Email is the login name chosen by the user.
	Email string
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash []byte
	// CreatedAt is when the account was created.
	CreatedAt time.Time
}

// Session is one issued access token. Its ID is the token's jti claim.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
}

// AuthUser is what sign-up and sign-in return to the client. The client stores
// it verbatim and sends AccessToken back as a bearer token.
type AuthUser struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"`
}

// Credentials is the sign-up/sign-in request payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
