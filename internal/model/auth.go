package model

import "errors"

// Role distinguishes the two kinds of account that can hold a session.
type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// LoginRequest is shared by the doctor and patient login endpoints.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned on successful login.
type TokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"`
	Role      Role   `json:"role"`
	SubjectID int64  `json:"id"`
}

var (
	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailExists is returned when an account with the same email already exists
	ErrEmailExists = errors.New("email already exists")
)

// Principal is the authenticated subject carried by a session token.
type Principal struct {
	ID   int64
	Role Role
}

var (
	// ErrTokenExpired is returned when a session token is past its expiry
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid is returned for malformed, forged or incomplete session tokens
	ErrTokenInvalid = errors.New("token invalid")
)
