package auth

import (
	"context"
	"net/mail"
	"strings"

	"github.com/jrsteele09/go-kyc-client/users"
)

const (
	minLoginPasswordLength    = 6
	minRegisterPasswordLength = 8
)

// API is the backend's auth surface. Implementations must honour ctx cancellation.
type API interface {
	Login(ctx context.Context, request LoginRequest) (*LoginResponse, error)
	Register(ctx context.Context, request RegisterRequest) error
	Refresh(ctx context.Context, request RefreshRequest) (*LoginResponse, error)
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// LoginResponse is returned by both login and refresh.
type LoginResponse struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
	User         *users.User `json:"user"`
}

func (r LoginRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return &ValidationError{Field: "username", Message: "Username is required"}
	}
	if r.Password == "" {
		return &ValidationError{Field: "password", Message: "Password is required"}
	}
	if len(r.Password) < minLoginPasswordLength {
		return &ValidationError{Field: "password", Message: "Password must be at least 6 characters"}
	}
	return nil
}

func (r RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return &ValidationError{Field: "username", Message: "Username is required"}
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return &ValidationError{Field: "email", Message: "A valid email is required"}
	}
	if len(r.Password) < minRegisterPasswordLength {
		return &ValidationError{Field: "password", Message: "Password must be at least 8 characters"}
	}
	return nil
}

// hasTokens reports whether the response carries both credentials.
func (r *LoginResponse) hasTokens() bool {
	return r != nil && r.Token != "" && r.RefreshToken != ""
}

// complete reports whether the response can authenticate a session.
func (r *LoginResponse) complete() bool {
	return r.hasTokens() && r.User != nil
}
