package errors

import (
	"errors"
	"fmt"
)

// Common error types for the KYC client
var (
	// Session errors
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoRefreshToken     = errors.New("no refresh token available")
	ErrAuthInProgress     = errors.New("authentication already in progress")
	ErrSessionSuperseded  = errors.New("session changed while the request was in flight")

	// Token errors
	ErrInvalidToken = errors.New("invalid token")

	// Storage errors
	ErrNotFound = errors.New("not found")

	// Transport errors
	ErrInvalidResponse = errors.New("invalid response")
)

// ServerMessager is implemented by errors that carry a human readable message sent by the backend.
type ServerMessager interface {
	ServerMessage() string
}

// MessageOr returns the backend's message for err when one is present, otherwise fallback.
func MessageOr(err error, fallback string) string {
	var sm ServerMessager
	if errors.As(err, &sm) {
		if msg := sm.ServerMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
