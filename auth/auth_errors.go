package auth

import "github.com/jrsteele09/go-kyc-client/internal/errors"

var (
	NoRefreshTokenErr   = errors.ErrNoRefreshToken
	AuthInProgressErr   = errors.ErrAuthInProgress
	NotAuthenticatedErr = errors.ErrNotAuthenticated
	InvalidResponseErr  = errors.ErrInvalidResponse

	// SessionSupersededErr reports a refresh whose session was replaced while it was in flight.
	SessionSupersededErr = errors.ErrSessionSuperseded
)

// ValidationError reports a request that was refused before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
