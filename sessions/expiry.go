package sessions

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-kyc-client/internal/errors"
)

// TokenExpiry decodes the payload of a JWT without verifying its signature and returns the
// exp claim. The signature belongs to the backend; the client only needs to know when to stop
// sending the token.
func TokenExpiry(rawToken string) (time.Time, error) {
	if rawToken == "" {
		return time.Time{}, errors.ErrInvalidToken
	}

	token, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return time.Time{}, fmt.Errorf("[TokenExpiry] %w: %w", errors.ErrInvalidToken, err)
	}

	exp, err := token.Claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("[TokenExpiry] %w: %w", errors.ErrInvalidToken, err)
	}
	if exp == nil {
		return time.Time{}, fmt.Errorf("[TokenExpiry] %w: no exp claim", errors.ErrInvalidToken)
	}
	return exp.Time, nil
}

// IsExpired is fail-closed: a token whose expiry cannot be read counts as expired.
func IsExpired(rawToken string, now time.Time) bool {
	exp, err := TokenExpiry(rawToken)
	if err != nil {
		return true
	}
	return !now.Before(exp)
}
