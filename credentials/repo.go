package credentials

import (
	"context"

	"github.com/jrsteele09/go-kyc-client/internal/errors"
)

// Key names one of the persisted credential fields.
type Key string

const (
	KeyAccessToken  Key = "auth_token"
	KeyRefreshToken Key = "refresh_token"
	KeyCurrentUser  Key = "current_user"
)

// AllKeys lists every key the session persists.
var AllKeys = []Key{KeyAccessToken, KeyRefreshToken, KeyCurrentUser}

// ErrNotFound is returned by Get when a key holds no value.
var ErrNotFound = errors.ErrNotFound

// Repo is the persistence medium mirroring the live session. Values are opaque strings.
// Only the session store writes to it, and it is read only when a store is constructed.
type Repo interface {
	// Get returns the stored value or ErrNotFound
	Get(ctx context.Context, key Key) (string, error)

	// Set stores a value, replacing any previous one
	Set(ctx context.Context, key Key, value string) error

	// Delete removes the keys; missing keys are not an error
	Delete(ctx context.Context, keys ...Key) error
}
