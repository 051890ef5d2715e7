package config

import "time"

type AuthConfig interface {
	GetAuthRequestTimeout() time.Duration
	GetPersistTimeout() time.Duration
}

type Auth struct {
	RequestTimeout time.Duration `env:"KYC_REQUEST_TIMEOUT" envDefault:"15s"`
	PersistTimeout time.Duration `env:"KYC_PERSIST_TIMEOUT" envDefault:"2s"`
}

var _ AuthConfig = Auth{}

// GetAuthRequestTimeout bounds each login, register and refresh call.
func (a Auth) GetAuthRequestTimeout() time.Duration {
	return a.RequestTimeout
}

// GetPersistTimeout bounds each write to the credential store.
func (a Auth) GetPersistTimeout() time.Duration {
	return a.PersistTimeout
}
