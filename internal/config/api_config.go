package config

import (
	"strings"
	"time"
)

type APIConfig interface {
	GetAPIBaseURL() string
	GetKYCRequestTimeout() time.Duration
}

type API struct {
	BaseURL           string        `env:"KYC_API_URL" envDefault:"http://localhost:8080/api"`
	KYCRequestTimeout time.Duration `env:"KYC_UPLOAD_TIMEOUT" envDefault:"30s"`
}

var _ APIConfig = API{}

// GetAPIBaseURL returns the backend root without a trailing slash.
func (a API) GetAPIBaseURL() string {
	return strings.TrimRight(a.BaseURL, "/")
}

func (a API) GetKYCRequestTimeout() time.Duration {
	return a.KYCRequestTimeout
}
