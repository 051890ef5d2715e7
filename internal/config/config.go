package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	APIConfig
	StorageConfig
	AuthConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	IsDev() bool
	GetLogLevel() string
}

type mainConfig struct {
	EnvVars
	API
	Storage
	Auth
}

// New reads the configuration from the environment. A .env file in the working directory is
// loaded first if present; variables already set in the environment win.
func New() (Config, error) {
	return Load(".env")
}

// Load is New with explicit dotenv files. Missing files are ignored.
func Load(dotenvFiles ...string) (Config, error) {
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("[config.Load] %s: %w", f, err)
		}
	}

	var c mainConfig
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("[config.Load] %w", err)
	}
	if err := c.Storage.validate(); err != nil {
		return nil, fmt.Errorf("[config.Load] %w", err)
	}
	return c, nil
}
