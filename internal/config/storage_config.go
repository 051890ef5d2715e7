package config

import (
	"fmt"
	"strings"
)

const (
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

type StorageConfig interface {
	GetStorageBackend() string
	GetCredentialsFile() string
	GetRedisURL() string
	GetRedisKeyPrefix() string
}

type Storage struct {
	Backend         string `env:"KYC_STORAGE" envDefault:"file"`
	CredentialsFile string `env:"KYC_CREDENTIALS_FILE" envDefault:"./data/credentials.json"`
	RedisURL        string `env:"REDIS_URL"`
	RedisKeyPrefix  string `env:"KYC_REDIS_PREFIX" envDefault:"kyc:session:"`
}

var _ StorageConfig = Storage{}

func (s Storage) GetStorageBackend() string {
	return strings.ToLower(s.Backend)
}

func (s Storage) GetCredentialsFile() string {
	return s.CredentialsFile
}

func (s Storage) GetRedisURL() string {
	return s.RedisURL
}

func (s Storage) GetRedisKeyPrefix() string {
	return s.RedisKeyPrefix
}

func (s Storage) validate() error {
	switch s.GetStorageBackend() {
	case StorageFile:
		if s.CredentialsFile == "" {
			return fmt.Errorf("KYC_CREDENTIALS_FILE is required for the file backend")
		}
	case StorageRedis:
		if s.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis backend")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", s.Backend)
	}
	return nil
}
