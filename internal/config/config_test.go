package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-kyc-client/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, "KYC Client", c.GetAppName())
	require.Equal(t, "DEV", c.GetEnv())
	require.True(t, c.IsDev())
	require.Equal(t, "http://localhost:8080/api", c.GetAPIBaseURL())
	require.Equal(t, 15*time.Second, c.GetAuthRequestTimeout())
	require.Equal(t, 30*time.Second, c.GetKYCRequestTimeout())
	require.Equal(t, 2*time.Second, c.GetPersistTimeout())
	require.Equal(t, config.StorageFile, c.GetStorageBackend())
	require.Equal(t, "kyc:session:", c.GetRedisKeyPrefix())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("KYC_API_URL", "https://kyc.example.com/api/")
	t.Setenv("KYC_REQUEST_TIMEOUT", "5s")
	t.Setenv("KYC_STORAGE", "REDIS")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	c, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "PROD", c.GetEnv())
	require.False(t, c.IsDev())
	require.Equal(t, "https://kyc.example.com/api", c.GetAPIBaseURL())
	require.Equal(t, 5*time.Second, c.GetAuthRequestTimeout())
	require.Equal(t, config.StorageRedis, c.GetStorageBackend())
	require.Equal(t, "redis://localhost:6379/0", c.GetRedisURL())
}

func TestLoad_Validation(t *testing.T) {
	t.Run("redis without url", func(t *testing.T) {
		t.Setenv("KYC_STORAGE", "redis")
		t.Setenv("REDIS_URL", "")
		_, err := config.Load()
		require.ErrorContains(t, err, "REDIS_URL")
	})

	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("KYC_STORAGE", "sqlite")
		_, err := config.Load()
		require.ErrorContains(t, err, "unknown storage backend")
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("KYC_REQUEST_TIMEOUT", "soon")
		_, err := config.Load()
		require.Error(t, err)
	})
}

func TestLoad_DotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("APP_NAME=From Dotenv\nKYC_STORAGE=memory\n"), 0o600))
	// godotenv sets variables with os.Setenv; register them with t.Setenv so they are restored.
	t.Setenv("APP_NAME", "")
	t.Setenv("KYC_STORAGE", "")
	require.NoError(t, os.Unsetenv("APP_NAME"))
	require.NoError(t, os.Unsetenv("KYC_STORAGE"))

	c, err := config.Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, "From Dotenv", c.GetAppName())
	require.Equal(t, config.StorageMemory, c.GetStorageBackend())
}
