package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("CI", "")
	t.Setenv("SECRETS_DIR", t.TempDir())
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_USER", "postgres")
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("DB_NAME", "foodgram")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("SHORT_CODE_MAX_ATTEMPTS", "3")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("SHORT_LINK_CACHE_TTL", "5m")
	t.Setenv("RECIPE_WRITES_PER_HOUR", "-1")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "db", cfg.DBHost)
	assert.Equal(t, "5433", cfg.DBPort)
	assert.Equal(t, "postgres", cfg.DBUser)
	assert.Equal(t, "foodgram", cfg.DBName)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, 3, cfg.ShortCodeMaxAttempts)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, 5*time.Minute, cfg.ShortLinkCacheTTL)
	assert.Equal(t, -1, cfg.RecipeWritesPerHour)
}

func TestLoadConfigWithDefaults(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("CI", "")
	t.Setenv("SECRETS_DIR", t.TempDir())
	for _, name := range []string{"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSL_MODE", "JWT_SECRET", "SHORT_LINK_PREFIX", "SHORT_CODE_MAX_ATTEMPTS", "DEFAULT_PAGE_SIZE", "DB_DRIVER", "RECIPE_WRITES_PER_HOUR", "SHORT_LINKS_PER_MINUTE", "SHORT_LINK_CACHE_TTL"} {
		t.Setenv(name, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, "postgres", cfg.DBUser)
	assert.Equal(t, "disable", cfg.DBSSLMode)
	assert.Equal(t, "your-secret-key", cfg.JWTSecret)
	assert.Equal(t, "/s/", cfg.ShortLinkPrefix)
	assert.Equal(t, 10, cfg.ShortCodeMaxAttempts)
	assert.Equal(t, 6, cfg.DefaultPageSize)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 10, cfg.RecipeWritesPerHour)
	assert.Equal(t, 120, cfg.ShortLinksPerMinute)
	assert.Equal(t, time.Hour, cfg.ShortLinkCacheTTL)
}

func TestLoadConfigSecretsOverrideEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("from-secret\n"), 0o600))

	t.Setenv("ENV", "development")
	t.Setenv("CI", "")
	t.Setenv("SECRETS_DIR", dir)
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-secret", cfg.JWTSecret)
}

func TestLoadConfigProductionRequiresSecrets(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("CI", "")
	t.Setenv("SECRETS_DIR", t.TempDir())
	t.Setenv("DB_DRIVER", "postgres")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "DB_PASSWORD")
}

func TestValidateConfigRejectsUnknownDriver(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("CI", "")

	err := ValidateConfig(&Config{DBDriver: "mysql", JWTSecret: "x", ShortLinkPrefix: "/s/"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DRIVER")
}

func TestGetEnvironment(t *testing.T) {
	tests := []struct {
		ci, env string
		want    Environment
	}{
		{"", "production", Production},
		{"", "PROD", Production},
		{"", " test ", Test},
		{"", "", Development},
		{"", "staging", Development},
		{"true", "production", CI},
	}
	for _, tt := range tests {
		t.Run(tt.ci+"/"+tt.env, func(t *testing.T) {
			t.Setenv("CI", tt.ci)
			t.Setenv("ENV", tt.env)
			assert.Equal(t, tt.want, GetEnvironment())
		})
	}

	assert.False(t, Production.AllowsDemoData())
	assert.True(t, CI.AllowsDemoData())
}

func TestMediaBaseURL(t *testing.T) {
	assert.Equal(t, "https://media.s3.amazonaws.com", mediaBaseURL(&Config{S3Bucket: "media"}))
	assert.Equal(t, "http://localhost:9000/media", mediaBaseURL(&Config{S3Bucket: "media", S3Endpoint: "http://localhost:9000/"}))
	assert.Equal(t, "https://cdn.example.com", mediaBaseURL(&Config{S3Bucket: "media", S3PublicURL: "https://cdn.example.com/"}))
}

func TestNewS3ConfigRequiresBucket(t *testing.T) {
	_, err := NewS3Config(context.Background(), &Config{AWSRegion: "us-east-1"})
	require.Error(t, err)
}

func TestValidateConfigStorageAndPaging(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("CI", "")

	err := ValidateConfig(&Config{DBDriver: "sqlite", JWTSecret: "x", ShortLinkPrefix: "/s/", S3Endpoint: "http://minio:9000", DefaultPageSize: 500})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "S3_BUCKET_NAME")
	assert.Contains(t, err.Error(), "DEFAULT_PAGE_SIZE")
}
