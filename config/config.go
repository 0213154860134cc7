package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string

	// Short links
	ShortLinkPrefix      string
	ShortCodeMaxAttempts int

	DefaultPageSize int

	// Rate limits; a negative value disables the limiter
	RecipeWritesPerHour int
	ShortLinksPerMinute int
	ShortLinkCacheTTL   time.Duration

	// Image storage
	S3Bucket    string
	S3Endpoint  string
	S3PublicURL string
	AWSRegion   string

	CORSOrigins []string

	LogLevel  string
	LogFormat string
}

const (
	defaultShortLinkPrefix      = "/s/"
	defaultShortCodeMaxAttempts = 10
	defaultPageSize             = 6
	defaultRecipeWritesPerHour  = 10
	defaultShortLinksPerMinute  = 120
	defaultShortLinkCacheTTL    = time.Hour
)

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{}

	// Load configuration based on environment
	switch env {
	case CI:
		loadCIConfig(cfg)
	case Development, Test:
		loadDevConfig(cfg)
	case Production:
		loadProdConfig(cfg)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	applyDefaults(cfg, env)

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadCIConfig loads configuration for CI from environment variables only
func loadCIConfig(cfg *Config) {
	loadCommon(cfg)
	cfg.DBUser = os.Getenv("DB_USER")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
}

// loadDevConfig reads environment variables, letting docker secrets override
// sensitive values when a secrets directory is mounted
func loadDevConfig(cfg *Config) {
	loadCommon(cfg)
	cfg.DBUser = valueOrSecret("DB_USER", "db_user")
	cfg.DBPassword = valueOrSecret("DB_PASSWORD", "db_password")
	cfg.JWTSecret = valueOrSecret("JWT_SECRET", "jwt_secret")
	cfg.RedisPassword = valueOrSecret("REDIS_PASSWORD", "redis_password")
}

// loadProdConfig loads sensitive values for production using ONLY Docker secrets
func loadProdConfig(cfg *Config) {
	loadCommon(cfg)
	cfg.DBUser = readSecret("db_user")
	cfg.DBPassword = readSecret("db_password")
	cfg.JWTSecret = readSecret("jwt_secret")
	cfg.RedisPassword = readSecret("redis_password")
}

func loadCommon(cfg *Config) {
	cfg.ServerPort = os.Getenv("SERVER_PORT")
	cfg.ServerHost = os.Getenv("SERVER_HOST")
	cfg.DBDriver = os.Getenv("DB_DRIVER")
	cfg.DBHost = os.Getenv("DB_HOST")
	cfg.DBPort = os.Getenv("DB_PORT")
	cfg.DBName = os.Getenv("DB_NAME")
	cfg.DBSSLMode = os.Getenv("DB_SSL_MODE")
	cfg.DBPath = os.Getenv("DB_PATH")
	cfg.RedisHost = os.Getenv("REDIS_HOST")
	cfg.RedisPort = os.Getenv("REDIS_PORT")
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.RedisDB = 0 // This is a constant, not a secret
	cfg.ShortLinkPrefix = os.Getenv("SHORT_LINK_PREFIX")
	cfg.ShortCodeMaxAttempts = intEnv("SHORT_CODE_MAX_ATTEMPTS")
	cfg.DefaultPageSize = intEnv("DEFAULT_PAGE_SIZE")
	cfg.RecipeWritesPerHour = intEnv("RECIPE_WRITES_PER_HOUR")
	cfg.ShortLinksPerMinute = intEnv("SHORT_LINKS_PER_MINUTE")
	if ttl, err := time.ParseDuration(os.Getenv("SHORT_LINK_CACHE_TTL")); err == nil {
		cfg.ShortLinkCacheTTL = ttl
	}
	cfg.S3Bucket = os.Getenv("S3_BUCKET_NAME")
	cfg.S3Endpoint = os.Getenv("S3_ENDPOINT")
	cfg.S3PublicURL = os.Getenv("S3_PUBLIC_URL")
	cfg.AWSRegion = os.Getenv("AWS_REGION")
	cfg.LogLevel = os.Getenv("LOG_LEVEL")
	cfg.LogFormat = os.Getenv("LOG_FORMAT")
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}
}

// applyDefaults fills values that have a sane local default. Sensitive values
// only get a default outside CI and production.
func applyDefaults(cfg *Config, env Environment) {
	setDefault(&cfg.ServerPort, "8080")
	setDefault(&cfg.ServerHost, "0.0.0.0")
	setDefault(&cfg.DBDriver, "postgres")
	setDefault(&cfg.DBHost, "localhost")
	setDefault(&cfg.DBPort, "5432")
	setDefault(&cfg.DBName, "foodgram")
	setDefault(&cfg.DBSSLMode, "disable")
	setDefault(&cfg.DBPath, "foodgram.db")
	setDefault(&cfg.RedisHost, "localhost")
	setDefault(&cfg.RedisPort, "6379")
	setDefault(&cfg.ShortLinkPrefix, defaultShortLinkPrefix)
	setDefault(&cfg.AWSRegion, "us-east-1")
	setDefault(&cfg.LogLevel, "info")
	setDefault(&cfg.LogFormat, "json")
	if cfg.ShortCodeMaxAttempts <= 0 {
		cfg.ShortCodeMaxAttempts = defaultShortCodeMaxAttempts
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = defaultPageSize
	}
	if cfg.RecipeWritesPerHour == 0 {
		cfg.RecipeWritesPerHour = defaultRecipeWritesPerHour
	}
	if cfg.ShortLinksPerMinute == 0 {
		cfg.ShortLinksPerMinute = defaultShortLinksPerMinute
	}
	if cfg.ShortLinkCacheTTL <= 0 {
		cfg.ShortLinkCacheTTL = defaultShortLinkCacheTTL
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"http://localhost:3000"}
	}

	if env.hasLocalDefaults() {
		setDefault(&cfg.DBUser, "postgres")
		setDefault(&cfg.DBPassword, "postgres")
		setDefault(&cfg.JWTSecret, "your-secret-key")
	}
}

// DSN returns the lib/pq connection string for the configured postgres database
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

func intEnv(name string) int {
	n, err := strconv.Atoi(os.Getenv(name))
	if err != nil {
		return 0
	}
	return n
}

func valueOrSecret(envName, secretName string) string {
	if v := readSecret(secretName); v != "" {
		return v
	}
	return os.Getenv(envName)
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
