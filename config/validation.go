package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

const maxPageSize = 100

// requiredField names a config value and how to read it
type requiredField struct {
	name  string
	value func(*Config) string
}

var (
	dbPassword = requiredField{"DB_PASSWORD", func(c *Config) string { return c.DBPassword }}
	dbUser     = requiredField{"DB_USER", func(c *Config) string { return c.DBUser }}
	jwtSecret  = requiredField{"JWT_SECRET", func(c *Config) string { return c.JWTSecret }}

	// Environment-specific requirements
	requirements = map[Environment][]requiredField{
		Development: {jwtSecret},
		Test:        {jwtSecret},
		CI:          {dbUser, dbPassword, jwtSecret},
		Production:  {dbUser, dbPassword, jwtSecret},
	}
)

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()

	var errs []string
	for _, field := range requirements[env] {
		if cfg.DBDriver == "sqlite" && (field.name == dbUser.name || field.name == dbPassword.name) {
			continue
		}
		if field.value(cfg) == "" {
			errs = append(errs, ValidationError{Field: field.name, Message: fmt.Sprintf("required in %s environment", env)}.Error())
		}
	}

	if cfg.DBDriver != "postgres" && cfg.DBDriver != "sqlite" {
		errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: "must be postgres or sqlite"}.Error())
	}
	if !strings.HasPrefix(cfg.ShortLinkPrefix, "/") && !strings.HasPrefix(cfg.ShortLinkPrefix, "http") {
		errs = append(errs, ValidationError{Field: "SHORT_LINK_PREFIX", Message: "must be a path or absolute URL"}.Error())
	}

	if cfg.S3Endpoint != "" && cfg.S3Bucket == "" {
		errs = append(errs, ValidationError{Field: "S3_BUCKET_NAME", Message: "required when S3_ENDPOINT is set"}.Error())
	}
	if cfg.DefaultPageSize > maxPageSize {
		errs = append(errs, ValidationError{Field: "DEFAULT_PAGE_SIZE", Message: fmt.Sprintf("must be at most %d", maxPageSize)}.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errs, "\n"))
	}

	return nil
}
