package config

import (
	"os"
	"strings"
)

// Environment selects where configuration comes from and how strictly it is
// validated.
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment reads ENV. CI=true wins over ENV; unknown values fall back
// to development.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}
	return parseEnvironment(os.Getenv("ENV"))
}

func parseEnvironment(s string) Environment {
	switch env := Environment(strings.ToLower(strings.TrimSpace(s))); env {
	case Production, Test, Development, CI:
		return env
	case "prod":
		return Production
	default:
		return Development
	}
}

// AllowsDemoData reports whether the demo seeder may write to the database.
func (e Environment) AllowsDemoData() bool {
	return e != Production
}

// hasLocalDefaults reports whether credentials fall back to local defaults
// when unset.
func (e Environment) hasLocalDefaults() bool {
	return e == Development || e == Test
}
