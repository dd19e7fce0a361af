package config

import (
	"os"
	"strings"
)

// Environment represents the current runtime environment
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment determines the current environment.
// CI=true always wins over ENV.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}
	return ParseEnvironment(os.Getenv("ENV"))
}

// ParseEnvironment maps a free-form name onto a known environment, defaulting to development.
func ParseEnvironment(name string) Environment {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "production", "prod":
		return Production
	case "test":
		return Test
	case "ci":
		return CI
	default:
		return Development
	}
}

func (e Environment) String() string {
	return string(e)
}

// IsProduction returns true for the production environment
func (e Environment) IsProduction() bool {
	return e == Production
}

// UsesSecretsDir reports whether sensitive values are read from Docker secrets.
// CI injects them as plain environment variables instead.
func (e Environment) UsesSecretsDir() bool {
	return e != CI
}
