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

// ValidateConfig checks every rule and reports all violations at once
func ValidateConfig(cfg *Config) error {
	var problems []ValidationError

	if cfg.ServerPort == "" {
		problems = append(problems, ValidationError{"server_port", "is required"})
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" {
			problems = append(problems, ValidationError{"db_host", "is required for postgres"})
		}
		if cfg.DBName == "" {
			problems = append(problems, ValidationError{"db_name", "is required for postgres"})
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			problems = append(problems, ValidationError{"sqlite_path", "is required for sqlite"})
		}
	default:
		problems = append(problems, ValidationError{"db_driver", fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	if cfg.JWTSecret == "" {
		problems = append(problems, ValidationError{"jwt_secret", "is required"})
	}
	if cfg.TokenTTL <= 0 {
		problems = append(problems, ValidationError{"token_ttl", "must be positive"})
	}
	if cfg.LLMTimeout <= 0 {
		problems = append(problems, ValidationError{"llm_timeout", "must be positive"})
	}
	if cfg.RateLimitRequests < 0 || (cfg.RateLimitRequests > 0 && cfg.RateLimitWindow <= 0) {
		problems = append(problems, ValidationError{"rate_limit", "requests must be >= 0 with a positive window"})
	}

	if cfg.PasswordResetTTL <= 0 {
		problems = append(problems, ValidationError{"password_reset_ttl", "must be positive"})
	}
	if cfg.SMTPHost != "" {
		if cfg.SMTPPort == "" {
			problems = append(problems, ValidationError{"smtp_port", "is required when smtp_host is set"})
		}
		if cfg.EmailFrom == "" {
			problems = append(problems, ValidationError{"email_from", "is required when smtp_host is set"})
		}
	}

	if cfg.Env.IsProduction() {
		if cfg.JWTSecret == DevJWTSecret {
			problems = append(problems, ValidationError{"jwt_secret", "development secret is not allowed in production"})
		}
		if cfg.DBDriver == "postgres" && cfg.DBPassword == "" {
			problems = append(problems, ValidationError{"db_password", "is required in production"})
		}
	}

	if len(problems) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(problems))
	for _, p := range problems {
		msgs = append(msgs, p.Error())
	}
	return fmt.Errorf("%d problem(s):\n%s", len(problems), strings.Join(msgs, "\n"))
}
