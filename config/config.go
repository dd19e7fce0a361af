package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultSecretsDir = "/run/secrets"

// DevJWTSecret is only accepted outside production.
const DevJWTSecret = "dev-only-jwt-secret"

// Config holds all configuration for the application
type Config struct {
	Env Environment `mapstructure:"-"`

	// Server configuration
	ServerHost  string   `mapstructure:"server_host"`
	ServerPort  string   `mapstructure:"server_port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	LogLevel    string   `mapstructure:"log_level"`

	// Database configuration
	DBDriver      string `mapstructure:"db_driver"`
	DBHost        string `mapstructure:"db_host"`
	DBPort        string `mapstructure:"db_port"`
	DBUser        string `mapstructure:"db_user"`
	DBPassword    string `mapstructure:"db_password"`
	DBName        string `mapstructure:"db_name"`
	DBSSLMode     string `mapstructure:"db_ssl_mode"`
	SQLitePath    string `mapstructure:"sqlite_path"`
	MigrationsDir string `mapstructure:"migrations_dir"`

	// Redis configuration
	RedisURL      string `mapstructure:"redis_url"`
	RedisHost     string `mapstructure:"redis_host"`
	RedisPort     string `mapstructure:"redis_port"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`

	// Session tokens
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`

	// Generation provider
	LLMBaseURL     string        `mapstructure:"llm_base_url"`
	LLMAPIKey      string        `mapstructure:"llm_api_key"`
	LLMModel       string        `mapstructure:"llm_model"`
	LLMTemperature float64       `mapstructure:"llm_temperature"`
	LLMMaxTokens   int           `mapstructure:"llm_max_tokens"`
	LLMTimeout     time.Duration `mapstructure:"llm_timeout"`

	// Generation rate limit
	RateLimitRequests int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window"`

	// Avatar storage
	S3Bucket  string `mapstructure:"s3_bucket"`
	AWSRegion string `mapstructure:"aws_region"`

	// Outgoing mail. An empty SMTP host logs messages instead of sending them.
	SMTPHost         string        `mapstructure:"smtp_host"`
	SMTPPort         string        `mapstructure:"smtp_port"`
	SMTPUsername     string        `mapstructure:"smtp_username"`
	SMTPPassword     string        `mapstructure:"smtp_password"`
	EmailFrom        string        `mapstructure:"email_from"`
	EmailFromName    string        `mapstructure:"email_from_name"`
	FrontendURL      string        `mapstructure:"frontend_url"`
	PasswordResetTTL time.Duration `mapstructure:"password_reset_ttl"`
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	// CI historically exports sensitive values with a TEST_ prefix.
	for _, key := range []string{"db_password", "jwt_secret", "redis_password", "redis_url"} {
		if err := v.BindEnv(key, strings.ToUpper(key), "TEST_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	cfg.Env = env

	if env.UsesSecretsDir() {
		applySecrets(cfg)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("server_port", "8080")
	v.SetDefault("cors_origins", []string{"http://localhost:5173"})
	v.SetDefault("log_level", "info")

	v.SetDefault("db_driver", "postgres")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "healthyrecipes")
	v.SetDefault("db_ssl_mode", "disable")
	v.SetDefault("sqlite_path", "healthyrecipes.db")
	v.SetDefault("migrations_dir", "migrations")

	v.SetDefault("redis_url", "")
	v.SetDefault("redis_host", "localhost")
	v.SetDefault("redis_port", "6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	v.SetDefault("jwt_secret", DevJWTSecret)
	v.SetDefault("token_ttl", 24*time.Hour)

	v.SetDefault("llm_base_url", "https://api.openai.com/v1")
	v.SetDefault("llm_api_key", "")
	v.SetDefault("llm_model", "gpt-4o-mini")
	v.SetDefault("llm_temperature", 0.7)
	v.SetDefault("llm_max_tokens", 1500)
	v.SetDefault("llm_timeout", 60*time.Second)

	v.SetDefault("rate_limit_requests", 10)
	v.SetDefault("rate_limit_window", time.Hour)

	v.SetDefault("s3_bucket", "")
	v.SetDefault("aws_region", "us-east-1")

	v.SetDefault("smtp_host", "")
	v.SetDefault("smtp_port", "587")
	v.SetDefault("smtp_username", "")
	v.SetDefault("smtp_password", "")
	v.SetDefault("email_from", "no-reply@healthyrecipes.local")
	v.SetDefault("email_from_name", "Healthy Recipes")
	v.SetDefault("frontend_url", "http://localhost:5173")
	v.SetDefault("password_reset_ttl", time.Hour)
}

// applySecrets overrides sensitive values with Docker secrets when present
func applySecrets(cfg *Config) {
	if s := readSecret("db_password"); s != "" {
		cfg.DBPassword = s
	}
	if s := readSecret("jwt_secret"); s != "" {
		cfg.JWTSecret = s
	}
	if s := readSecret("redis_password"); s != "" {
		cfg.RedisPassword = s
	}
	if s := readSecret("llm_api_key"); s != "" {
		cfg.LLMAPIKey = s
	}
	if s := readSecret("smtp_username"); s != "" {
		cfg.SMTPUsername = s
	}
	if s := readSecret("smtp_password"); s != "" {
		cfg.SMTPPassword = s
	}
}

// PostgresDSN builds a key/value connection string for the postgres drivers
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// RedisAddr returns host:port for the redis client
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// ListenAddr returns the address the HTTP server binds to
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%s", c.ServerHost, c.ServerPort)
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = defaultSecretsDir
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
