// Package config loads service configuration from YAML with environment
// variable overrides.
package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the login-mail service.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	SES       SESConfig       `yaml:"ses"`
	Auth      AuthConfig      `yaml:"auth"`
	Admission AdmissionConfig `yaml:"admission"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig holds the Redis connection for the admission counter.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// SESConfig holds AWS SES credentials and the sender address.
type SESConfig struct {
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
	From      string `yaml:"from"`
}

// AuthConfig holds the token secret and lifetime.
type AuthConfig struct {
	// Secret derives the token encryption key. Rotating it invalidates
	// every outstanding token.
	Secret string `yaml:"secret"`

	// TokenMinutes is how long an issued token (and the per-email send
	// cooldown) stays live.
	TokenMinutes int `yaml:"token_minutes"`

	// VerifyURL is the link prefix the token is appended to, e.g.
	// "https://example.com/auth/verify?token=".
	VerifyURL string `yaml:"verify_url"`

	// AdminToken guards the ban administration endpoints.
	AdminToken string `yaml:"admin_token"`
}

// AdmissionConfig holds the per-IP admission window.
type AdmissionConfig struct {
	Threshold     int `yaml:"threshold"`
	WindowMinutes int `yaml:"window_minutes"`

	// TrustProxy enables X-Forwarded-For resolution. Only set this behind a
	// trusted reverse proxy; otherwise the client controls its own IP.
	TrustProxy bool `yaml:"trust_proxy"`
}

// Load reads and parses the YAML config at path, applying defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Redis.URL == "" {
		cfg.Redis.URL = "redis://localhost:6379/0"
	}
	if cfg.SES.Region == "" {
		cfg.SES.Region = "us-east-1"
	}
	if cfg.Auth.TokenMinutes == 0 {
		cfg.Auth.TokenMinutes = 10
	}
	if cfg.Admission.Threshold == 0 {
		cfg.Admission.Threshold = 3
	}
	if cfg.Admission.WindowMinutes == 0 {
		cfg.Admission.WindowMinutes = 10
	}

	return &cfg, nil
}

// LoadFromEnv loads the YAML config and applies environment overrides.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("AWS_SES_ACCESS_KEY"); v != "" {
		cfg.SES.AccessKey = v
	}
	if v := os.Getenv("AWS_SES_SECRET_KEY"); v != "" {
		cfg.SES.SecretKey = v
	}
	if v := os.Getenv("AWS_SES_REGION"); v != "" {
		cfg.SES.Region = v
	}
	if v := os.Getenv("MAIL_FROM"); v != "" {
		cfg.SES.From = v
	}
	if v := os.Getenv("AUTH_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv("AUTH_VERIFY_URL"); v != "" {
		cfg.Auth.VerifyURL = v
	}
	if v := os.Getenv("ADMIN_TOKEN"); v != "" {
		cfg.Auth.AdminToken = v
	}

	return cfg, nil
}

// Validate checks the settings the service cannot run without.
func (c *Config) Validate() error {
	if c.Auth.Secret == "" {
		return errors.New("auth.secret is required")
	}
	if c.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if c.Auth.VerifyURL == "" {
		return errors.New("auth.verify_url is required")
	}
	if c.SES.From == "" {
		return errors.New("ses.from is required")
	}
	return nil
}
