// Package config provides server configuration loaded from environment variables.
package config

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all carpool server configuration.
type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	Port        string `envconfig:"PORT" default:"8080"`
	ServerID    string `envconfig:"SERVER_ID" default:"server-1"`

	MongoURI      string `envconfig:"MONGODB_URI" default:"mongodb://localhost:27017"`
	MongoDatabase string `envconfig:"MONGODB_DATABASE" default:"carpool"`

	// RedisAddr is optional; when empty the server runs single-node with
	// in-memory reset tokens and an in-memory notification hub.
	RedisAddr string `envconfig:"REDIS_ADDR"`

	JWTSecret   string `envconfig:"JWT_SECRET"`
	EntraSecret string `envconfig:"ENTRA_SECRET"`

	// AdminEmails lists accounts granted the admin role on federated login.
	AdminEmails []string `envconfig:"ADMIN_EMAILS"`

	AccessTokenTTL  time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"15m"`
	RefreshTokenTTL time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"720h"`
	ResetTokenTTL   time.Duration `envconfig:"RESET_TOKEN_TTL" default:"1h"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks required values. JWT_SECRET may only be defaulted outside
// production.
func (c *Config) Validate() error {
	if c.MongoDatabase == "" {
		return errors.New("MONGODB_DATABASE is required")
	}
	if c.IsProduction() && c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required in production")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 || c.ResetTokenTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
