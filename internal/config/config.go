package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all process configuration, loaded once at startup from
// environment variables. The JWT secret is immutable for the process
// lifetime; rotating it requires a redeploy and invalidates every
// outstanding token.
type Config struct {
	Port           string        `env:"PORT" envDefault:"8080"`
	DatabaseDriver string        `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabaseDSN    string        `env:"DATABASE_DSN" envDefault:"taskchat.db"`
	JWTSecret      string        `env:"JWT_SECRET"`
	TokenTTL       time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	BcryptCost     int           `env:"BCRYPT_COST" envDefault:"12"`
	LogLevel       slog.Level    `env:"LOG_LEVEL" envDefault:"info"`
	CORSOrigins    []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	AuthRateLimit  float64       `env:"AUTH_RATE_LIMIT" envDefault:"1"`
	AuthRateBurst  float64       `env:"AUTH_RATE_BURST" envDefault:"10"`

	// MCPToken is only read by the MCP server binary. It is an ordinary
	// user token obtained via POST /auth/login.
	MCPToken string `env:"MCP_TOKEN"`
}

// Load parses configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters for HMAC-SHA256 security")
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 14 {
		return nil, fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", cfg.BcryptCost)
	}
	if cfg.DatabaseDriver != "sqlite" && cfg.DatabaseDriver != "postgres" {
		return nil, fmt.Errorf("DATABASE_DRIVER must be sqlite or postgres, got %q", cfg.DatabaseDriver)
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}

	return cfg, nil
}
