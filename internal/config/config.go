// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
)

// Environment is the deployment environment named by DDA_ENV.
type Environment string

const (
	EnvironmentProduction Environment = "PROD"
	EnvironmentLocal      Environment = "LOCAL"
)

// UnmarshalText accepts only the known environments.
func (e *Environment) UnmarshalText(text []byte) error {
	switch v := Environment(text); v {
	case EnvironmentProduction, EnvironmentLocal:
		*e = v
		return nil
	default:
		return fmt.Errorf("unknown environment %q (want PROD or LOCAL)", string(text))
	}
}

// Config holds the whole application configuration.
// It is read once at startup and treated as immutable.
type Config struct {
	Env   Environment `env:"DDA_ENV" envDefault:"LOCAL"`
	Debug bool        `env:"DEBUG" envDefault:"false"`

	// Database. DatabaseURL wins; otherwise it is assembled from the DB_* parts.
	DatabaseURL string `env:"DATABASE_URL"`
	DBHost      string `env:"DB_HOST"`
	DBPort      int    `env:"DB_PORT" envDefault:"5432"`
	DBUser      string `env:"DB_USER"`
	DBPassword  string `env:"DB_PASSWORD"`
	DBName      string `env:"DB_NAME"`
	DBSSLMode   string `env:"DB_SSLMODE" envDefault:"disable"`

	// Google
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`

	// Session
	SessionLengthMinutes int           `env:"SESSION_LENGTH_MINUTES" envDefault:"15"`
	SessionSweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"1h"`

	// Rate limit (requests per minute)
	RateLimitGeneral int `env:"RATE_LIMIT_GENERAL" envDefault:"120"`
	RateLimitLogin   int `env:"RATE_LIMIT_LOGIN" envDefault:"10"`

	// Server
	ServerPort        string `env:"SERVER_PORT" envDefault:"8080"`
	WorkerMetricsPort string `env:"WORKER_METRICS_PORT" envDefault:"9090"`
	CORSAllowedOrigin string `env:"CORS_ALLOWED_ORIGIN" envDefault:"http://localhost:3000"`
	// TrustProxyHeaders takes the client IP from X-Forwarded-For / X-Real-IP.
	// Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" envDefault:"false"`
}

// Load reads Config from the environment.
// All missing required variables are reported in a single error.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	var missing []string

	if cfg.GoogleClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}
	if cfg.GoogleClientSecret == "" {
		missing = append(missing, "GOOGLE_CLIENT_SECRET")
	}

	if cfg.DatabaseURL == "" {
		if cfg.DBHost == "" {
			missing = append(missing, "DB_HOST")
		}
		if cfg.DBUser == "" {
			missing = append(missing, "DB_USER")
		}
		if cfg.DBName == "" {
			missing = append(missing, "DB_NAME")
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	if cfg.SessionLengthMinutes <= 0 {
		return nil, fmt.Errorf("SESSION_LENGTH_MINUTES must be positive, got %d", cfg.SessionLengthMinutes)
	}
	if cfg.RateLimitGeneral <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_GENERAL must be positive, got %d", cfg.RateLimitGeneral)
	}
	if cfg.RateLimitLogin <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_LOGIN must be positive, got %d", cfg.RateLimitLogin)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = cfg.assembleDatabaseURL()
	}

	return cfg, nil
}

// SessionLength is the lifetime of a newly issued session token.
func (c *Config) SessionLength() time.Duration {
	return time.Duration(c.SessionLengthMinutes) * time.Minute
}

// IsProduction reports whether DDA_ENV is PROD.
func (c *Config) IsProduction() bool {
	return c.Env == EnvironmentProduction
}

// DebugLogging is on for local runs or when DEBUG is set.
func (c *Config) DebugLogging() bool {
	return c.Env == EnvironmentLocal || c.Debug
}

func (c *Config) assembleDatabaseURL() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort)),
		Path:   "/" + c.DBName,
	}
	if c.DBPassword != "" {
		u.User = url.UserPassword(c.DBUser, c.DBPassword)
	} else {
		u.User = url.User(c.DBUser)
	}
	q := url.Values{}
	q.Set("sslmode", c.DBSSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
