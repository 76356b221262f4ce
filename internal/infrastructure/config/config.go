package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds settings for the dashboard process.
type Config struct {
	// APIURL is the base URL of the order backend.
	APIURL string `env:"API_URL, default=http://localhost:3000"`
	// TokenFile is where the access token is persisted between runs.
	// Empty means in-memory only (logged out on restart).
	TokenFile string `env:"TOKEN_FILE, default=.orderdesk-token"`
	// ReconnectDelay is the pause before reconnecting the event stream
	// after a rejected connection (possible auth failure).
	ReconnectDelay time.Duration `env:"RECONNECT_DELAY, default=5s"`

	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogFile   string `env:"LOG_FILE,   default=orderdesk.log"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`
}

// StubConfig holds settings for the local stub backend.
type StubConfig struct {
	Port      string `env:"PORT,       default=3000"`
	JWTSecret string `env:"JWT_SECRET, default=orderdesk-dev-secret"`

	// AccessTokenTTL is deliberately short so the refresh path is
	// exercised during development.
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL,  default=5m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL, default=168h"`

	// Demo enables a background generator that creates and advances
	// orders so the dashboard has live traffic to show.
	Demo         bool          `env:"DEMO,          default=true"`
	DemoInterval time.Duration `env:"DEMO_INTERVAL, default=15s"`

	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=true"`
}

// Load reads dashboard configuration from environment variables.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// LoadStub reads stub server configuration from environment variables.
func LoadStub(ctx context.Context) (*StubConfig, error) {
	var cfg StubConfig
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
