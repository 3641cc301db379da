package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting
type Config struct {
	APIURL         string        `env:"RINK_API_URL" envDefault:"http://localhost:5000"`
	RequestTimeout time.Duration `env:"RINK_REQUEST_TIMEOUT" envDefault:"10s"`
	JournalDSN     string        `env:"RINK_JOURNAL_DSN"`
	FeedAddr       string        `env:"RINK_FEED_ADDR"`
	FeedOrigins    []string      `env:"RINK_FEED_ORIGINS" envSeparator:"," envDefault:"*"`
	ExportDir      string        `env:"RINK_EXPORT_DIR"`
	LogLevel       string        `env:"RINK_LOG_LEVEL" envDefault:"info"`
	LogDev         bool          `env:"RINK_LOG_DEV" envDefault:"false"`
}

// envPaths are tried in order; the first readable file wins
var envPaths = []string{".env", "../.env"}

// LoadDotEnv loads the first .env file found and reports its path.
// Variables already set in the environment are not overridden.
func LoadDotEnv() string {
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			return path
		}
	}
	return ""
}

// Defaults returns the settings used when the environment cannot be parsed
func Defaults() *Config {
	return &Config{
		APIURL:         "http://localhost:5000",
		RequestTimeout: 10 * time.Second,
		FeedOrigins:    []string{"*"},
		LogLevel:       "info",
	}
}

// Load reads .env (if any) and parses the environment
func Load() (*Config, string, error) {
	loaded := LoadDotEnv()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, loaded, fmt.Errorf("parse env: %w", err)
	}
	if cfg.APIURL == "" {
		return nil, loaded, fmt.Errorf("RINK_API_URL must not be empty")
	}
	if cfg.RequestTimeout <= 0 {
		return nil, loaded, fmt.Errorf("RINK_REQUEST_TIMEOUT must be positive, got %s", cfg.RequestTimeout)
	}

	return &cfg, loaded, nil
}
