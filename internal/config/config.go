// Package config reads runtime settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"sqlite"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"santaverse.db"`
	PostgresDSN string `env:"POSTGRES_DSN"`
	// Total bytes of shared images the gallery may hold; 0 disables the limit.
	GalleryQuotaBytes int64 `env:"GALLERY_QUOTA_BYTES" envDefault:"5242880"`

	TypingDelay time.Duration `env:"TYPING_DELAY" envDefault:"1500ms"`
	OverlayPath string        `env:"OVERLAY_PATH" envDefault:"assets/santa.png"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads .env (when present) and the environment, then validates.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks combinations the env parser cannot.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%sSQLITE_PATH must be set for the sqlite driver", EnvPrefix)
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%sPOSTGRES_DSN must be set for the postgres driver", EnvPrefix)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	if c.GalleryQuotaBytes < 0 {
		return fmt.Errorf("gallery quota must not be negative, got %d", c.GalleryQuotaBytes)
	}
	if c.TypingDelay < 0 {
		return fmt.Errorf("typing delay must not be negative, got %s", c.TypingDelay)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}
