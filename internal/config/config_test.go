package config

import (
	"strings"
	"testing"
	"time"
)

func TestParseEnvDefaults(t *testing.T) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != "8080" || cfg.StoreDriver != DriverSQLite {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.TypingDelay != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s typing delay, got %s", cfg.TypingDelay)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Fatalf("unexpected origins %v", cfg.AllowedOrigins)
	}
}

func TestParseEnvPrefixed(t *testing.T) {
	t.Setenv("SANTAVERSE_PORT", "9090")
	t.Setenv("SANTAVERSE_STORE_DRIVER", "memory")
	t.Setenv("SANTAVERSE_TYPING_DELAY", "10ms")
	t.Setenv("SANTAVERSE_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Addr() != ":9090" || cfg.StoreDriver != DriverMemory || cfg.TypingDelay != 10*time.Millisecond {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins %v", cfg.AllowedOrigins)
	}
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("SANTAVERSE_GALLERY_QUOTA_BYTES", "lots")

	var cfg Config
	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := Config{StoreDriver: DriverSQLite, SQLitePath: "x.db"}

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"sqlite ok", func(*Config) {}, ""},
		{"memory ok", func(c *Config) { c.StoreDriver = DriverMemory }, ""},
		{"postgres without dsn", func(c *Config) { c.StoreDriver = DriverPostgres }, "POSTGRES_DSN"},
		{"postgres with dsn", func(c *Config) {
			c.StoreDriver = DriverPostgres
			c.PostgresDSN = "postgres://localhost/santa"
		}, ""},
		{"unknown driver", func(c *Config) { c.StoreDriver = "redis" }, "unknown store driver"},
		{"negative quota", func(c *Config) { c.GalleryQuotaBytes = -1 }, "quota"},
		{"negative delay", func(c *Config) { c.TypingDelay = -time.Second }, "typing delay"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}
