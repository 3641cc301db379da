package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, loaded, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != "" {
		t.Errorf("expected no .env file, got %s", loaded)
	}
	if cfg.APIURL != "http://localhost:5000" {
		t.Errorf("expected default api url, got %s", cfg.APIURL)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("expected 10s timeout, got %s", cfg.RequestTimeout)
	}
	if len(cfg.FeedOrigins) != 1 || cfg.FeedOrigins[0] != "*" {
		t.Errorf("expected wildcard origins, got %v", cfg.FeedOrigins)
	}
	if cfg.FeedAddr != "" {
		t.Errorf("expected feed disabled by default, got %q", cfg.FeedAddr)
	}
}

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("RINK_API_URL", "http://bench.local:8000")
	t.Setenv("RINK_REQUEST_TIMEOUT", "3s")
	t.Setenv("RINK_FEED_ORIGINS", "http://obs.local,http://localhost:3000")

	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://bench.local:8000" {
		t.Errorf("expected api url from env, got %s", cfg.APIURL)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Errorf("expected 3s timeout, got %s", cfg.RequestTimeout)
	}
	if len(cfg.FeedOrigins) != 2 {
		t.Errorf("expected 2 origins, got %v", cfg.FeedOrigins)
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("RINK_FEED_ADDR=127.0.0.1:9100\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	// godotenv sets the variable for the whole process; clear it afterwards
	t.Setenv("RINK_FEED_ADDR", "")
	os.Unsetenv("RINK_FEED_ADDR")

	cfg, loaded, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != ".env" {
		t.Errorf("expected .env to be loaded, got %q", loaded)
	}
	if cfg.FeedAddr != "127.0.0.1:9100" {
		t.Errorf("expected feed addr from .env, got %q", cfg.FeedAddr)
	}
}

func TestLoadBadTimeout(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("RINK_REQUEST_TIMEOUT", "soon")

	_, _, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestDefaultsMatchEnvDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	def := Defaults()
	if def.APIURL != cfg.APIURL || def.RequestTimeout != cfg.RequestTimeout || def.LogLevel != cfg.LogLevel {
		t.Errorf("expected Defaults to match env defaults, got %+v vs %+v", def, cfg)
	}
}

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore cwd: %v", err)
		}
	})
}
