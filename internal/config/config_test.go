package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"slidespeaker/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists {
		t.Fatal("missing file reported as existing")
	}
	if resolved == "" {
		t.Fatal("resolved path empty")
	}
	if cfg.Backend.BaseURL != "http://127.0.0.1:8000" {
		t.Fatalf("unexpected default base url: %q", cfg.Backend.BaseURL)
	}
	if cfg.Cache.StaleSeconds != 30 || cfg.Cache.PollSeconds != 3 {
		t.Fatalf("unexpected cache defaults: %+v", cfg.Cache)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadOverridesAndNormalizes(t *testing.T) {
	path := writeConfig(t, `
[backend]
base_url = "https://speaker.example.com/"
timeout_seconds = 30

[cache]
stale_seconds = 10

[logging]
format = "JSON"
level = "DEBUG"
`)
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists {
		t.Fatal("existing file reported missing")
	}
	if cfg.Backend.BaseURL != "https://speaker.example.com" {
		t.Fatalf("trailing slash kept: %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.TimeoutSeconds != 30 {
		t.Fatalf("timeout = %d", cfg.Backend.TimeoutSeconds)
	}
	if cfg.Cache.StaleSeconds != 10 {
		t.Fatalf("stale_seconds = %d", cfg.Cache.StaleSeconds)
	}
	// Untouched cache settings keep their defaults.
	if cfg.Cache.PollSeconds != 3 {
		t.Fatalf("poll_seconds = %d", cfg.Cache.PollSeconds)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging not normalized: %+v", cfg.Logging)
	}
}

func TestLoadTokenFromEnvironment(t *testing.T) {
	t.Setenv("SLIDESPEAKER_API_TOKEN", "  secret  ")
	path := writeConfig(t, "[backend]\nbase_url = \"http://localhost:8000\"\n")
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend.APIToken != "secret" {
		t.Fatalf("token = %q", cfg.Backend.APIToken)
	}
}

func TestLoadConfigTokenBeatsEnvironment(t *testing.T) {
	t.Setenv("SLIDESPEAKER_API_TOKEN", "env-token")
	path := writeConfig(t, "[backend]\napi_token = \"file-token\"\n")
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend.APIToken != "file-token" {
		t.Fatalf("token = %q", cfg.Backend.APIToken)
	}
}

func TestLoadRejectsBadBaseURL(t *testing.T) {
	path := writeConfig(t, "[backend]\nbase_url = \"ftp://example.com\"\n")
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for non-http scheme")
	}
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	path := writeConfig(t, "[logging]\nlevel = \"verbose\"\n")
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "logging.level") {
		t.Fatalf("err = %v, want logging.level complaint", err)
	}
}

func TestLoadExpandsPrefsPath(t *testing.T) {
	path := writeConfig(t, "[prefs]\ndb_path = \"~/state/prefs.db\"\n")
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if strings.HasPrefix(cfg.Prefs.DBPath, "~") || !filepath.IsAbs(cfg.Prefs.DBPath) {
		t.Fatalf("path not expanded: %q", cfg.Prefs.DBPath)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("create sample: %v", err)
	}
	// The sample must itself load cleanly.
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample does not load: %v", err)
	}
}
