// Package testsupport provides shared fixtures for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"slidespeaker/internal/config"
	"slidespeaker/internal/prefs"
)

// NewConfig produces a config seeded with a unique temp prefs path per test.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Backend.BaseURL = "http://127.0.0.1:0"
	cfg.Prefs.DBPath = filepath.Join(t.TempDir(), "prefs.db")
	return &cfg
}

// MustOpenPrefs opens a prefs.Store for tests and registers cleanup.
func MustOpenPrefs(t testing.TB, cfg *config.Config) *prefs.Store {
	t.Helper()

	store, err := prefs.Open(cfg.Prefs.DBPath)
	if err != nil {
		t.Fatalf("prefs.Open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close prefs store: %v", err)
		}
	})
	return store
}
