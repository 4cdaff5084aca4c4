package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"trello-track/internal/config"
)

// clearEnv blanks the Trello variables; empty values are treated as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvKey, "")
	t.Setenv(config.EnvToken, "")
	t.Setenv(config.EnvCard, "")
	t.Setenv(config.EnvDebug, "")
}

func writeCreds(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, config.CredentialsFile), []byte(body), 0600); err != nil {
		t.Fatalf("failed to write credentials: %v", err)
	}
}

func TestLoadFrom_NoSources(t *testing.T) {
	clearEnv(t)

	cfg, err := config.LoadFrom(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HasCredentials() {
		t.Error("expected no credentials")
	}
	if len(cfg.Sources) != 0 {
		t.Errorf("expected no sources, got %v", cfg.Sources)
	}
	if !errors.Is(cfg.Validate(), config.ErrMissingCredentials) {
		t.Errorf("expected ErrMissingCredentials, got %v", cfg.Validate())
	}
}

func TestLoadFrom_HomeFile(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	writeCreds(t, home, `{"key": "home-key", "token": "home-token"}`)

	cfg, err := config.LoadFrom(home, t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Key != "home-key" || cfg.Token != "home-token" {
		t.Errorf("expected home credentials, got key=%q token=%q", cfg.Key, cfg.Token)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestLoadFrom_WorkDirOverridesHome(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	work := t.TempDir()
	writeCreds(t, home, `{"key": "home-key", "token": "home-token"}`)
	writeCreds(t, work, `{"token": "work-token"}`)

	cfg, err := config.LoadFrom(home, work)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Key != "home-key" {
		t.Errorf("expected key from home file, got %q", cfg.Key)
	}
	if cfg.Token != "work-token" {
		t.Errorf("expected token from work file, got %q", cfg.Token)
	}
	if len(cfg.Sources) != 2 {
		t.Errorf("expected 2 sources, got %v", cfg.Sources)
	}
}

func TestLoadFrom_EnvOverridesFiles(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	writeCreds(t, home, `{"key": "home-key", "token": "home-token"}`)
	t.Setenv(config.EnvKey, "env-key")
	t.Setenv(config.EnvCard, "abc123")

	cfg, err := config.LoadFrom(home, t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Key != "env-key" {
		t.Errorf("expected key from env, got %q", cfg.Key)
	}
	if cfg.Token != "home-token" {
		t.Errorf("expected token from home file, got %q", cfg.Token)
	}
	if cfg.Card != "abc123" {
		t.Errorf("expected card from env, got %q", cfg.Card)
	}
}

func TestLoadFrom_InvalidJSON(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	writeCreds(t, home, `{not json`)

	if _, err := config.LoadFrom(home, t.TempDir()); err == nil {
		t.Error("expected error for invalid credentials file")
	}
}

func TestValidate_MissingToken(t *testing.T) {
	cfg := &config.Config{Key: "k"}
	err := cfg.Validate()
	if !errors.Is(err, config.ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
	if want := config.AppKeyURL; !strings.Contains(err.Error(), want) {
		t.Errorf("expected message to mention %s, got %q", want, err.Error())
	}
}

func TestLoadFrom_DebugFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvDebug, "true")

	cfg, err := config.LoadFrom(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Debug {
		t.Error("expected debug to be enabled")
	}
}
