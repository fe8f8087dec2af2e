package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Locale != DefaultLocale {
		t.Fatalf("locale = %q, want %q", cfg.Locale, DefaultLocale)
	}
	if cfg.E2E {
		t.Fatalf("expected e2e to default to false")
	}
	if cfg.Store.Path != filepath.Join(dir, DefaultStoreFile) {
		t.Fatalf("store path = %q", cfg.Store.Path)
	}
	if cfg.Log.File != filepath.Join(dir, DefaultLogFile) {
		t.Fatalf("log file = %q", cfg.Log.File)
	}
	if cfg.TUI.RefreshIntervalMillis != DefaultRefreshIntervalMillis {
		t.Fatalf("refresh = %d, want %d", cfg.TUI.RefreshIntervalMillis, DefaultRefreshIntervalMillis)
	}
	if len(cfg.Providers.Connected) != 0 {
		t.Fatalf("expected no providers, got %#v", cfg.Providers.Connected)
	}
}

func TestLoadReadsProvidersAndSkills(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
locale: FR
providers:
  active: OpenAI
  connected:
    openai:
      apiKey: " sk-test "
      model: gpt-4o-mini
    anthropic:
      apiKey: ""
skills:
  - command: draft
    description: Draft a reply
  - command: "  "
tui:
  refreshIntervalMillis: 1
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Locale != "fr" {
		t.Fatalf("locale = %q, want fr", cfg.Locale)
	}
	if cfg.Providers.Active != "openai" {
		t.Fatalf("active = %q, want openai", cfg.Providers.Active)
	}
	openai, ok := cfg.Providers.Connected["openai"]
	if !ok || openai.APIKey != "sk-test" || openai.Model != "gpt-4o-mini" {
		t.Fatalf("openai provider = %#v", openai)
	}
	if names := cfg.ProviderNames(); len(names) != 2 || names[0] != "anthropic" || names[1] != "openai" {
		t.Fatalf("provider names = %v", names)
	}
	if len(cfg.Skills) != 1 || cfg.Skills[0].Command != "/draft" {
		t.Fatalf("skills = %#v", cfg.Skills)
	}
	if cfg.TUI.RefreshIntervalMillis != MinRefreshIntervalMillis {
		t.Fatalf("refresh = %d, want clamp to %d", cfg.TUI.RefreshIntervalMillis, MinRefreshIntervalMillis)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("e2e: false\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ACCOMPLISH_E2E", "true")
	t.Setenv("ACCOMPLISH_LOG_LEVEL", "DEBUG")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.E2E {
		t.Fatalf("expected env to enable e2e mode")
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoadInvalidYAMLFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("providers: [\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected invalid yaml to fail")
	}
}

func TestPathPrecedence(t *testing.T) {
	home := t.TempDir()
	stubHomeDir(t, func() (string, error) { return home, nil })
	t.Setenv(EnvConfigPath, "")

	got, err := Path("")
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if want := filepath.Join(home, ".accomplish", "config.yaml"); got != want {
		t.Fatalf("path = %q, want %q", got, want)
	}

	t.Setenv(EnvConfigPath, "/tmp/from-env.yaml")
	got, _ = Path("")
	if got != "/tmp/from-env.yaml" {
		t.Fatalf("path = %q, want env path", got)
	}

	got, _ = Path("/tmp/explicit.yaml")
	if got != "/tmp/explicit.yaml" {
		t.Fatalf("path = %q, want explicit path", got)
	}
}

func TestDirMissingHome(t *testing.T) {
	stubHomeDir(t, func() (string, error) { return "", errors.New("no home") })

	if _, err := Dir(); err == nil {
		t.Fatalf("expected error without home directory")
	}
}

func stubHomeDir(t *testing.T, fn func() (string, error)) {
	t.Helper()
	prev := userHomeDir
	userHomeDir = fn
	t.Cleanup(func() { userHomeDir = prev })
}
