package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

var userHomeDir = os.UserHomeDir

// Dir returns the directory holding the global config, log and database.
func Dir() (string, error) {
	home, err := userHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	if home == "" {
		return "", errors.New("resolve home directory: empty path")
	}
	return filepath.Join(home, ".accomplish"), nil
}

// Path resolves the config file path. An explicit path wins, then
// ACCOMPLISH_CONFIG, then ~/.accomplish/config.yaml.
func Path(explicit string) (string, error) {
	if p := strings.TrimSpace(explicit); p != "" {
		return p, nil
	}
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config file at path (missing is fine) and applies
// ACCOMPLISH_* environment overrides. Precedence per key: env > file > defaults.
func Load(path string) (Config, error) {
	defaults := DefaultConfig()
	baseDir := filepath.Dir(path)

	v := viper.New()
	v.SetDefault("e2e", defaults.E2E)
	v.SetDefault("locale", defaults.Locale)
	v.SetDefault("store.path", filepath.Join(baseDir, DefaultStoreFile))
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.file", defaults.Log.File)
	v.SetDefault("voice.enabled", defaults.Voice.Enabled)
	v.SetDefault("tui.refreshIntervalMillis", defaults.TUI.RefreshIntervalMillis)
	v.SetDefault("providers.active", "")

	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("stat config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return normalize(cfg, baseDir), nil
}

func normalize(cfg Config, baseDir string) Config {
	cfg.Locale = strings.ToLower(strings.TrimSpace(cfg.Locale))
	if cfg.Locale == "" {
		cfg.Locale = DefaultLocale
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	cfg.Log.File = expandPath(cfg.Log.File, baseDir)
	cfg.Store.Path = expandPath(cfg.Store.Path, baseDir)
	cfg.TUI.RefreshIntervalMillis = clampInt(cfg.TUI.RefreshIntervalMillis, MinRefreshIntervalMillis, MaxRefreshIntervalMillis)
	cfg.Providers.Active = strings.ToLower(strings.TrimSpace(cfg.Providers.Active))

	connected := make(map[string]ProviderConfig, len(cfg.Providers.Connected))
	for name, p := range cfg.Providers.Connected {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		p.APIKey = strings.TrimSpace(p.APIKey)
		p.Model = strings.TrimSpace(p.Model)
		p.BaseURL = strings.TrimSpace(p.BaseURL)
		connected[name] = p
	}
	cfg.Providers.Connected = connected

	skills := make([]SkillConfig, 0, len(cfg.Skills))
	for _, s := range cfg.Skills {
		s.Command = strings.TrimSpace(s.Command)
		if s.Command == "" {
			continue
		}
		if !strings.HasPrefix(s.Command, "/") {
			s.Command = "/" + s.Command
		}
		skills = append(skills, s)
	}
	cfg.Skills = skills
	return cfg
}

// ProviderNames returns the configured provider names in sorted order.
func (c Config) ProviderNames() []string {
	names := make([]string, 0, len(c.Providers.Connected))
	for name := range c.Providers.Connected {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func expandPath(path string, baseDir string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "~") {
		if home, err := userHomeDir(); err == nil && home != "" {
			return filepath.Join(home, path[1:])
		}
	}
	if filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}

func clampInt(value int, min int, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
