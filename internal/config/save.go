package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Save writes cfg as YAML to path. The file may hold API keys, so it is
// written owner-only.
func Save(path string, cfg Config) error {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := writeFileAtomic(path, b, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// SetProviderKey stores an API key (and optionally a model) for the named
// provider. The first provider given a key becomes the active one.
func (c *Config) SetProviderKey(name string, apiKey string, model string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	apiKey = strings.TrimSpace(apiKey)
	if name == "" {
		return fmt.Errorf("provider name is required")
	}
	if apiKey == "" {
		return fmt.Errorf("api key is required")
	}
	if c.Providers.Connected == nil {
		c.Providers.Connected = map[string]ProviderConfig{}
	}
	p := c.Providers.Connected[name]
	p.APIKey = apiKey
	if m := strings.TrimSpace(model); m != "" {
		p.Model = m
	}
	c.Providers.Connected[name] = p
	if c.Providers.Active == "" {
		c.Providers.Active = name
	}
	return nil
}

// UpdateFile applies fn to the config file at path and saves it. Only the
// values on disk are rewritten; env overrides and defaults are not persisted.
// It returns the freshly loaded config.
func UpdateFile(path string, fn func(*Config) error) (Config, error) {
	var onDisk Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &onDisk); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := fn(&onDisk); err != nil {
		return Config{}, err
	}
	if err := Save(path, onDisk); err != nil {
		return Config{}, err
	}
	return Load(path)
}
