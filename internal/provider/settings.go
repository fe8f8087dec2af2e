package provider

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jbonatakis/accomplish/internal/config"
)

var ErrNoReadyProvider = errors.New("no ready provider")

var lookupEnv = os.LookupEnv

// ConnectedProvider holds the stored credentials for one provider.
type ConnectedProvider struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Settings is the provider configuration as seen by the home screen.
type Settings struct {
	ActiveProvider string
	Connected      map[string]ConnectedProvider
}

// SettingsFromConfig converts config into Settings. A registered provider
// without a stored key picks up its key from the environment when set.
func SettingsFromConfig(cfg config.ProvidersConfig) Settings {
	s := Settings{
		ActiveProvider: normalizeName(cfg.Active),
		Connected:      map[string]ConnectedProvider{},
	}
	for name, p := range cfg.Connected {
		s.Connected[normalizeName(name)] = ConnectedProvider{
			APIKey:  strings.TrimSpace(p.APIKey),
			Model:   strings.TrimSpace(p.Model),
			BaseURL: strings.TrimSpace(p.BaseURL),
		}
	}
	for _, info := range Supported() {
		if info.EnvKey == "" {
			continue
		}
		conn := s.Connected[info.Name]
		if conn.APIKey != "" {
			continue
		}
		if key, ok := lookupEnv(info.EnvKey); ok && strings.TrimSpace(key) != "" {
			conn.APIKey = strings.TrimSpace(key)
			s.Connected[info.Name] = conn
		}
	}
	return s
}

// Ready reports whether the named provider can run a task without further
// setup: it is registered, user-facing, has a key and resolves to a model.
func Ready(name string, conn ConnectedProvider) bool {
	info, ok := Lookup(name)
	if !ok || info.Internal {
		return false
	}
	if strings.TrimSpace(conn.APIKey) == "" {
		return false
	}
	return modelFor(info, conn) != ""
}

// HasAnyReadyProvider reports whether at least one connected provider is ready.
func HasAnyReadyProvider(s Settings) bool {
	for name, conn := range s.Connected {
		if Ready(name, conn) {
			return true
		}
	}
	return false
}

// ReadyNames returns the ready providers in name order.
func ReadyNames(s Settings) []string {
	var names []string
	for name, conn := range s.Connected {
		if Ready(name, conn) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Build constructs the provider to run tasks with: the active provider when
// it is ready, otherwise the first ready provider by name.
func Build(s Settings) (string, Provider, error) {
	name := ""
	if conn, ok := s.Connected[s.ActiveProvider]; ok && Ready(s.ActiveProvider, conn) {
		name = s.ActiveProvider
	} else if ready := ReadyNames(s); len(ready) > 0 {
		name = ready[0]
	}
	if name == "" {
		return "", nil, ErrNoReadyProvider
	}
	info, _ := Lookup(name)
	conn := s.Connected[name]
	conn.Model = modelFor(info, conn)
	p, err := info.Constructor(conn)
	if err != nil {
		return "", nil, fmt.Errorf("build provider %s: %w", name, err)
	}
	return name, p, nil
}

func modelFor(info Info, conn ConnectedProvider) string {
	if m := strings.TrimSpace(conn.Model); m != "" {
		return m
	}
	return info.DefaultModel
}
