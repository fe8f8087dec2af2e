package provider

import (
	"context"
	"sort"
	"strings"
)

// Provider runs a single task prompt against a model backend.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Constructor builds a provider from its stored credentials.
type Constructor func(conn ConnectedProvider) (Provider, error)

type Registration struct {
	Label        string
	DefaultModel string
	// EnvKey names an environment variable that can supply the API key.
	EnvKey string
	// Internal providers are never offered to the user and never count as ready.
	Internal    bool
	Constructor Constructor
}

type Info struct {
	Name string
	Registration
}

var registry = map[string]Registration{}

// RegisterProvider adds or replaces a provider registration.
func RegisterProvider(name string, reg Registration) {
	name = normalizeName(name)
	if name == "" || reg.Constructor == nil {
		return
	}
	reg.DefaultModel = strings.TrimSpace(reg.DefaultModel)
	reg.EnvKey = strings.TrimSpace(reg.EnvKey)
	if reg.Label == "" {
		reg.Label = name
	}
	registry[name] = reg
}

// Lookup finds a registration by name, ignoring case and surrounding space.
func Lookup(name string) (Info, bool) {
	name = normalizeName(name)
	reg, ok := registry[name]
	if !ok {
		return Info{}, false
	}
	return Info{Name: name, Registration: reg}, true
}

// Supported returns the user-selectable providers in name order.
func Supported() []Info {
	out := make([]Info, 0, len(registry))
	for name, reg := range registry {
		if reg.Internal {
			continue
		}
		out = append(out, Info{Name: name, Registration: reg})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
