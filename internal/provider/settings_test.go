package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jbonatakis/accomplish/internal/config"
)

func withEnv(t *testing.T, env map[string]string) {
	t.Helper()
	orig := lookupEnv
	lookupEnv = func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	t.Cleanup(func() { lookupEnv = orig })
}

func TestHasAnyReadyProvider(t *testing.T) {
	withEnv(t, nil)

	if HasAnyReadyProvider(Settings{}) {
		t.Fatalf("expected empty settings to have no ready provider")
	}

	s := Settings{Connected: map[string]ConnectedProvider{
		"openai": {APIKey: "  "},
	}}
	if HasAnyReadyProvider(s) {
		t.Fatalf("expected blank key to be not ready")
	}

	s.Connected["unknown"] = ConnectedProvider{APIKey: "k", Model: "m"}
	if HasAnyReadyProvider(s) {
		t.Fatalf("expected unregistered provider to be not ready")
	}

	s.Connected[MockName] = ConnectedProvider{APIKey: "k"}
	if HasAnyReadyProvider(s) {
		t.Fatalf("expected internal provider to be not ready")
	}

	s.Connected["anthropic"] = ConnectedProvider{APIKey: "sk-ant"}
	if !HasAnyReadyProvider(s) {
		t.Fatalf("expected anthropic with key and default model to be ready")
	}
}

func TestSettingsFromConfigUsesEnvKeys(t *testing.T) {
	withEnv(t, map[string]string{"OPENAI_API_KEY": " sk-env "})

	s := SettingsFromConfig(config.ProvidersConfig{
		Active: " OpenAI ",
		Connected: map[string]config.ProviderConfig{
			"Anthropic": {Model: "claude-x"},
		},
	})
	if s.ActiveProvider != "openai" {
		t.Fatalf("active = %q", s.ActiveProvider)
	}
	if s.Connected["openai"].APIKey != "sk-env" {
		t.Fatalf("expected env key for openai, got %#v", s.Connected["openai"])
	}
	if s.Connected["anthropic"].APIKey != "" {
		t.Fatalf("expected anthropic to stay without key, got %#v", s.Connected["anthropic"])
	}
	if got := ReadyNames(s); len(got) != 1 || got[0] != "openai" {
		t.Fatalf("ready = %v", got)
	}
}

func TestBuildPrefersActiveProvider(t *testing.T) {
	withEnv(t, nil)

	s := Settings{
		ActiveProvider: "openai",
		Connected: map[string]ConnectedProvider{
			"anthropic": {APIKey: "a"},
			"openai":    {APIKey: "o"},
		},
	}
	name, p, err := Build(s)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if name != "openai" {
		t.Fatalf("name = %q, want openai", name)
	}
	if _, ok := p.(*OpenAIProvider); !ok {
		t.Fatalf("provider = %T, want *OpenAIProvider", p)
	}

	s.ActiveProvider = "missing"
	name, _, err = Build(s)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if name != "anthropic" {
		t.Fatalf("name = %q, want first ready provider", name)
	}
}

func TestBuildWithoutReadyProvider(t *testing.T) {
	withEnv(t, nil)

	_, _, err := Build(Settings{})
	if !errors.Is(err, ErrNoReadyProvider) {
		t.Fatalf("err = %v, want ErrNoReadyProvider", err)
	}
}

func TestSupportedHidesInternal(t *testing.T) {
	for _, info := range Supported() {
		if info.Name == MockName {
			t.Fatalf("expected mock provider to be hidden")
		}
	}
	if _, ok := Lookup(" MOCK "); !ok {
		t.Fatalf("expected mock provider to be registered")
	}
}

func TestMockHonorsCancellation(t *testing.T) {
	m := NewMock(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Complete(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}

	out, err := NewMock(0).Complete(context.Background(), "send email")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != "Completed: send email" {
		t.Fatalf("out = %q", out)
	}
}
