package skills

import (
	"testing"

	"github.com/jbonatakis/accomplish/internal/config"
)

func TestFromConfigFallsBackToDefaults(t *testing.T) {
	got := FromConfig(nil)
	if len(got) != len(defaults) || got[0].Command != "/draft" {
		t.Fatalf("skills = %#v", got)
	}
	got[0].Command = "/changed"
	if defaults[0].Command != "/draft" {
		t.Fatalf("Defaults returned shared slice")
	}

	blank := FromConfig([]config.SkillConfig{{Command: "  "}})
	if len(blank) != len(defaults) {
		t.Fatalf("blank-only config should use defaults, got %#v", blank)
	}
}

func TestFromConfigNormalizesAndDedupes(t *testing.T) {
	got := FromConfig([]config.SkillConfig{
		{Command: "translate", Description: " Translate text "},
		{Command: "/translate", Description: "dup"},
		{Command: "/ship"},
	})
	if len(got) != 2 {
		t.Fatalf("skills = %#v", got)
	}
	if got[0].Command != "/translate" || got[0].Description != "Translate text" {
		t.Fatalf("first = %#v", got[0])
	}
	if got[1].Command != "/ship" {
		t.Fatalf("second = %#v", got[1])
	}
}

func TestFilterRanksPrefixFirst(t *testing.T) {
	all := []Skill{
		{Command: "/summarize", Description: "Condense text"},
		{Command: "/research", Description: "Collect sources and summarize"},
		{Command: "/draft"},
	}
	got := Filter(all, "/sum")
	if len(got) != 2 {
		t.Fatalf("filter = %#v", got)
	}
	if got[0].Command != "/summarize" || got[1].Command != "/research" {
		t.Fatalf("order = %#v", got)
	}
}

func TestFilterToleratesTypos(t *testing.T) {
	all := Defaults()
	got := Filter(all, "drfat")
	if len(got) == 0 || got[0].Command != "/draft" {
		t.Fatalf("filter = %#v", got)
	}
	if none := Filter(all, "zzzzzzzzzz"); len(none) != 0 {
		t.Fatalf("expected no matches, got %#v", none)
	}
}

func TestFilterEmptyQueryKeepsOrder(t *testing.T) {
	all := Defaults()
	got := Filter(all, "  ")
	if len(got) != len(all) {
		t.Fatalf("filter = %#v", got)
	}
	for i := range all {
		if got[i] != all[i] {
			t.Fatalf("order changed at %d", i)
		}
	}
}
