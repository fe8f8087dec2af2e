// Package skills lists the slash commands that can be prepended to a prompt
// and ranks them against a typed filter.
package skills

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/jbonatakis/accomplish/internal/config"
)

type Skill struct {
	Command     string
	Description string
}

var defaults = []Skill{
	{Command: "/draft", Description: "Write a first draft of a message or document"},
	{Command: "/summarize", Description: "Condense a page, thread or file"},
	{Command: "/research", Description: "Collect sources and report findings"},
	{Command: "/schedule", Description: "Find a time and put it on the calendar"},
	{Command: "/cleanup", Description: "Archive or delete clutter in an inbox or folder"},
}

// Defaults returns a copy of the built-in skills.
func Defaults() []Skill {
	out := make([]Skill, len(defaults))
	copy(out, defaults)
	return out
}

// FromConfig returns the configured skills, or the defaults when none are set.
// Later entries with a command already seen are ignored.
func FromConfig(cfgs []config.SkillConfig) []Skill {
	if len(cfgs) == 0 {
		return Defaults()
	}
	seen := map[string]bool{}
	out := make([]Skill, 0, len(cfgs))
	for _, c := range cfgs {
		cmd := normalizeCommand(c.Command)
		if cmd == "" || seen[cmd] {
			continue
		}
		seen[cmd] = true
		out = append(out, Skill{Command: cmd, Description: strings.TrimSpace(c.Description)})
	}
	if len(out) == 0 {
		return Defaults()
	}
	return out
}

// maxDistance bounds how far a non-prefix match may be from the query.
const maxDistance = 3

// Filter ranks skills against query. Commands that start with the query come
// first, then commands or descriptions containing it, then near misses by
// edit distance. An empty query returns the list unchanged.
func Filter(all []Skill, query string) []Skill {
	q := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(query), "/"))
	if q == "" {
		return append([]Skill(nil), all...)
	}

	type scored struct {
		skill Skill
		rank  int
		dist  int
		index int
	}
	var matches []scored
	for i, s := range all {
		name := strings.ToLower(strings.TrimPrefix(s.Command, "/"))
		dist := levenshtein.ComputeDistance(q, name)
		rank := -1
		switch {
		case strings.HasPrefix(name, q):
			rank = 0
		case strings.Contains(name, q) || strings.Contains(strings.ToLower(s.Description), q):
			rank = 1
		case dist <= maxDistance:
			rank = 2
		}
		if rank < 0 {
			continue
		}
		matches = append(matches, scored{skill: s, rank: rank, dist: dist, index: i})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].rank != matches[j].rank {
			return matches[i].rank < matches[j].rank
		}
		if matches[i].dist != matches[j].dist {
			return matches[i].dist < matches[j].dist
		}
		return matches[i].index < matches[j].index
	})

	out := make([]Skill, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.skill)
	}
	return out
}

func normalizeCommand(cmd string) string {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return ""
	}
	if !strings.HasPrefix(cmd, "/") {
		cmd = "/" + cmd
	}
	return cmd
}
