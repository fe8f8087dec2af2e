package tui

import (
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/jbonatakis/accomplish/internal/config"
	"github.com/jbonatakis/accomplish/internal/home"
	"github.com/jbonatakis/accomplish/internal/i18n"
	"github.com/jbonatakis/accomplish/internal/provider"
	"github.com/jbonatakis/accomplish/internal/skills"
)

// providerRow is one line of the providers tab.
type providerRow struct {
	Name  string
	Ready bool
}

// SettingsModal is the state of the settings dialog.
type SettingsModal struct {
	Tab       home.SettingsTab
	Selected  int
	Editing   bool
	Input     textinput.Model
	Providers []providerRow
	Skills    []skills.Skill
	Config    config.Config

	catalog *i18n.Catalog
	width   int
	height  int
	saving  bool
	err     error
}

func NewSettingsModal(tab home.SettingsTab, cfg config.Config, skillList []skills.Skill, catalog *i18n.Catalog) SettingsModal {
	if tab == "" {
		tab = home.TabProviders
	}
	input := textinput.New()
	input.EchoMode = textinput.EchoPassword
	input.EchoCharacter = '•'
	input.CharLimit = 256
	input.Width = 40

	s := SettingsModal{
		Tab:     tab,
		Input:   input,
		Skills:  skillList,
		catalog: catalog,
	}
	s.Reload(cfg)
	return s
}

// Reload refreshes the rows derived from cfg.
func (s *SettingsModal) Reload(cfg config.Config) {
	s.Config = cfg
	settings := provider.SettingsFromConfig(cfg.Providers)
	rows := make([]providerRow, 0)
	for _, info := range provider.Supported() {
		rows = append(rows, providerRow{
			Name:  info.Name,
			Ready: provider.Ready(info.Name, settings.Connected[info.Name]),
		})
	}
	s.Providers = rows
	s.Editing = false
	s.saving = false
	s.err = nil
	s.Input.SetValue("")
	s.Input.Blur()
	s.clampSelection()
}

func (s *SettingsModal) SetSize(width int, height int) {
	s.width = width
	s.height = height
}

// rowCount is the number of selectable rows on the current tab.
func (s SettingsModal) rowCount() int {
	switch s.Tab {
	case home.TabProviders:
		return len(s.Providers)
	case home.TabVoice:
		return 1
	case home.TabSkills:
		return len(s.Skills)
	case home.TabConnectors:
		return len(s.Config.Connectors)
	}
	return 0
}

func (s *SettingsModal) clampSelection() {
	n := s.rowCount()
	if s.Selected >= n {
		s.Selected = n - 1
	}
	if s.Selected < 0 {
		s.Selected = 0
	}
}

// shiftTab moves to the neighbouring tab, wrapping at either end.
func (s *SettingsModal) shiftTab(delta int) {
	tabs := home.SettingsTabs
	idx := 0
	for i, t := range tabs {
		if t == s.Tab {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(tabs)) % len(tabs)
	s.Tab = tabs[idx]
	s.Selected = 0
	s.err = nil
}
