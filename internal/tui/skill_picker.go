package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jbonatakis/accomplish/internal/skills"
)

const skillPickerMaxRows = 8

// SkillPicker is the filterable slash-command list opened from the prompt.
type SkillPicker struct {
	Input    textinput.Model
	All      []skills.Skill
	Matches  []skills.Skill
	Selected int
}

func NewSkillPicker(all []skills.Skill) SkillPicker {
	input := textinput.New()
	input.Placeholder = "filter skills"
	input.Prompt = "/ "
	input.CharLimit = 64
	input.Focus()
	return SkillPicker{
		Input:   input,
		All:     all,
		Matches: skills.Filter(all, ""),
	}
}

func (p *SkillPicker) refilter() {
	p.Matches = skills.Filter(p.All, p.Input.Value())
	if p.Selected >= len(p.Matches) {
		p.Selected = len(p.Matches) - 1
	}
	if p.Selected < 0 {
		p.Selected = 0
	}
}

// HandleSkillPickerKey handles key presses while the skill picker is open.
func HandleSkillPickerKey(m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.skillPicker == nil {
		m.actionMode = ActionModeNone
		return m, nil
	}
	picker := *m.skillPicker

	switch msg.String() {
	case "esc":
		return m.closeSkillPicker().focusPrompt()
	case "up", "ctrl+p":
		if picker.Selected > 0 {
			picker.Selected--
		}
		m.skillPicker = &picker
		return m, nil
	case "down", "ctrl+n":
		if picker.Selected < len(picker.Matches)-1 {
			picker.Selected++
		}
		m.skillPicker = &picker
		return m, nil
	case "enter":
		if len(picker.Matches) == 0 {
			return m, nil
		}
		m.ctrl.SelectSkill(picker.Matches[picker.Selected].Command)
		m = m.closeSkillPicker()
		m = m.syncPromptFromController()
		return m, focusPromptCmd()
	}

	var cmd tea.Cmd
	picker.Input, cmd = picker.Input.Update(msg)
	picker.refilter()
	m.skillPicker = &picker
	return m, cmd
}

func (m Model) closeSkillPicker() Model {
	m.skillPicker = nil
	m.actionMode = ActionModeNone
	m.focus = FocusPrompt
	return m
}

func RenderSkillPicker(m Model, p SkillPicker) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	itemStyle := lipgloss.NewStyle().Padding(0, 2)
	highlightStyle := itemStyle.Copy().Foreground(lipgloss.Color("46")).Background(lipgloss.Color("236"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	lines := []string{titleStyle.Render("Skills"), p.Input.View(), ""}
	if len(p.Matches) == 0 {
		lines = append(lines, mutedStyle.Render("No matching skills"))
	}
	start := 0
	if p.Selected >= skillPickerMaxRows {
		start = p.Selected - skillPickerMaxRows + 1
	}
	for i := start; i < len(p.Matches) && i < start+skillPickerMaxRows; i++ {
		sk := p.Matches[i]
		style := itemStyle
		if i == p.Selected {
			style = highlightStyle
		}
		lines = append(lines, style.Render(sk.Command)+" "+mutedStyle.Render(sk.Description))
	}
	lines = append(lines, "", mutedStyle.Render("[↑/↓] move  [enter] insert  [esc] cancel"))

	modalWidth := 56
	if m.windowWidth > 0 && m.windowWidth < modalWidth+4 {
		modalWidth = m.windowWidth - 4
	}
	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("69")).
		Padding(1, 2).
		Width(modalWidth).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))

	if m.windowWidth <= 0 || m.windowHeight <= 0 {
		return modal
	}
	return lipgloss.Place(m.windowWidth, m.windowHeight-1, lipgloss.Center, lipgloss.Center, modal)
}
