package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

// barPadding is the horizontal padding on each side of the bar.
const barPadding = 1

func RenderBottomBar(model Model) string {
	status := strings.Join(actionHints(model), " ")
	if model.actionInProgress {
		status += fmt.Sprintf(" | %s %s", spinnerFrames[model.spinnerIndex%len(spinnerFrames)], model.actionName)
	}

	counts := fmt.Sprintf("favorites:%d", model.ctrl.FavoritesCount())
	if model.tasks.IsLoading() {
		counts = "running | " + counts
	}

	inner := model.windowWidth
	if inner > 0 {
		inner = max(inner-2*barPadding, 0)
	}
	return lipgloss.NewStyle().
		Reverse(true).
		Padding(0, barPadding).
		Render(layoutBar(status, counts, inner))
}

func actionHints(model Model) []string {
	switch model.actionMode {
	case ActionModeSettings, ActionModeSkillPicker:
		return []string{"[esc]close", "[ctrl+c]quit"}
	}
	if model.viewMode == ViewModeExecution {
		actions := []string{"[esc]home"}
		if current, ok := model.currentExecutionTask(); ok {
			if !current.Status.Terminal() {
				actions = append(actions, "[ctrl+x]stop")
			} else if !model.tasks.IsFavorite(current.ID) {
				actions = append(actions, "[f]avorite")
			}
		}
		return append(actions, "[ctrl+c]quit")
	}

	actions := []string{"[enter]run", "[tab]focus", "[ctrl+k]skills", "[ctrl+s]settings", "[ctrl+t]voice", "[ctrl+c]quit"}
	if model.tasks.IsLoading() {
		actions = []string{"[enter]stop", "[ctrl+s]settings", "[ctrl+c]quit"}
	}
	if model.focus == FocusFavorites {
		actions = append([]string{"[x]remove"}, actions...)
	}
	return actions
}

// layoutBar pins right to the far edge and shortens left when both do not
// fit. A non-positive width means the terminal size is still unknown.
func layoutBar(left string, right string, width int) string {
	if width <= 0 {
		return left + " " + right
	}
	rw := lipgloss.Width(right)
	room := width - rw - 1
	if room < 0 {
		return truncate(right, width)
	}
	left = truncate(left, room)
	gap := width - lipgloss.Width(left) - rw
	return truncate(left+strings.Repeat(" ", max(gap, 1))+right, width)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if r := []rune(s); len(r) > width {
		return string(r[:width])
	}
	return s
}
