package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jbonatakis/accomplish/internal/home"
	"github.com/jbonatakis/accomplish/internal/task"
)

var timeNow = time.Now

// maxUpdateLines bounds how many stream lines the execution view shows.
const maxUpdateLines = 20

func RenderExecutionView(m Model) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	labelStyle := lipgloss.NewStyle().Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	permissionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("214")).
		Padding(0, 1)

	var b strings.Builder
	writeSectionHeader(&b, headerStyle, m.catalog.T("execution.title"))

	current, ok := m.currentExecutionTask()
	if !ok {
		b.WriteString(mutedStyle.Render(m.catalog.T("execution.noTask")))
		return padView(m, b.String())
	}

	writeLabeledLine(&b, labelStyle, "Task", current.ID)
	writeLabeledLine(&b, labelStyle, "Prompt", current.Prompt)
	b.WriteString(labelStyle.Render("Status: "))
	b.WriteString(renderTaskStatus(m, current.Status))
	b.WriteString("\n")
	writeLabeledLine(&b, labelStyle, "Elapsed", formatElapsed(current.CreatedAt, current.UpdatedAt, current.Status.Terminal()))
	b.WriteString("\n")

	if req, pending := m.tasks.PermissionRequest(); pending && req.TaskID == current.ID {
		body := m.catalog.T("execution.permission") + ": " + req.Operation
		if req.Detail != "" {
			body += "\n" + req.Detail
		}
		body += "\n" + m.catalog.T("execution.permissionHint")
		b.WriteString(permissionStyle.Render(body))
		b.WriteString("\n\n")
	}

	writeSectionHeader(&b, headerStyle, "Updates")
	updates := m.tasks.Updates(current.ID)
	if len(updates) == 0 {
		b.WriteString(mutedStyle.Render("(no updates)"))
		b.WriteString("\n")
	}
	if len(updates) > maxUpdateLines {
		updates = updates[len(updates)-maxUpdateLines:]
	}
	for _, u := range updates {
		b.WriteString(formatUpdateLine(u))
		b.WriteString("\n")
	}

	if current.Status == task.StatusCompleted && current.Result != "" {
		b.WriteString("\n")
		writeSectionHeader(&b, headerStyle, "Result")
		b.WriteString(current.Result)
		b.WriteString("\n")
	}
	if current.Error != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(current.Error))
		b.WriteString("\n")
	}

	return padView(m, strings.TrimRight(b.String(), "\n"))
}

// currentExecutionTask returns the task shown on the execution route. Only
// the store's current task has live state.
func (m Model) currentExecutionTask() (task.Task, bool) {
	current, ok := m.tasks.CurrentTask()
	if !ok || current.ID != m.executionTaskID {
		return task.Task{}, false
	}
	return current, true
}

// HandleExecutionKey handles key presses on the execution view.
func HandleExecutionKey(m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	current, ok := m.currentExecutionTask()
	switch msg.String() {
	case "esc":
		return m.navigate(home.HomePath)
	case "ctrl+x":
		if ok && !current.Status.Terminal() {
			return m.startAction("Stopping task...", InterruptCmd(m.tasks))
		}
	case "y", "n":
		if req, pending := m.tasks.PermissionRequest(); pending && ok && req.TaskID == current.ID {
			return m.startAction("Answering permission...", RespondPermissionCmd(m.tasks, msg.String() == "y"))
		}
	case "f":
		if ok && current.Status.Terminal() && !m.tasks.IsFavorite(current.ID) {
			return m.startAction("Saving favorite...", AddFavoriteCmd(m.tasks, current.ID))
		}
	}
	return m, nil
}

func renderTaskStatus(m Model, status task.Status) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	label := string(status)
	switch status {
	case task.StatusRunning:
		style = style.Foreground(lipgloss.Color("214"))
		label = spinnerFrames[m.spinnerIndex%len(spinnerFrames)] + " " + label
	case task.StatusWaitingPermission:
		style = style.Foreground(lipgloss.Color("214"))
	case task.StatusCompleted:
		style = style.Foreground(lipgloss.Color("42"))
	case task.StatusFailed, task.StatusInterrupted:
		style = style.Foreground(lipgloss.Color("196"))
	}
	return style.Render(label)
}

func formatUpdateLine(u task.Update) string {
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	stamp := ""
	if !u.At.IsZero() {
		stamp = mutedStyle.Render(u.At.Local().Format("15:04:05")) + " "
	}
	text := u.Message
	if text == "" {
		text = string(u.Status)
	}
	return fmt.Sprintf("%s%-8s %s", stamp, u.Type, firstLine(text))
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx] + " …"
	}
	return s
}

func formatElapsed(start time.Time, updated time.Time, done bool) string {
	if start.IsZero() {
		return "-"
	}
	end := timeNow()
	if done && !updated.IsZero() {
		end = updated
	}
	d := end.Sub(start)
	if d < 0 {
		d = 0
	}
	return d.Truncate(time.Second).String()
}

func writeSectionHeader(b *strings.Builder, style lipgloss.Style, title string) {
	b.WriteString(style.Render(title))
	b.WriteString("\n")
}

func writeLabeledLine(b *strings.Builder, style lipgloss.Style, label string, value string) {
	b.WriteString(style.Render(label + ": "))
	b.WriteString(value)
	b.WriteString("\n")
}

// padView keeps content inside the window, leaving room for the bottom bar.
func padView(m Model, content string) string {
	if m.windowWidth <= 0 || m.windowHeight <= 0 {
		return content
	}
	lines := strings.Split(content, "\n")
	limit := m.windowHeight - 1
	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(lines, "\n"))
}
