package tui

import (
	"fmt"
	"unicode"

	"github.com/charmbracelet/lipgloss"
)

// ActionOutput is the banner shown above the bottom bar after an action
// finishes.
type ActionOutput struct {
	Message string
	IsError bool
}

var (
	bannerErrorColor = lipgloss.Color("196")
	bannerOKColor    = lipgloss.Color("46")
)

func errorOutput(action string, err error) *ActionOutput {
	return &ActionOutput{
		Message: fmt.Sprintf("%s failed: %v", capitalize(action), err),
		IsError: true,
	}
}

func infoOutput(msg string) *ActionOutput {
	return &ActionOutput{Message: msg}
}

func RenderActionOutput(output *ActionOutput, width int) string {
	if output == nil {
		return ""
	}
	border := bannerOKColor
	if output.IsError {
		border = bannerErrorColor
	}
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
	if width > 4 {
		style = style.Width(width - 4)
	}
	return style.Render(output.Message)
}

func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
