package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jbonatakis/accomplish/internal/config"
	"github.com/jbonatakis/accomplish/internal/home"
)

const (
	actionTimeout       = 30 * time.Second
	actionLoadFavorites = "load favorites"
)

// HomeActionComplete is the result of a controller call made off the update
// loop.
type HomeActionComplete struct {
	Action string
	Err    error
}

// TaskActionComplete is the result of a task store command issued from the
// execution view.
type TaskActionComplete struct {
	Action string
	Err    error
}

// ConfigSaved carries the reloaded config after a settings change.
type ConfigSaved struct {
	Action string
	Config config.Config
	Err    error
}

type focusPromptMsg struct{}

// focusPromptCmd delivers the deferred focus request after the current
// update has been rendered.
func focusPromptCmd() tea.Cmd {
	return func() tea.Msg { return focusPromptMsg{} }
}

func runHomeAction(action string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return HomeActionComplete{Action: action, Err: fn(ctx)}
	}
}

func SubmitCmd(ctrl *home.Controller) tea.Cmd {
	return runHomeAction("submit", ctrl.Submit)
}

func APIKeySavedCmd(ctrl *home.Controller) tea.Cmd {
	return runHomeAction("submit", ctrl.APIKeySaved)
}

func MountCmd(ctrl *home.Controller) tea.Cmd {
	return runHomeAction(actionLoadFavorites, ctrl.Mount)
}

func RouteChangedCmd(ctrl *home.Controller, path string) tea.Cmd {
	return runHomeAction(actionLoadFavorites, func(ctx context.Context) error {
		return ctrl.RouteChanged(ctx, path)
	})
}

func RemoveFavoriteCmd(ctrl *home.Controller, taskID string) tea.Cmd {
	return runHomeAction("remove favorite", func(ctx context.Context) error {
		return ctrl.RemoveFavorite(ctx, taskID)
	})
}

func runTaskAction(action string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return TaskActionComplete{Action: action, Err: fn(ctx)}
	}
}

func InterruptCmd(tasks TaskState) tea.Cmd {
	return runTaskAction("interrupt", tasks.InterruptTask)
}

func RespondPermissionCmd(tasks TaskState, allowed bool) tea.Cmd {
	return runTaskAction("permission", func(ctx context.Context) error {
		return tasks.RespondPermission(ctx, allowed)
	})
}

func AddFavoriteCmd(tasks TaskState, taskID string) tea.Cmd {
	return runTaskAction("favorite", func(ctx context.Context) error {
		return tasks.AddFavorite(ctx, taskID)
	})
}

// SaveAPIKeyCmd stores the key for providerName and reloads the config.
func SaveAPIKeyCmd(path string, providerName string, apiKey string) tea.Cmd {
	return func() tea.Msg {
		cfg, err := config.UpdateFile(path, func(c *config.Config) error {
			return c.SetProviderKey(providerName, apiKey, "")
		})
		return ConfigSaved{Action: "api key", Config: cfg, Err: err}
	}
}

func SaveVoiceCmd(path string, enabled bool) tea.Cmd {
	return func() tea.Msg {
		cfg, err := config.UpdateFile(path, func(c *config.Config) error {
			c.Voice.Enabled = enabled
			return nil
		})
		return ConfigSaved{Action: "voice", Config: cfg, Err: err}
	}
}
