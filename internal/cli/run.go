package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/jbonatakis/accomplish/internal/logger"
	"github.com/jbonatakis/accomplish/internal/provider"
	"github.com/jbonatakis/accomplish/internal/task"
)

// ErrTaskFailed is returned by `run` when the task ends without completing.
var ErrTaskFailed = errors.New("task did not complete")

func (a *app) runCmd() *cobra.Command {
	var (
		prompt string
		yes    bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one task and print its updates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			prompt = strings.TrimSpace(prompt)
			if prompt == "" {
				return UsageError{Message: "run requires --prompt"}
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return a.runHeadless(ctx, prompt, yes)
		},
	}
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "task to run")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "allow every permission request")
	return cmd
}

// runHeadless starts one task, streams its updates to stdout and answers
// permission requests, either automatically or with a confirm form.
func (a *app) runHeadless(ctx context.Context, prompt string, yes bool) error {
	e, err := a.open(false)
	if err != nil {
		return err
	}
	defer e.Close()

	if !e.cfg.E2E {
		settings, err := e.client.GetProviderSettings(ctx)
		if err != nil {
			return err
		}
		if !provider.HasAnyReadyProvider(settings) {
			return fmt.Errorf("%w: run `accomplish providers set-key` first", provider.ErrNoReadyProvider)
		}
	}

	taskID := task.NewID(time.Now())
	updates := make(chan task.Update, 64)
	permissions := make(chan task.PermissionRequest, 4)

	// Bus handlers run in no fixed order, so the store is fed from the same
	// handler before the event reaches this loop.
	offUpdates := e.client.OnTaskUpdate(func(u task.Update) {
		e.tasks.AddTaskUpdate(u)
		if u.TaskID == taskID {
			updates <- u
		}
	})
	defer offUpdates()
	offPrompts := e.client.OnPermissionRequest(func(req task.PermissionRequest) {
		e.tasks.SetPermissionRequest(req)
		if req.TaskID == taskID {
			permissions <- req
		}
	})
	defer offPrompts()

	if _, err := e.tasks.StartTask(ctx, task.Config{TaskID: taskID, Prompt: prompt}); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "started %s\n", taskID)

	done := ctx.Done()
	for {
		select {
		case u := <-updates:
			a.printUpdate(u)
			if !u.Terminal() {
				continue
			}
			if u.Type == task.UpdateComplete {
				return nil
			}
			return fmt.Errorf("%w: %s: %s", ErrTaskFailed, u.Status, u.Message)
		case req := <-permissions:
			allowed := yes
			if !allowed {
				allowed, err = a.confirm(
					fmt.Sprintf("Allow the task to %s?", req.Operation),
					req.Detail,
				)
				if err != nil {
					logger.Warn("permission prompt failed", "task", taskID, "error", err)
					allowed = false
				}
			}
			if err := e.tasks.RespondPermission(context.Background(), allowed); err != nil {
				logger.Warn("respond to permission", "task", taskID, "error", err)
			}
		case <-done:
			done = nil
			fmt.Fprintln(a.stdout, "interrupting...")
			if err := e.tasks.InterruptTask(context.Background()); err != nil {
				logger.Warn("interrupt", "task", taskID, "error", err)
			}
		}
	}
}

func (a *app) printUpdate(u task.Update) {
	switch u.Type {
	case task.UpdateStatus:
		fmt.Fprintf(a.stdout, "[%s]\n", u.Status)
	case task.UpdateComplete:
		fmt.Fprintln(a.stdout, u.Message)
	case task.UpdateError:
		fmt.Fprintf(a.stderr, "error (%s): %s\n", u.Status, u.Message)
	default:
		fmt.Fprintln(a.stdout, u.Message)
	}
}

func confirmWithForm(title string, description string) (bool, error) {
	var allowed bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Allow").
				Negative("Deny").
				Value(&allowed),
		),
	).Run()
	return allowed, err
}
