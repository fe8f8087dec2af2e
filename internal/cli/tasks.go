package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jbonatakis/accomplish/internal/store"
)

const defaultTaskLimit = 20

func (a *app) tasksCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List recent tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return UsageError{Message: "--limit must be positive"}
			}
			e, err := a.open(false)
			if err != nil {
				return err
			}
			defer e.Close()

			tasks, err := e.db.Tasks.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				fmt.Fprintln(a.stdout, "no tasks")
				return nil
			}
			w := tabwriter.NewWriter(a.stdout, 0, 2, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tCREATED\tPROMPT")
			for _, t := range tasks {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.ID, t.Status, t.CreatedAt.Local().Format("2006-01-02 15:04"), truncateText(t.Prompt, 60))
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", defaultTaskLimit, "number of tasks to show")

	show := &cobra.Command{
		Use:   "show <taskID>",
		Short: "Show a task and its update log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open(false)
			if err != nil {
				return err
			}
			defer e.Close()

			t, err := e.db.Tasks.Get(cmd.Context(), args[0])
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("task %s not found", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Task:    %s\n", t.ID)
			fmt.Fprintf(a.stdout, "Status:  %s\n", t.Status)
			fmt.Fprintf(a.stdout, "Prompt:  %s\n", t.Prompt)
			if t.Summary != "" {
				fmt.Fprintf(a.stdout, "Summary: %s\n", t.Summary)
			}
			if t.Error != "" {
				fmt.Fprintf(a.stdout, "Error:   %s\n", t.Error)
			}

			updates, err := e.db.Tasks.Updates(cmd.Context(), t.ID)
			if err != nil {
				return err
			}
			if len(updates) > 0 {
				fmt.Fprintln(a.stdout)
				w := tabwriter.NewWriter(a.stdout, 0, 2, 2, ' ', 0)
				for _, u := range updates {
					text := u.Message
					if text == "" {
						text = string(u.Status)
					}
					fmt.Fprintf(w, "%s\t%s\t%s\n", u.At.Local().Format("15:04:05"), u.Type, truncateText(text, 80))
				}
				if err := w.Flush(); err != nil {
					return err
				}
			}
			if t.Result != "" {
				fmt.Fprintf(a.stdout, "\n%s\n", t.Result)
			}
			return nil
		},
	}
	cmd.AddCommand(show)
	return cmd
}

func truncateText(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
