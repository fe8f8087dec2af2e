package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jbonatakis/accomplish/internal/store"
)

func (a *app) favoritesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "Manage favorite prompts",
		Args:  cobra.NoArgs,
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List favorites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := a.open(false)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.tasks.LoadFavorites(cmd.Context()); err != nil {
				return err
			}
			favs := e.tasks.Favorites()
			if len(favs) == 0 {
				fmt.Fprintln(a.stdout, "no favorites")
				return nil
			}
			w := tabwriter.NewWriter(a.stdout, 0, 2, 2, ' ', 0)
			fmt.Fprintln(w, "TASK\tLABEL")
			for _, f := range favs {
				fmt.Fprintf(w, "%s\t%s\n", f.TaskID, f.Label())
			}
			return w.Flush()
		},
	}

	add := &cobra.Command{
		Use:   "add <taskID>",
		Short: "Save a task's prompt as a favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open(false)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.tasks.AddFavorite(cmd.Context(), args[0]); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("task %s not found", args[0])
				}
				return err
			}
			fmt.Fprintf(a.stdout, "added %s\n", args[0])
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove <taskID>",
		Short: "Remove a favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open(false)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.tasks.RemoveFavorite(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "removed %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, add, remove)
	return cmd
}
