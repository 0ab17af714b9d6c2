package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSubtaskCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subtask",
		Short: "Manage a task's checklist",
	}
	cmd.AddCommand(newSubtaskAddCmd(a), newSubtaskDoneCmd(a))
	return cmd
}

func newSubtaskAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <task-id> <title>",
		Short: "Add a subtask",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.task(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			st, err := a.db.AddSubtask(cmd.Context(), t.ID, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added subtask #%d to task #%d\n", st.ID, t.ID)
			return nil
		},
	}
}

func newSubtaskDoneCmd(a *app) *cobra.Command {
	var undo bool
	cmd := &cobra.Command{
		Use:   "done <subtask-id>",
		Short: "Check off a subtask",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.db.SetSubtaskCompleted(cmd.Context(), id, !undo); err != nil {
				return err
			}
			state := "done"
			if undo {
				state = "open"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Subtask #%d is %s\n", id, state)
			return nil
		},
	}
	cmd.Flags().BoolVar(&undo, "undo", false, "reopen the subtask")
	return cmd
}
