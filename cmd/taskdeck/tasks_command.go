package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"taskdeck/internal/launcher"
	"taskdeck/internal/rank"
	"taskdeck/internal/task"
)

// newTasksCommand lists tasks in the terminal: a table when stdout is a
// TTY, tab-separated lines otherwise.
func newTasksCommand(ctx *commandContext) *cobra.Command {
	var includeCompleted bool
	var includeArchived bool

	cmd := &cobra.Command{
		Use:   "tasks [query]",
		Short: "List tasks in the terminal",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return ctx.withApp(func(app *launcher.App) error {
				res, err := app.CachedTasks(cmd.Context(), includeCompleted, includeArchived)
				if err != nil {
					return err
				}
				tasks := rank.FilterAndRank(res.Tasks, query, includeCompleted, includeArchived)

				out := cmd.OutOrStdout()
				if len(tasks) == 0 {
					fmt.Fprintln(out, "no tasks")
					return nil
				}

				headers := []string{"Title", "Status", "Priority", "Due", "Scheduled", "Projects"}
				rows := make([][]string, 0, len(tasks))
				for _, t := range tasks {
					rows = append(rows, []string{
						t.Title,
						t.Status,
						t.Priority,
						task.DayOf(t.Due),
						task.DayOf(t.Scheduled),
						strings.Join(t.Projects, ", "),
					})
				}

				if stdoutIsTerminal() {
					fmt.Fprintln(out, renderTable(headers, rows))
					if res.Stale {
						fmt.Fprintln(out, "(cached data, refresh in progress)")
					}
					return nil
				}
				for _, row := range rows {
					fmt.Fprintln(out, strings.Join(row, "\t"))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&includeCompleted, "completed", false, "Include completed tasks")
	cmd.Flags().BoolVar(&includeArchived, "archived", false, "Include archived tasks")
	return cmd
}
