package main

import (
	"github.com/spf13/cobra"

	"taskdeck/internal/launcher"
)

func newPomodoroCommand(ctx *commandContext) *cobra.Command {
	pomodoroCmd := &cobra.Command{
		Use:   "pomodoro",
		Short: "Pomodoro timer status and controls",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(app *launcher.App) error {
				feed, err := app.PomodoroFeed(cmd.Context())
				if err != nil {
					return err
				}
				return feed.Write(cmd.OutOrStdout())
			})
		},
	}

	pomodoroCmd.AddCommand(newPomodoroActionCommand(ctx, "start", "Start a pomodoro session", true))
	pomodoroCmd.AddCommand(newPomodoroActionCommand(ctx, "stop", "Stop the current pomodoro session", false))
	pomodoroCmd.AddCommand(newPomodoroActionCommand(ctx, "pause", "Pause the running pomodoro", false))
	pomodoroCmd.AddCommand(newPomodoroActionCommand(ctx, "resume", "Resume a paused pomodoro", false))

	return pomodoroCmd
}

func newPomodoroActionCommand(ctx *commandContext, op, short string, takesTask bool) *cobra.Command {
	use := op
	args := cobra.NoArgs
	if takesTask {
		use = op + " [task-path]"
		args = cobra.MaximumNArgs(1)
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			payload := launcher.ActionRequest{Action: "pomodoro_" + op}
			if takesTask && len(cmdArgs) > 0 {
				payload.Path = cmdArgs[0]
			}
			return ctx.withApp(func(app *launcher.App) error {
				notice, err := app.Act(cmd.Context(), mustJSON(payload))
				if err != nil {
					return err
				}
				cmd.Printf("%s: %s\n", notice.Title, notice.Message)
				return nil
			})
		},
	}
}
