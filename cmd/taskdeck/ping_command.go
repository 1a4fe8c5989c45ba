package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskdeck/internal/launcher"
)

// newPingCommand checks that the TaskNotes API is reachable and ready.
func newPingCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check connectivity to the TaskNotes API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(app *launcher.App) error {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				if err := app.Client().Health(cmd.Context()); err != nil {
					return fmt.Errorf("TaskNotes API at %s is not responding: %w", cfg.API.BaseURL, err)
				}
				cmd.Printf("TaskNotes API at %s is healthy\n", cfg.API.BaseURL)
				return nil
			})
		},
	}
}
