package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"taskdeck/internal/launcher"
)

// newRefreshCommand is the entry point for the detached background
// refresher. Search invocations spawn `taskdeck refresh tasks` so they can
// return stale results immediately while this process fetches fresh data.
func newRefreshCommand(ctx *commandContext) *cobra.Command {
	refreshCmd := &cobra.Command{
		Use:    "refresh",
		Short:  "Refresh cached snapshots",
		Hidden: true,
	}
	refreshCmd.AddCommand(newRefreshTasksCommand(ctx))
	return refreshCmd
}

func newRefreshTasksCommand(ctx *commandContext) *cobra.Command {
	var key string
	var requestID string

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Refresh a task-list cache entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(key) == "" {
				return fmt.Errorf("--key is required")
			}
			return ctx.withApp(func(app *launcher.App) error {
				return app.RefreshTasks(cmd.Context(), key, requestID)
			})
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Cache key to refresh")
	cmd.Flags().StringVar(&requestID, "request-id", "", "Refresh request id claimed by the spawning invocation")
	return cmd
}
