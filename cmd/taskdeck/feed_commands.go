package main

import (
	"strings"

	"github.com/spf13/cobra"

	"taskdeck/internal/launcher"
)

// newSearchCommand emits the script-filter feed for a query. This is the
// command the launcher binds to its main keyword.
func newSearchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Emit the search feed for a query as script-filter JSON",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return ctx.withApp(func(app *launcher.App) error {
				feed, err := app.Search(cmd.Context(), query)
				if err != nil {
					return err
				}
				return feed.Write(cmd.OutOrStdout())
			})
		},
	}
}

// newActionsCommand emits the per-task action menu feed.
func newActionsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "actions <task-path>",
		Short: "Emit the action menu feed for a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(app *launcher.App) error {
				feed, err := app.ActionsFeed(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return feed.Write(cmd.OutOrStdout())
			})
		},
	}
}

// newCreateCommand emits the create-focused feed with the parsed preview.
func newCreateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "create [text]",
		Short: "Emit the create preview feed for input text",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			return ctx.withApp(func(app *launcher.App) error {
				return app.CreateFeed(text).Write(cmd.OutOrStdout())
			})
		},
	}
}
