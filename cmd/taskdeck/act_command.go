package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"taskdeck/internal/launcher"
)

// newActCommand executes an action payload produced by a feed row. The
// payload comes from the argument or, when absent, stdin.
func newActCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "act [payload]",
		Short: "Execute a feed action payload",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := ""
			if len(args) > 0 {
				payload = args[0]
			}
			if strings.TrimSpace(payload) == "" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read action payload: %w", err)
				}
				payload = string(data)
			}

			return ctx.withApp(func(app *launcher.App) error {
				notice, err := app.Act(cmd.Context(), payload)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, notice)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s: %s\n", notice.Title, notice.Message)
				if notice.OpenURL != "" {
					fmt.Fprintln(out, notice.OpenURL)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the result notice as JSON")
	return cmd
}
