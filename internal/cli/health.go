package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func healthCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the activity-log API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h := app().api.Health(cmd.Context())
			if h.Status != "healthy" {
				return fmt.Errorf("API is %s: %s", h.Status, h.Error)
			}

			uptime := time.Duration(h.Uptime * float64(time.Second)).Truncate(time.Second)
			fmt.Fprintf(cmd.OutOrStdout(), "API is healthy (up %s)\n", uptime)
			return nil
		},
	}
}
