// cmd/client/cmd/init.go
package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/upreis/reistooq-core-sub019/cmd/client/cmd/cache"
	"github.com/upreis/reistooq-core-sub019/cmd/client/cmd/claims"
	"github.com/upreis/reistooq-core-sub019/cmd/client/cmd/sync"
	"github.com/upreis/reistooq-core-sub019/internal/app/client"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check server availability",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		if err := app.CheckConnection(cmd.Context()); err != nil {
			return fmt.Errorf("server unavailable: %w", err)
		}

		color.Green("server is up")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(claims.ClaimsCmd)
	claims.ClaimsCmd.AddCommand(claims.ListCmd)

	rootCmd.AddCommand(sync.SyncCmd)
	sync.SyncCmd.AddCommand(sync.StartCmd)
	sync.SyncCmd.AddCommand(sync.StatusCmd)
	sync.SyncCmd.AddCommand(sync.CancelCmd)

	rootCmd.AddCommand(cache.CacheCmd)
	cache.CacheCmd.AddCommand(cache.InvalidateCmd)

	rootCmd.AddCommand(healthCmd)
}
