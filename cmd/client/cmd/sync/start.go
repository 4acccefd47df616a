package sync

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/upreis/reistooq-core-sub019/internal/app/client"
)

var StartCmd = &cobra.Command{
	Use:   "start <account-id>",
	Short: "Start a background sync for an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		status, err := app.StartSync(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to start sync: %w", err)
		}

		fmt.Println("Sync started")
		printStatus(status)
		return nil
	},
}
