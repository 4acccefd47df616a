package sync

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/upreis/reistooq-core-sub019/internal/app/client"
)

var CancelCmd = &cobra.Command{
	Use:   "cancel <account-id>",
	Short: "Cancel a running sync",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		status, err := app.CancelSync(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to cancel sync: %w", err)
		}

		fmt.Println("Sync canceled")
		printStatus(status)
		return nil
	},
}
