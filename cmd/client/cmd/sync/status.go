package sync

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/upreis/reistooq-core-sub019/internal/app/client"
)

var statusJSON bool

var StatusCmd = &cobra.Command{
	Use:   "status <account-id>",
	Short: "Show sync progress for an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		status, err := app.SyncStatus(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to read sync status: %w", err)
		}

		if statusJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(status)
		}

		printStatus(status)
		return nil
	},
}

func init() {
	StatusCmd.Flags().BoolVar(&statusJSON, "json", false, "output in JSON format")
}
