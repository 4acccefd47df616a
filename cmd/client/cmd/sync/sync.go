package sync

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/upreis/reistooq-core-sub019/internal/app/client"
	"github.com/spf13/cobra"
)

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Manage background synchronizations",
	Long: `Drives background bulk synchronizations of claims per account:
start, inspect progress and cancel. A sync pulls every claim page by page
from the marketplace and refreshes the cache as it goes.`,
}

func printStatus(status *client.SyncStatus) {
	fmt.Printf("Account:  %s\n", status.AccountID)
	fmt.Printf("Status:   %s\n", colorStatus(status.Status))

	if status.ProgressTotal > 0 {
		fmt.Printf("Progress: %d/%d\n", status.ProgressCurrent, status.ProgressTotal)
	}
	if status.TotalClaims > 0 {
		fmt.Printf("Claims:   %d\n", status.TotalClaims)
	}
	if status.LastSyncDate != nil {
		fmt.Printf("Last:     %s\n", status.LastSyncDate.Format("2006-01-02 15:04:05"))
	}
	if status.ErrorMessage != "" {
		fmt.Printf("Error:    %s\n", color.RedString(status.ErrorMessage))
	}
	fmt.Printf("Updated:  %s\n", status.UpdatedAt.Format("2006-01-02 15:04:05"))
}

func colorStatus(status string) string {
	switch status {
	case "running":
		return color.YellowString(status)
	case "completed":
		return color.GreenString(status)
	case "error":
		return color.RedString(status)
	default:
		return status
	}
}
