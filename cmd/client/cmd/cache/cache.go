package cache

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/upreis/reistooq-core-sub019/internal/app/client"
)

var CacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the claims cache",
}

var InvalidateCmd = &cobra.Command{
	Use:   "invalidate <account-id>[,<account-id>...]",
	Short: "Drop cached claims for accounts",
	Long: `Removes every cache entry that touches the given accounts, both
in server memory and in durable storage. The next read for those accounts
goes to the marketplace API.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		accounts := splitAccounts(args[0])
		if len(accounts) == 0 {
			return fmt.Errorf("no account IDs given")
		}

		result, err := app.InvalidateCache(cmd.Context(), accounts)
		if err != nil {
			return fmt.Errorf("failed to invalidate cache: %w", err)
		}

		color.Green("cache invalidated for %s", strings.Join(result.Accounts, ", "))
		return nil
	},
}

func splitAccounts(raw string) []string {
	parts := strings.Split(raw, ",")
	accounts := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			accounts = append(accounts, p)
		}
	}
	return accounts
}
