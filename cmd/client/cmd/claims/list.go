// cmd/client/cmd/claims/list.go
package claims

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/upreis/reistooq-core-sub019/internal/app/client"
)

var (
	listAccounts string
	listFrom     string
	listTo       string
	listFormat   string
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List claims with deadlines and financial impact",
	Long: `Lists claims for one or more marketplace accounts. Each claim carries
its shipment and review deadlines, hours remaining and the net financial
impact for the seller. Critical deadlines are highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := client.FromContext(cmd.Context())
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		filter := client.ListFilter{
			Accounts: splitAccounts(listAccounts),
			DateFrom: listFrom,
			DateTo:   listTo,
		}

		list, err := app.ListClaims(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("failed to list claims: %w", err)
		}

		switch listFormat {
		case "json":
			return printClaimsJSON(list)
		case "table":
			return printClaimsTable(list)
		default:
			return printClaimsSimple(list)
		}
	},
}

func printClaimsSimple(list *client.ClaimList) error {
	if len(list.Claims) == 0 {
		fmt.Println("No claims found")
		return nil
	}

	fmt.Printf("Found %d claims (source: %s, fetched: %s)\n\n",
		len(list.Claims), list.Source, list.FetchedAt.Format("2006-01-02 15:04:05"))

	for i, c := range list.Claims {
		fmt.Printf("%d. %s  order %s  [%s/%s]  account %s\n",
			i+1, c.Record.ClaimID, c.Record.OrderID,
			c.Record.Status, c.Record.Stage, c.Record.AccountID)

		printDeadline("   ship by", c.Deadlines.ShipmentDeadline, c.Deadlines.ShipmentHoursLeft, c.Deadlines.ShipmentCritical)
		printDeadline("   review by", c.Deadlines.SellerReviewDeadline, c.Deadlines.ReviewHoursLeft, c.Deadlines.ReviewCritical)

		fmt.Printf("   net impact: %s %s\n\n",
			c.Financials.NetSellerImpact.StringFixed(2), c.Record.Currency)
	}

	return nil
}

func printDeadline(label string, deadline *time.Time, hours *int, critical bool) {
	if deadline == nil {
		return
	}
	fmt.Printf("%s %s (%s)\n", label, deadline.Format("2006-01-02"), formatHours(hours, critical))
}

func printClaimsTable(list *client.ClaimList) error {
	if len(list.Claims) == 0 {
		fmt.Println("No claims found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Claim\tOrder\tAccount\tStatus\tShip by\tShip h\tReview by\tReview h\tNet impact\t\n")
	fmt.Fprintf(w, "---\t---\t---\t---\t---\t---\t---\t---\t---\t\n")

	for _, c := range list.Claims {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			c.Record.ClaimID,
			c.Record.OrderID,
			c.Record.AccountID,
			c.Record.Status,
			formatDate(c.Deadlines.ShipmentDeadline),
			formatHours(c.Deadlines.ShipmentHoursLeft, c.Deadlines.ShipmentCritical),
			formatDate(c.Deadlines.SellerReviewDeadline),
			formatHours(c.Deadlines.ReviewHoursLeft, c.Deadlines.ReviewCritical),
			c.Financials.NetSellerImpact.StringFixed(2),
		)
	}

	w.Flush()
	fmt.Printf("\nTotal claims: %d (source: %s)\n", len(list.Claims), list.Source)
	return nil
}

func printClaimsJSON(list *client.ClaimList) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(list)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func formatHours(hours *int, critical bool) string {
	if hours == nil {
		return "-"
	}
	s := fmt.Sprintf("%dh", *hours)
	switch {
	case *hours <= 0:
		return color.RedString(s + " overdue")
	case critical:
		return color.YellowString(s)
	default:
		return color.GreenString(s)
	}
}

func splitAccounts(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	accounts := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			accounts = append(accounts, p)
		}
	}

	return accounts
}

func init() {
	ListCmd.Flags().StringVarP(&listAccounts, "accounts", "a", "", "comma-separated account IDs (defaults to DEFAULT_ACCOUNTS)")
	ListCmd.Flags().StringVar(&listFrom, "from", "", "lower date bound (YYYY-MM-DD)")
	ListCmd.Flags().StringVar(&listTo, "to", "", "upper date bound (YYYY-MM-DD)")
	ListCmd.Flags().StringVarP(&listFormat, "format", "f", "simple", "output format (simple, table, json)")
}
