package claims

import (
	"github.com/spf13/cobra"
)

var ClaimsCmd = &cobra.Command{
	Use:   "claims",
	Short: "Work with marketplace claims",
	Long:  `View marketplace claims enriched with response deadlines and financial impact.`,
}
