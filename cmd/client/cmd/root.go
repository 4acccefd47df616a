// cmd/client/cmd/root.go
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"

	"github.com/upreis/reistooq-core-sub019/internal/app/client"
	"github.com/upreis/reistooq-core-sub019/internal/app/client/config"
	"github.com/upreis/reistooq-core-sub019/internal/utils/logger"
)

var (
	cfg        *config.Config
	log        *slog.Logger
	app        *client.App
	jsonOutput bool
	serverURL  string
)

var rootCmd = &cobra.Command{
	Use:   "reistooq",
	Short: "ReisTooq - marketplace claims console",
	Long: `ReisTooq is the operator console for marketplace claims:
it lists claims with response deadlines and financial impact, drives
background synchronizations and manages the claims cache.`,
	PersistentPreRunE: setupApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	cfg = config.MustLoad()

	if serverURL != "" {
		cfg.ServerAddress = serverURL
	}

	log = logger.New(cfg.Env)
	app = client.New(cfg, log)

	cmd.SetContext(client.WithApp(cmd.Context(), app))

	return nil
}

func init() {
	cobra.OnInitialize()

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "claims server address")
}
