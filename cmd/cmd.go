package cmd

import (
	"context"
	"log/slog"

	"github.com/gaze-network/epoch-rewards/internal/config"
	"github.com/gaze-network/epoch-rewards/pkg/logger"
	"github.com/gaze-network/epoch-rewards/pkg/logger/slogx"
	"github.com/spf13/cobra"
)

var cmd = &cobra.Command{
	Use:          "rewards",
	Long:         `Epoch rewards distribution service: closes activity periods into merkle committed payouts and serves claims.`,
	SilenceUsage: true,
}

func init() {
	var configFile string

	// Add global flags
	flags := cmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file, E.g. `./config.yaml`")
	flags.String("database", "postgres", "rewards database, E.g. `postgres` or `memory`")

	// Bind flags to configuration
	config.BindPFlag("modules.rewards.database", flags.Lookup("database"))

	// Initialize configuration and logger on start command
	cobra.OnInitialize(func() {
		// Initialize configuration
		config := config.Parse(configFile)

		// Initialize logger
		if err := logger.Init(config.Logger); err != nil {
			logger.Panic("Failed to initialize logger", slogx.Error(err), slog.Any("config", config.Logger))
		}
	})
}

func Execute(ctx context.Context) {
	// Register sub-commands
	cmd.AddCommand(
		NewVersionCommand(),
		NewRunCommand(),
		NewEpochCommand(),
		NewRootCommand(),
		NewLedgerCommand(),
		NewMigrateCommand(),
	)

	// Execute command
	if err := cmd.ExecuteContext(ctx); err != nil {
		logger.Panic("Failed to execute root command", slogx.Error(err))
	}
}
