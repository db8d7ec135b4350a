// Package commands implements the splitpay CLI.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitpay/internal/config"
	"github.com/mmynk/splitpay/internal/storage/sqlite"
	"github.com/mmynk/splitpay/pkg/logging"
)

// Version is set at build time with -ldflags "-X".
var Version = "dev"

type globalFlags struct {
	envFile string
	dbPath  string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:     "splitpay",
		Short:   "Shared expenses settled with on-chain transfers",
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file loaded before the environment")
	rootCmd.PersistentFlags().StringVar(&flags.dbPath, "db", "", "SQLite database path (overrides SPLITPAY_DB_PATH)")

	rootCmd.AddCommand(
		newServeCommand(&flags),
		newPlanCommand(),
		newBalancesCommand(&flags),
		newReconcileCommand(&flags),
		newExportCommand(&flags),
	)

	return rootCmd
}

// loadConfig reads the configuration, applies the global flag overrides and
// installs the logger.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.envFile)
	if err != nil {
		return nil, err
	}
	if flags.dbPath != "" {
		cfg.DBPath = flags.dbPath
	}
	if err := logging.Configure(cfg.LogLevel, cfg.LogFormat); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (*sqlite.SQLiteStore, error) {
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", cfg.DBPath, err)
	}
	return store, nil
}
