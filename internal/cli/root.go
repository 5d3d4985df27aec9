package cli

import (
	"github.com/spf13/cobra"

	"github.com/eleven-am/inventory/internal/logger"
	"github.com/eleven-am/inventory/pkg/version"
)

// Global configuration variables
var (
	configFile     string
	appConfig      *Config
	databaseURL    string
	databaseDriver string
	debug          bool
	verbose        bool
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "inventory",
		Short: "Inventory - track, tag and check out items",
		Long: `Inventory keeps track of physical items and the containers they live in.

Items carry free-form key/value tags and can be checked out and back in.
Everything is stored in SQLite by default; PostgreSQL works too.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configFile)
			if err != nil {
				return err
			}

			if databaseURL != "" {
				cfg.Database.URL = databaseURL
			}
			if databaseDriver != "" {
				cfg.Database.Driver = databaseDriver
			}

			level := cfg.Log.Level
			if debug || verbose {
				level = logger.LevelFromFlags(debug, verbose)
			}

			logger.Configure(logger.Options{
				Level:      level,
				File:       cfg.Log.File,
				MaxSizeMB:  cfg.Log.MaxSizeMB,
				MaxBackups: cfg.Log.MaxBackups,
				MaxAgeDays: cfg.Log.MaxAgeDays,
				Compress:   cfg.Log.Compress,
			})

			appConfig = cfg
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: inventory.yaml)")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "url", "", "database URL or SQLite file path")
	rootCmd.PersistentFlags().StringVar(&databaseDriver, "driver", "", "database driver (sqlite, postgres)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose output")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(newItemCommand())
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}
