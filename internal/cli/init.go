package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	initForce bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create inventory.yaml and the database schema",
	Long: `Creates an inventory.yaml configuration file with default settings and
creates the items and tag_associations tables in the configured database.
Existing tables are left untouched.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing configuration file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = defaultConfigFile
	}

	cfg := appConfig
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if _, err := os.Stat(configPath); err == nil && !initForce {
		fmt.Fprintf(cmd.OutOrStdout(), "%s already exists, keeping it (use --force to overwrite)\n", configPath)
	} else {
		out := DefaultConfig()
		out.Database = cfg.Database
		if err := SaveConfig(out, configPath); err != nil {
			return fmt.Errorf("failed to save configuration: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", configPath)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// openStore creates any missing tables
	_, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	fmt.Fprintf(cmd.OutOrStdout(), "Schema ready (%s)\n", cfg.Database.Driver)
	return nil
}
