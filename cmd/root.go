package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqlpilot/sqlpilot/internal/config"
	"github.com/sqlpilot/sqlpilot/internal/logging"
)

var (
	flagDriver         string
	flagDSN            string
	flagSchema         string
	flagLogLevel       string
	flagAddr           string
	flagDuplicateCheck bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "sqlpilot",
	Short: "Talk to your database in plain language",
	Long: `sqlpilot turns natural language requests into validated, safely executed SQL.
It carries conversation state across turns, so when a request is missing
required values it asks for them one at a time before anything touches the
database. Mutations without a WHERE clause are refused outright.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		overrides := map[string]interface{}{
			"driver":    flagDriver,
			"dsn":       flagDSN,
			"schema":    flagSchema,
			"log-level": flagLogLevel,
			"addr":      flagAddr,
		}

		// A bool flag only overrides the config when actually set.
		if cmd.Flags().Changed("duplicate-check") {
			overrides["duplicate-check"] = flagDuplicateCheck
		}

		loaded, err := config.LoadConfigWithOverrides(overrides)
		if err != nil {
			return err
		}

		loaded.ExpandAllPaths()

		if err := logging.InitializeLogger(loaded.Logging); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}

		cfg = loaded

		return nil
	},
}

func Execute() error {
	ctx := context.Background()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Println("Error:", err)
	}

	return err
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagDriver, "driver", "", "database driver (sqlite, mysql, postgres, duckdb, sqlserver)")
	pf.StringVar(&flagDSN, "dsn", "", "database connection string")
	pf.StringVar(&flagSchema, "schema", "", "path to a YAML schema file (default: introspect the database)")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&flagAddr, "addr", "", "listen address for the serve command")
	pf.BoolVar(&flagDuplicateCheck, "duplicate-check", false, "probe for an existing row by name before inserting")
}
