// Command foodbridge runs the food donation coordination server.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/foodbridge/foodbridge/internal/config"
)

// Set at build time with -ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// flagValues are the command line overrides of config.Config.
type flagValues struct {
	dbPath     string
	addr       string
	logPath    string
	logLevel   string
	adminEmail string
}

func rootCmd() *cobra.Command {
	var fv flagValues

	cmd := &cobra.Command{
		Use:           "foodbridge",
		Short:         "Food donation coordination server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&fv.dbPath, "db", "d", "", "SQLite database path (env FOODBRIDGE_DB_PATH)")
	cmd.PersistentFlags().StringVarP(&fv.logPath, "log", "l", "", "also write logs to this file (env FOODBRIDGE_LOG_PATH)")
	cmd.PersistentFlags().StringVar(&fv.logLevel, "log-level", "", "log level: debug, info, warn, error (env FOODBRIDGE_LOG_LEVEL)")
	cmd.PersistentFlags().StringVar(&fv.adminEmail, "admin-email", "", "admin email on first run (env FOODBRIDGE_ADMIN_EMAIL)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closeLog, err := prepare(cmd, fv)
			if err != nil {
				return err
			}
			defer closeLog()
			return serve(cfg)
		},
	}
	serveCmd.Flags().StringVarP(&fv.addr, "addr", "a", "", "listen address (env FOODBRIDGE_ADDR)")

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new database and admin account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closeLog, err := prepare(cmd, fv)
			if err != nil {
				return err
			}
			defer closeLog()

			if _, err := os.Stat(cfg.DBPath); err == nil {
				return fmt.Errorf("database file %s already exists", cfg.DBPath)
			} else if !errors.Is(err, os.ErrNotExist) {
				return err
			}

			database, password, err := initDatabase(context.Background(), cfg.DBPath, cfg.AdminEmail)
			if err != nil {
				return err
			}
			database.Close()

			printInitResult(cfg.DBPath, cfg.AdminEmail, password)
			return nil
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "foodbridge version %s (build: %s)\n", Version, BuildTime)
		},
	}

	cmd.AddCommand(serveCmd, initCmd, versionCmd)
	return cmd
}

// prepare loads the environment config, applies flags that were set
// explicitly and installs the logger.
func prepare(cmd *cobra.Command, fv flagValues) (*config.Config, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	applyFlags(cmd, fv, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	closeLog, err := setupLogger(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, closeLog, nil
}

func applyFlags(cmd *cobra.Command, fv flagValues, cfg *config.Config) {
	set := func(name string, dst *string, v string) {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			*dst = v
		}
	}
	set("db", &cfg.DBPath, fv.dbPath)
	set("addr", &cfg.Addr, fv.addr)
	set("log", &cfg.LogPath, fv.logPath)
	set("log-level", &cfg.LogLevel, fv.logLevel)
	set("admin-email", &cfg.AdminEmail, fv.adminEmail)
}
