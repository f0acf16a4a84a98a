package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/repetix/repetix-api/internal/platform/logger"
	"github.com/repetix/repetix-api/internal/platform/postgres"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	var (
		verbose bool
		dir     string
	)

	cmd := &cobra.Command{
		Use:   "migrate [up|down|reset|status|version|create NAME]",
		Short: "Manage the database schema",
		Long: `Runs goose migrations embedded in the binary against database.url.

  up       apply all pending migrations
  down     roll back the latest migration
  reset    roll back every migration
  status   print the state of each migration
  version  print the current schema version
  create   write a new empty SQL migration named NAME`,
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: []string{"up", "down", "reset", "status", "version", "create"},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := args[0]
			if command == postgres.MigrateCreate && len(args) != 2 {
				return fmt.Errorf("migration name is required for 'create' command")
			}
			if command != postgres.MigrateCreate && len(args) != 1 {
				return fmt.Errorf("'%s' takes no arguments", command)
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			level := cfg.Server.LogLevel
			if verbose {
				level = "debug"
			}
			log := logger.New(os.Stderr, level)

			db, err := postgres.Open(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(); err != nil {
					log.Error("failed to close database connection", slog.String("error", err.Error()))
				}
			}()

			return postgres.Migrate(cmd.Context(), db, command, postgres.MigrateOptions{
				Logger:  log,
				Verbose: verbose,
				Dir:     dir,
			}, args[1:]...)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose migration output")
	cmd.Flags().StringVar(&dir, "dir", "", "directory for new migrations (create only)")
	return cmd
}
