package main

import (
	"github.com/spf13/cobra"

	"github.com/voltaic/energy-cms/internal/infrastructure/db/postgres"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Run database migrations",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status"},
	RunE: func(cmd *cobra.Command, args []string) error {
		command := "up"
		if len(args) == 1 {
			command = args[0]
		}

		db, err := postgres.Open(postgres.Config{DSN: cfg.Postgres.URL})
		if err != nil {
			return err
		}
		defer db.Close()

		return postgres.Migrate(cmd.Context(), db, command, log)
	},
}
