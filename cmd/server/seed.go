package main

import (
	"github.com/spf13/cobra"

	"github.com/voltaic/energy-cms/internal/app"
	"github.com/voltaic/energy-cms/internal/seed"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load fixture content into empty tables",
	Long: `seed inserts fixture records for every content kind that has no records yet
and provisions the fixture admin account when it does not exist.

Without --file the built-in fixtures are used.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		fx, err := seed.Load(seedFile)
		if err != nil {
			return err
		}

		a, err := app.New(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.Seeder().Run(cmd.Context(), fx)
		if err != nil {
			return err
		}
		log.Info().
			Interface("inserted", report.Inserted).
			Interface("skipped", report.Skipped).
			Bool("admin_created", report.AdminCreated).
			Msg("seed complete")
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "YAML fixture file")
}
