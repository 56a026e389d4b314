// Command server runs the content API and its maintenance tasks.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/voltaic/energy-cms/internal/infrastructure/config"
	"github.com/voltaic/energy-cms/pkg/logger"
)

var (
	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Energy storage website content API",
	Long: `server runs the public content API and the admin panel backend.

Configuration is read from environment variables (see DESIGN.md).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loaded, err := config.Load(cmd.Context())
		if err != nil {
			return err
		}
		cfg = loaded
		log = logger.Init(logger.Options{
			Level:   cfg.LogLevel,
			Pretty:  cfg.PrettyLogs(),
			Service: "energy-cms",
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, createAdminCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
