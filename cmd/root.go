package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geocopy/internal/config"
)

// cfg is loaded once per invocation, before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "geocopy",
	Short: "Convert geographic features into a PostgreSQL COPY script",
	Long: `geocopy turns census-block features into a psql load script.

The script creates the target table and fills it with COPY ... FROM stdin
inside one transaction. Settings come from ./config.yaml and GEOCOPY_*
environment variables; command flags win over both. Logs go to stderr.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loaded, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "geocopy: load config")
		}
		if err := config.InitLogger(loaded.Log); err != nil {
			return eris.Wrap(err, "geocopy: init logger")
		}
		cfg = loaded

		zap.L().Debug("config loaded", zap.String("command", cmd.Name()))
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
