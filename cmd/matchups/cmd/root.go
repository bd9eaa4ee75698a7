// Package cmd holds the matchups CLI commands.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ramonehamilton/matchups/internal/config"
	"github.com/ramonehamilton/matchups/internal/logger"
	"github.com/ramonehamilton/matchups/internal/version"
)

var (
	cfgFile string
	verbose bool

	// cfg is loaded once by the root command before any subcommand runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "matchups",
	Short: "Archetype matchup aggregation and ranking",
	Long: `Archetype matchup aggregation and ranking.

Commands:
    serve      start the REST/WebSocket dashboard server
    rank       print the ranked table from a snapshot directory
    heatmap    write an HTML matchup heatmap from a snapshot directory
`,
	Version:       version.GetVersion(),
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.matchups/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(heatmapCmd)
}

// initConfig loads the TOML config, .env and environment, then installs
// the global logger.
func initConfig() error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	if verbose {
		cfg.Log.Level = "debug"
	}

	return logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		FilePath:   cfg.Log.FilePath,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		MaxBackups: cfg.Log.MaxBackups,
		Service:    version.Service,
		Version:    version.GetVersion(),
	})
}
