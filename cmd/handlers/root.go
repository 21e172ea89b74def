package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sitewatch/internal/config"
	"sitewatch/internal/logger"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sitewatch",
		Short: "Sitewatch generates and publishes site analytics reports.",
		Long: `Sitewatch pulls traffic data from Google Analytics and search
performance from Google Search Console, compares both against the
previous period, asks Gemini to write the analysis, and publishes the
finished report to a Notion page.

Typical usage:
  # Publish the weekly report
  sitewatch report

  # Preview without publishing
  sitewatch report --dry-run

  # Verify all credentials
  sitewatch check`,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.sitewatch.yaml)")

	rootCmd.AddCommand(NewReportCmd())
	rootCmd.AddCommand(NewCheckCmd())
	rootCmd.AddCommand(NewConfigCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads configuration and initializes logging for commands
// that need the full stack.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(cfg.App.Debug)
	return cfg, nil
}
