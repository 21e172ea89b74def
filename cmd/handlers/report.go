package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"sitewatch/internal/analyzer"
	"sitewatch/internal/config"
	"sitewatch/internal/core"
	"sitewatch/internal/ga4"
	"sitewatch/internal/gsc"
	"sitewatch/internal/metrics"
	"sitewatch/internal/notion"
	"sitewatch/internal/period"
	"sitewatch/internal/pipeline"
)

// NewReportCmd creates the report command
func NewReportCmd() *cobra.Command {
	var (
		dryRun     bool
		saveData   bool
		startDate  string
		endDate    string
		periodName string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate and publish the site analytics report",
		Long: `Fetch the current and previous reporting windows from Google
Analytics and Search Console, generate the written analysis, and
publish it to the configured Notion page.

Examples:
  # Default trailing week
  sitewatch report

  # Preview locally without publishing
  sitewatch report --dry-run

  # Named period
  sitewatch report --period last-month

  # Explicit date range
  sitewatch report --start-date 2025-05-01 --end-date 2025-05-31

  # Keep the raw snapshots for later inspection
  sitewatch report --save-data`,
		RunE: func(cmd *cobra.Command, args []string) error {
			custom, err := resolveRange(startDate, endDate, periodName)
			if err != nil {
				return err
			}
			return runReport(cmd.Context(), custom, dryRun, saveData)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Render and analyze but print instead of publishing")
	cmd.Flags().BoolVar(&saveData, "save-data", false, "Save raw snapshots and the report to the data directory")
	cmd.Flags().StringVar(&startDate, "start-date", "", "Custom range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end-date", "", "Custom range end (YYYY-MM-DD)")
	cmd.Flags().StringVar(&periodName, "period", "", "Named period: last-week, last-month, last-quarter")

	return cmd
}

// resolveRange turns the period flags into an optional custom range.
// Explicit dates and a named period are mutually exclusive.
func resolveRange(startDate, endDate, periodName string) (*core.Period, error) {
	now := time.Now().UTC()

	switch {
	case periodName != "" && (startDate != "" || endDate != ""):
		return nil, fmt.Errorf("--period cannot be combined with --start-date/--end-date")
	case periodName != "":
		return period.ParsePreset(periodName, now)
	case startDate != "" && endDate != "":
		return period.ParseCustom(startDate, endDate, now)
	case startDate != "" || endDate != "":
		return nil, fmt.Errorf("--start-date and --end-date must be given together")
	default:
		return nil, nil
	}
}

func runReport(ctx context.Context, custom *core.Period, dryRun, saveData bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	analytics, err := ga4.NewFetcher(ctx, cfg.Analytics.CredentialsFile, cfg.Analytics.PropertyID)
	if err != nil {
		return err
	}

	search, err := gsc.NewFetcher(ctx, cfg.Search.CredentialsFile, cfg.Search.SiteURL, detectorOptions(cfg))
	if err != nil {
		return err
	}

	ai, err := analyzer.NewClient(ctx, cfg.AI.Gemini.APIKey, analyzer.Options{
		Model:        cfg.AI.Gemini.Model,
		TemplatePath: cfg.AI.Gemini.TemplatePath,
	})
	if err != nil {
		return err
	}

	publisher := notion.NewPublisher(cfg.Notion.Token, cfg.Notion.ParentPageID)

	runner := pipeline.NewRunner(analytics, search, ai, publisher)
	result, err := runner.Run(ctx, pipeline.Options{
		Custom:              custom,
		WindowDays:          cfg.Report.WindowDays,
		DryRun:              dryRun,
		SaveData:            saveData,
		DataDir:             cfg.App.DataDir,
		IncludeVerification: cfg.Report.VerificationSection,
	})
	if err != nil {
		return err
	}

	if result != nil {
		fmt.Printf("Report published: %s\n", result.URL)
	}
	return nil
}

func detectorOptions(cfg *config.Config) metrics.DetectorOptions {
	return metrics.DetectorOptions{
		MinImpressions: cfg.Report.OppMinImpressions,
		MaxCTR:         cfg.Report.OppMaxCTR,
		MaxPosition:    cfg.Report.OppMaxPosition,
		UpliftCTR:      cfg.Report.OppUpliftCTR,
		Limit:          cfg.Report.OppLimit,
	}
}
