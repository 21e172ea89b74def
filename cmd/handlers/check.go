package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"sitewatch/internal/analyzer"
	"sitewatch/internal/ga4"
	"sitewatch/internal/gsc"
	"sitewatch/internal/metrics"
	"sitewatch/internal/notion"
)

var (
	passStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	nameStyle = lipgloss.NewStyle().Width(18)
)

// NewCheckCmd creates the check command
func NewCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify connectivity to all configured services",
		Long: `Ping each upstream service with the configured credentials:
Google Analytics, Search Console, Gemini, and Notion. Exits non-zero
if any check fails.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context())
		},
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

func runCheck(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	checks := []struct {
		name  string
		build func() (pinger, error)
	}{
		{"Google Analytics", func() (pinger, error) {
			return ga4.NewFetcher(ctx, cfg.Analytics.CredentialsFile, cfg.Analytics.PropertyID)
		}},
		{"Search Console", func() (pinger, error) {
			return gsc.NewFetcher(ctx, cfg.Search.CredentialsFile, cfg.Search.SiteURL, metrics.DefaultDetectorOptions())
		}},
		{"Gemini", func() (pinger, error) {
			return analyzer.NewClient(ctx, cfg.AI.Gemini.APIKey, analyzer.Options{Model: cfg.AI.Gemini.Model})
		}},
		{"Notion", func() (pinger, error) {
			return notion.NewPublisher(cfg.Notion.Token, cfg.Notion.ParentPageID), nil
		}},
	}

	failed := 0
	for _, check := range checks {
		client, err := check.build()
		if err == nil {
			err = client.Ping(ctx)
		}

		if err != nil {
			failed++
			fmt.Printf("%s %s %v\n", nameStyle.Render(check.name), failStyle.Render("FAIL"), err)
		} else {
			fmt.Printf("%s %s\n", nameStyle.Render(check.name), passStyle.Render("OK"))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(checks))
	}
	fmt.Println("\nAll services reachable.")
	return nil
}
