// Package pipeline orchestrates one report run: resolve the reporting
// windows, fetch both data sources, render the tables, generate the
// analysis, and publish the result.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"sitewatch/internal/core"
	"sitewatch/internal/period"
	"sitewatch/internal/report"
)

// AnalyticsSource fetches the analytics snapshot for a window pair.
type AnalyticsSource interface {
	Fetch(ctx context.Context, period core.PeriodPair) (*core.AnalyticsSnapshot, error)
}

// SearchSource fetches the search snapshot for a window pair.
type SearchSource interface {
	Fetch(ctx context.Context, period core.PeriodPair) (*core.SearchSnapshot, error)
}

// Analyzer turns rendered report tables into a written analysis.
type Analyzer interface {
	Analyze(ctx context.Context, reportData string) (string, error)
}

// Publisher writes the finished document to its destination.
type Publisher interface {
	Publish(ctx context.Context, title, markdown string) (*core.PublishResult, error)
}

// Options control a single run.
type Options struct {
	// Custom overrides the default trailing window for both sources.
	Custom *core.Period

	// WindowDays is the default window length in days; zero falls back
	// to the standard trailing week. Ignored when Custom is set.
	WindowDays int

	// DryRun renders and analyzes but writes the document to Out
	// instead of publishing.
	DryRun bool
	Out    io.Writer

	// SaveData writes the raw snapshots and the final document to
	// DataDir, named by the run ID.
	SaveData bool
	DataDir  string

	// IncludeVerification appends the raw-data audit footer.
	IncludeVerification bool
}

// Runner wires the pipeline stages together.
type Runner struct {
	analytics AnalyticsSource
	search    SearchSource
	analyzer  Analyzer
	publisher Publisher
	now       func() time.Time
}

// NewRunner builds a runner over the four collaborators.
func NewRunner(analytics AnalyticsSource, search SearchSource, analyzer Analyzer, publisher Publisher) *Runner {
	return &Runner{
		analytics: analytics,
		search:    search,
		analyzer:  analyzer,
		publisher: publisher,
		now:       time.Now,
	}
}

// Run executes one full report run. The returned result is nil for dry
// runs.
func (r *Runner) Run(ctx context.Context, opts Options) (*core.PublishResult, error) {
	runID := uuid.New().String()
	now := r.now().UTC()

	gaPair, err := period.Resolve(opts.Custom, period.AnalyticsDelayDays, opts.WindowDays, now)
	if err != nil {
		return nil, fmt.Errorf("resolving analytics window: %w", err)
	}
	// The search console publishes data days behind the analytics
	// property. A custom range pins both sources to the same dates.
	gscPair, err := period.Resolve(opts.Custom, period.SearchDelayDays, opts.WindowDays, now)
	if err != nil {
		return nil, fmt.Errorf("resolving search window: %w", err)
	}

	log.Info().
		Str("run_id", runID).
		Str("window", gaPair.Current.Start+" to "+gaPair.Current.End).
		Msg("Starting report run")

	ga4, err := r.analytics.Fetch(ctx, gaPair)
	if err != nil {
		return nil, fmt.Errorf("fetching analytics data: %w", err)
	}

	gsc, err := r.search.Fetch(ctx, gscPair)
	if err != nil {
		return nil, fmt.Errorf("fetching search data: %w", err)
	}

	if opts.SaveData {
		if err := saveSnapshots(opts.DataDir, runID, ga4, gsc); err != nil {
			return nil, fmt.Errorf("saving snapshots: %w", err)
		}
	}

	tables, err := report.Compose(ga4, gsc, now)
	if err != nil {
		return nil, fmt.Errorf("composing report tables: %w", err)
	}

	analysis, err := r.analyzer.Analyze(ctx, tables)
	if err != nil {
		return nil, fmt.Errorf("generating analysis: %w", err)
	}

	document := analysis
	if opts.IncludeVerification {
		document += report.VerificationFooter(ga4, gsc)
	}

	if opts.SaveData {
		if err := saveDocument(opts.DataDir, runID, document); err != nil {
			return nil, fmt.Errorf("saving document: %w", err)
		}
	}

	title := fmt.Sprintf("Site Analytics Report %s ~ %s", gaPair.Current.Start, gaPair.Current.End)

	if opts.DryRun {
		out := opts.Out
		if out == nil {
			out = os.Stdout
		}
		fmt.Fprintf(out, "# %s\n\n%s\n", title, document)
		log.Info().Str("run_id", runID).Msg("Dry run complete, nothing published")
		return nil, nil
	}

	result, err := r.publisher.Publish(ctx, title, document)
	if err != nil {
		return nil, fmt.Errorf("publishing report: %w", err)
	}

	log.Info().
		Str("run_id", runID).
		Str("page_url", result.URL).
		Msg("Report run complete")

	return result, nil
}

func saveSnapshots(dir, runID string, ga4 *core.AnalyticsSnapshot, gsc *core.SearchSnapshot) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, runID+"-analytics.json"), ga4); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, runID+"-search.json"), gsc)
}

func saveDocument(dir, runID, document string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, runID+"-report.md"), []byte(document), 0o644)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
