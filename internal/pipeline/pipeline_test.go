package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sitewatch/internal/core"
)

type fakeAnalytics struct {
	snapshot *core.AnalyticsSnapshot
	err      error
	gotPair  core.PeriodPair
}

func (f *fakeAnalytics) Fetch(_ context.Context, pair core.PeriodPair) (*core.AnalyticsSnapshot, error) {
	f.gotPair = pair
	return f.snapshot, f.err
}

type fakeSearch struct {
	snapshot *core.SearchSnapshot
	err      error
	gotPair  core.PeriodPair
}

func (f *fakeSearch) Fetch(_ context.Context, pair core.PeriodPair) (*core.SearchSnapshot, error) {
	f.gotPair = pair
	return f.snapshot, f.err
}

type fakeAnalyzer struct {
	analysis string
	err      error
	gotData  string
}

func (f *fakeAnalyzer) Analyze(_ context.Context, data string) (string, error) {
	f.gotData = data
	return f.analysis, f.err
}

type fakePublisher struct {
	result   *core.PublishResult
	err      error
	gotTitle string
	gotBody  string
	called   bool
}

func (f *fakePublisher) Publish(_ context.Context, title, markdown string) (*core.PublishResult, error) {
	f.called = true
	f.gotTitle = title
	f.gotBody = markdown
	return f.result, f.err
}

var testNow = time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC)

func snapshots() (*core.AnalyticsSnapshot, *core.SearchSnapshot) {
	pair := core.PeriodPair{
		Current:  core.Period{Start: "2025-06-11", End: "2025-06-17"},
		Previous: core.Period{Start: "2025-06-04", End: "2025-06-10"},
	}
	ga4 := &core.AnalyticsSnapshot{
		PropertyID: "123",
		FetchedAt:  testNow,
		Overview: core.Overview{
			Period:   pair,
			Current:  core.MetricSet{"sessions": 100},
			Previous: core.MetricSet{"sessions": 80},
			Changes:  core.DeltaSet{"sessions": 25},
		},
	}
	gsc := &core.SearchSnapshot{
		SiteURL:   "sc-domain:example.com",
		FetchedAt: testNow,
		Overview: core.Overview{
			Period:   pair,
			Current:  core.MetricSet{"clicks": 50, "impressions": 1000, "ctr": 0.05, "position": 10},
			Previous: core.MetricSet{"clicks": 40, "impressions": 900, "ctr": 0.044, "position": 12},
			Changes:  core.DeltaSet{"clicks": 25, "impressions": 11.11, "ctr": 13.64, "position": 2},
		},
	}
	return ga4, gsc
}

func newTestRunner() (*Runner, *fakeAnalytics, *fakeSearch, *fakeAnalyzer, *fakePublisher) {
	ga4, gsc := snapshots()
	analytics := &fakeAnalytics{snapshot: ga4}
	search := &fakeSearch{snapshot: gsc}
	analyzer := &fakeAnalyzer{analysis: "## Executive Summary\n\nAll good."}
	publisher := &fakePublisher{result: &core.PublishResult{PageID: "p1", URL: "https://notion.so/p1"}}

	r := NewRunner(analytics, search, analyzer, publisher)
	r.now = func() time.Time { return testNow }
	return r, analytics, search, analyzer, publisher
}

func TestRun_PublishesWithWindowTitle(t *testing.T) {
	r, _, _, analyzer, publisher := newTestRunner()

	result, err := r.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result == nil || result.PageID != "p1" {
		t.Fatalf("Unexpected result: %+v", result)
	}
	if publisher.gotTitle != "Site Analytics Report 2025-06-11 ~ 2025-06-17" {
		t.Errorf("Unexpected title: %q", publisher.gotTitle)
	}
	if !strings.Contains(analyzer.gotData, "GA4-OVERVIEW-START") {
		t.Error("Analyzer should receive the rendered tables")
	}
	if !strings.Contains(publisher.gotBody, "Executive Summary") {
		t.Error("Published body should contain the analysis")
	}
}

func TestRun_WindowsRespectSourceDelays(t *testing.T) {
	r, analytics, search, _, _ := newTestRunner()

	if _, err := r.Run(context.Background(), Options{}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if analytics.gotPair.Current.End != "2025-06-17" {
		t.Errorf("Analytics window should end yesterday, got %s", analytics.gotPair.Current.End)
	}
	if search.gotPair.Current.End != "2025-06-15" {
		t.Errorf("Search window should end three days back, got %s", search.gotPair.Current.End)
	}
}

func TestRun_ConfiguredWindowLength(t *testing.T) {
	r, analytics, search, _, _ := newTestRunner()

	if _, err := r.Run(context.Background(), Options{WindowDays: 14}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if analytics.gotPair.Current.Start != "2025-06-04" || analytics.gotPair.Current.End != "2025-06-17" {
		t.Errorf("Expected a 14-day analytics window, got %s to %s",
			analytics.gotPair.Current.Start, analytics.gotPair.Current.End)
	}
	if search.gotPair.Current.Start != "2025-06-02" || search.gotPair.Current.End != "2025-06-15" {
		t.Errorf("Expected a 14-day search window, got %s to %s",
			search.gotPair.Current.Start, search.gotPair.Current.End)
	}
}

func TestRun_CustomRangePinsBothSources(t *testing.T) {
	r, analytics, search, _, _ := newTestRunner()
	custom := &core.Period{Start: "2025-05-01", End: "2025-05-07"}

	if _, err := r.Run(context.Background(), Options{Custom: custom}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if analytics.gotPair.Current != *custom || search.gotPair.Current != *custom {
		t.Errorf("Custom range should apply to both sources: %+v / %+v",
			analytics.gotPair.Current, search.gotPair.Current)
	}
}

func TestRun_DryRunSkipsPublisher(t *testing.T) {
	r, _, _, _, publisher := newTestRunner()
	var out strings.Builder

	result, err := r.Run(context.Background(), Options{DryRun: true, Out: &out})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result != nil {
		t.Errorf("Dry run should return no result, got %+v", result)
	}
	if publisher.called {
		t.Error("Dry run must not publish")
	}
	if !strings.Contains(out.String(), "Site Analytics Report") {
		t.Error("Dry run should write the document to Out")
	}
}

func TestRun_VerificationFooterAppended(t *testing.T) {
	r, _, _, _, publisher := newTestRunner()

	if _, err := r.Run(context.Background(), Options{IncludeVerification: true}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !strings.Contains(publisher.gotBody, "## Data Verification") {
		t.Error("Expected verification footer in published body")
	}
}

func TestRun_SaveDataWritesSnapshots(t *testing.T) {
	r, _, _, _, _ := newTestRunner()
	dir := t.TempDir()

	if _, err := r.Run(context.Background(), Options{SaveData: true, DataDir: dir}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	var analyticsFile, searchFile, reportFile bool
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), "-analytics.json"):
			analyticsFile = true
		case strings.HasSuffix(e.Name(), "-search.json"):
			searchFile = true
		case strings.HasSuffix(e.Name(), "-report.md"):
			reportFile = true
		}
	}
	if !analyticsFile || !searchFile || !reportFile {
		t.Errorf("Expected analytics, search, and report files, found: %v", names(entries))
	}
}

func TestRun_FetchErrorStopsPipeline(t *testing.T) {
	r, analytics, _, _, publisher := newTestRunner()
	analytics.err = core.ErrUpstreamFailure
	analytics.snapshot = nil

	_, err := r.Run(context.Background(), Options{})
	if err == nil {
		t.Fatal("Expected error from failed fetch")
	}
	if !errors.Is(err, core.ErrUpstreamFailure) {
		t.Errorf("Expected ErrUpstreamFailure, got %v", err)
	}
	if publisher.called {
		t.Error("Publisher must not run after a failed fetch")
	}
}

func names(entries []os.DirEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, filepath.Base(e.Name()))
	}
	return out
}
