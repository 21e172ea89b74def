package gsc

import (
	"testing"

	searchconsole "google.golang.org/api/searchconsole/v1"
)

func row(query string, clicks, impressions, ctr, position float64) *searchconsole.ApiDataRow {
	return &searchconsole.ApiDataRow{
		Keys:        []string{query},
		Clicks:      clicks,
		Impressions: impressions,
		Ctr:         ctr,
		Position:    position,
	}
}

func TestMergeQueryRows_ComparisonFields(t *testing.T) {
	current := []*searchconsole.ApiDataRow{
		row("go tutorial", 40, 900, 0.044, 8.2),
		row("brand new", 10, 200, 0.05, 15),
	}
	prior := []*searchconsole.ApiDataRow{
		row("go tutorial", 30, 800, 0.0375, 10.5),
	}

	got := mergeQueryRows(current, prior)
	if len(got) != 2 {
		t.Fatalf("Expected 2 queries, got %d", len(got))
	}

	returning := got[0]
	if returning.ClicksChange != 10 {
		t.Errorf("Expected clicks change 10, got %d", returning.ClicksChange)
	}
	if returning.PositionChange < 2.29 || returning.PositionChange > 2.31 {
		t.Errorf("Expected position change ~2.3 (moved up), got %v", returning.PositionChange)
	}
	if returning.IsNew {
		t.Error("Query present in both windows should not be marked new")
	}

	fresh := got[1]
	if !fresh.IsNew {
		t.Error("Query absent from the previous window should be marked new")
	}
	if fresh.ClicksChange != 0 || fresh.PositionChange != 0 {
		t.Errorf("New query should carry zero change fields, got %d / %v", fresh.ClicksChange, fresh.PositionChange)
	}
}

func TestMergeQueryRows_PreservesOrder(t *testing.T) {
	current := []*searchconsole.ApiDataRow{
		row("first", 100, 1000, 0.1, 1),
		row("second", 50, 1000, 0.05, 2),
		row("third", 10, 1000, 0.01, 3),
	}

	got := mergeQueryRows(current, nil)
	if got[0].Query != "first" || got[1].Query != "second" || got[2].Query != "third" {
		t.Errorf("Input order not preserved: %q, %q, %q", got[0].Query, got[1].Query, got[2].Query)
	}
}

func TestMergeQueryRows_SkipsKeylessRows(t *testing.T) {
	current := []*searchconsole.ApiDataRow{
		{Clicks: 5},
		row("valid", 10, 100, 0.1, 5),
	}

	got := mergeQueryRows(current, nil)
	if len(got) != 1 || got[0].Query != "valid" {
		t.Errorf("Expected only the keyed row, got %+v", got)
	}
}

func TestClickShare(t *testing.T) {
	if got := clickShare(80, 120); got < 66.6 || got > 66.7 {
		t.Errorf("Expected ~66.67, got %v", got)
	}
	if got := clickShare(5, 0); got != 0 {
		t.Errorf("Zero total should yield zero share, got %v", got)
	}
}
