package report

import (
	"errors"
	"strings"
	"testing"

	"sitewatch/internal/core"
)

func sampleSection(rows []Row) Section {
	return Section{
		Title:    "Traffic Sources",
		Marker:   "GA4-SOURCES",
		IDPrefix: "SRC",
		Columns: []Column{
			{Name: "source", Header: "Source", Kind: KindText, MaxLen: MaxPathLen, Required: true},
			{Name: "sessions", Header: "Sessions", Kind: KindNumber},
			{Name: "bounceRate", Header: "Bounce Rate (%)", Kind: KindRate},
		},
		Rows: rows,
	}
}

func TestRender_IDsAndMarkers(t *testing.T) {
	rows := []Row{
		{"source": "google", "sessions": int64(1200), "bounceRate": 0.455},
		{"source": "direct", "sessions": int64(800), "bounceRate": 0.4},
		{"source": "bing", "sessions": int64(50), "bounceRate": 0.61},
	}

	out, err := Render([]Section{sampleSection(rows)})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	for _, want := range []string{
		"<!-- GA4-SOURCES-START -->",
		"<!-- GA4-SOURCES-END -->",
		"## Traffic Sources",
		"| SRC001 | google |",
		"| SRC002 | direct |",
		"| SRC003 | bing |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}

func TestRender_EmptySectionKeepsMarkers(t *testing.T) {
	out, err := Render([]Section{sampleSection(nil)})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if !strings.Contains(out, "<!-- GA4-SOURCES-START -->") || !strings.Contains(out, "<!-- GA4-SOURCES-END -->") {
		t.Errorf("Empty section should keep boundary markers:\n%s", out)
	}
	if strings.Contains(out, "| ID |") {
		t.Errorf("Empty section should not emit a table header:\n%s", out)
	}
}

func TestRender_RateConversion(t *testing.T) {
	rows := []Row{{"source": "google", "sessions": int64(10), "bounceRate": 0.455}}

	out, err := Render([]Section{sampleSection(rows)})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if !strings.Contains(out, "| 45.5 |") {
		t.Errorf("Expected 0.455 rendered as 45.5:\n%s", out)
	}
}

func TestRender_MissingOptionalCellBecomesNA(t *testing.T) {
	rows := []Row{{"source": "google", "sessions": int64(10)}}

	out, err := Render([]Section{sampleSection(rows)})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if !strings.Contains(out, "| N/A |") {
		t.Errorf("Expected N/A for missing bounceRate cell:\n%s", out)
	}
}

func TestRender_RequiredColumnMissing(t *testing.T) {
	rows := []Row{{"sessions": int64(10)}}

	_, err := Render([]Section{sampleSection(rows)})
	if err == nil {
		t.Fatal("Expected error for required column absent from every row")
	}
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestRender_TextTruncation(t *testing.T) {
	long := strings.Repeat("a", 80)
	rows := []Row{{"source": long, "sessions": int64(1)}}

	out, err := Render([]Section{sampleSection(rows)})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if strings.Contains(out, long) {
		t.Error("Expected long source value to be truncated")
	}
	if !strings.Contains(out, strings.Repeat("a", MaxPathLen)+" |") {
		t.Errorf("Expected truncation to exactly %d runes:\n%s", MaxPathLen, out)
	}
}

func TestFormatCell_Duration(t *testing.T) {
	col := Column{Kind: KindDuration}

	if got := formatCell(125.0, col); got != "2:05" {
		t.Errorf("Expected 2:05, got %q", got)
	}
	if got := formatCell(59.0, col); got != "0:59" {
		t.Errorf("Expected 0:59, got %q", got)
	}
}

func TestFormatCell_NumberTrimsTrailingZeros(t *testing.T) {
	col := Column{Kind: KindNumber}

	if got := formatCell(12.0, col); got != "12" {
		t.Errorf("Expected 12, got %q", got)
	}
	if got := formatCell(3.456, col); got != "3.46" {
		t.Errorf("Expected 3.46, got %q", got)
	}
}
