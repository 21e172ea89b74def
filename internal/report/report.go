// Package report renders the fetched analytics data as ID-tagged markdown
// tables for the generation step. Every section is wrapped in boundary
// markers so the generated analysis can cite marker-scoped row IDs and so
// an empty section is still visibly present.
package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"sitewatch/internal/core"
)

// Truncation limits for free-text cells, to bound token volume.
const (
	MaxPathLen  = 50
	MaxQueryLen = 40
)

// notAvailable is substituted for any missing optional cell.
const notAvailable = "N/A"

// ColumnKind selects how a cell value is formatted.
type ColumnKind int

const (
	// KindText renders strings verbatim, truncated to Column.MaxLen.
	KindText ColumnKind = iota
	// KindNumber renders integers and floats as plain numbers.
	KindNumber
	// KindRate converts a 0-1 fraction to a percentage, two decimals.
	KindRate
	// KindPercent renders a value that is already a percentage.
	KindPercent
	// KindDuration renders seconds as m:ss.
	KindDuration
)

// Column describes one table column: the row key it reads, the header it
// prints, and how its cells are formatted. Required columns must exist on
// at least one row of the section or Render fails; optional columns fall
// back to N/A per cell.
type Column struct {
	Name     string
	Header   string
	Kind     ColumnKind
	MaxLen   int
	Required bool
}

// Row maps column names to raw values.
type Row map[string]any

// Section is one table of the report: a title, a boundary marker token,
// an ID prefix, a column schema, and the rows to print. Rows arrive
// sorted and capped by the caller; Render never re-orders or filters.
type Section struct {
	Title    string
	Marker   string
	IDPrefix string
	Columns  []Column
	Rows     []Row
}

// Render formats the sections in order. Each section emits
// <!-- MARKER-START -->, a heading, the table (when it has rows), and
// <!-- MARKER-END -->. Row IDs are <PREFIX><3-digit sequence> starting at
// 001, unique within their table only.
func Render(sections []Section) (string, error) {
	var b strings.Builder

	for _, sec := range sections {
		if err := sec.validate(); err != nil {
			return "", err
		}

		fmt.Fprintf(&b, "<!-- %s-START -->\n", sec.Marker)
		fmt.Fprintf(&b, "## %s\n\n", sec.Title)

		if len(sec.Rows) > 0 {
			writeTable(&b, sec)
		}

		fmt.Fprintf(&b, "<!-- %s-END -->\n\n", sec.Marker)
	}

	return b.String(), nil
}

// validate fails with core.ErrInvalidInput when a required column is
// absent from every row of a non-empty section.
func (s Section) validate() error {
	if len(s.Rows) == 0 {
		return nil
	}
	for _, col := range s.Columns {
		if !col.Required {
			continue
		}
		found := false
		for _, row := range s.Rows {
			if _, ok := row[col.Name]; ok {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: section %q: required column %q absent from every row", core.ErrInvalidInput, s.Title, col.Name)
		}
	}
	return nil
}

func writeTable(b *strings.Builder, sec Section) {
	b.WriteString("| ID |")
	for _, col := range sec.Columns {
		fmt.Fprintf(b, " %s |", col.Header)
	}
	b.WriteString("\n|----|")
	for range sec.Columns {
		b.WriteString("----|")
	}
	b.WriteString("\n")

	for i, row := range sec.Rows {
		fmt.Fprintf(b, "| %s%03d |", sec.IDPrefix, i+1)
		for _, col := range sec.Columns {
			fmt.Fprintf(b, " %s |", formatCell(row[col.Name], col))
		}
		b.WriteString("\n")
	}
}

// formatCell renders one cell. A nil value (missing key) becomes the
// not-available marker; formatting never fails.
func formatCell(v any, col Column) string {
	if v == nil {
		return notAvailable
	}

	switch col.Kind {
	case KindText:
		s, ok := v.(string)
		if !ok {
			return fmt.Sprintf("%v", v)
		}
		return truncate(s, col.MaxLen)
	case KindRate:
		f, ok := toFloat(v)
		if !ok {
			return notAvailable
		}
		return formatFloat(round2(f * 100))
	case KindPercent:
		f, ok := toFloat(v)
		if !ok {
			return notAvailable
		}
		return formatFloat(round2(f))
	case KindDuration:
		f, ok := toFloat(v)
		if !ok {
			return notAvailable
		}
		mins := int(f) / 60
		secs := int(f) % 60
		return fmt.Sprintf("%d:%02d", mins, secs)
	default: // KindNumber
		switch n := v.(type) {
		case int:
			return strconv.Itoa(n)
		case int64:
			return strconv.FormatInt(n, 10)
		case float64:
			return formatFloat(round2(n))
		default:
			return fmt.Sprintf("%v", v)
		}
	}
}

// truncate cuts s to max runes. Zero max means unbounded.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// formatFloat prints without trailing zeros: 45.5 not 45.50, 12 not 12.00.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
