// Package metrics implements the period comparison and opportunity
// detection stages of the report pipeline. Both are pure functions over
// their inputs.
package metrics

// Direction declares how a metric's period-over-period delta is computed
// and read. It is an explicit property of each schema entry, never
// inferred from the metric's name.
type Direction int

const (
	// HigherIsBetter metrics use the ratio rule: delta is the percentage
	// change relative to the previous value.
	HigherIsBetter Direction = iota

	// LowerIsBetter metrics use the absolute rule: delta is previous
	// minus current, so a positive delta is an improvement. Used for
	// ranking positions, which have no meaningful percentage baseline
	// near zero.
	LowerIsBetter
)

// GA4Schema is the closed metric vocabulary for the analytics property.
// bounceRate and engagementRate keep the ratio rule: their deltas are
// percentage changes whose sign the report consumer reads in context.
var GA4Schema = map[string]Direction{
	"activeUsers":            HigherIsBetter,
	"newUsers":               HigherIsBetter,
	"sessions":               HigherIsBetter,
	"bounceRate":             HigherIsBetter,
	"engagementRate":         HigherIsBetter,
	"screenPageViews":        HigherIsBetter,
	"averageSessionDuration": HigherIsBetter,
}

// GSCSchema is the closed metric vocabulary for the search console.
// position is the one metric in either vocabulary carrying the
// absolute-improvement rule.
var GSCSchema = map[string]Direction{
	"clicks":      HigherIsBetter,
	"impressions": HigherIsBetter,
	"ctr":         HigherIsBetter,
	"position":    LowerIsBetter,
}

// GA4MetricOrder fixes the display order of the analytics overview table.
var GA4MetricOrder = []string{
	"activeUsers",
	"newUsers",
	"sessions",
	"bounceRate",
	"engagementRate",
	"screenPageViews",
	"averageSessionDuration",
}

// GSCMetricOrder fixes the display order of the search overview table.
var GSCMetricOrder = []string{
	"clicks",
	"impressions",
	"ctr",
	"position",
}
