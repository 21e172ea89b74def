package metrics

import (
	"fmt"
	"math"

	"sitewatch/internal/core"
)

// round2 rounds to two decimal places, matching the precision the report
// tables display.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Compare computes the period-over-period delta for every metric present
// in current. kinds must declare a Direction for each of those metrics;
// an undeclared metric is a schema mismatch and fails with
// core.ErrInvalidInput.
//
// Rules, per metric:
//   - LowerIsBetter: delta = round(previous - current, 2), at every
//     baseline including zero.
//   - HigherIsBetter with previous > 0: delta =
//     round((current-previous)/previous*100, 2).
//   - HigherIsBetter with previous == 0: 0 when current is also 0,
//     otherwise the fixed sentinel 100 (growth from a zero baseline).
//
// A metric missing from previous is treated as a zero baseline.
func Compare(current, previous core.MetricSet, kinds map[string]Direction) (core.DeltaSet, error) {
	deltas := make(core.DeltaSet, len(current))

	for name, cur := range current {
		kind, ok := kinds[name]
		if !ok {
			return nil, fmt.Errorf("%w: metric %q has no declared direction", core.ErrInvalidInput, name)
		}
		prev := previous[name]

		switch {
		case kind == LowerIsBetter:
			deltas[name] = round2(prev - cur)
		case prev > 0:
			deltas[name] = round2((cur - prev) / prev * 100)
		case cur == 0:
			deltas[name] = 0
		default:
			deltas[name] = 100
		}
	}

	return deltas, nil
}
