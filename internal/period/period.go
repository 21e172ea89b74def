// Package period resolves report windows: a current date range and the
// equal-length comparison range immediately preceding it. All dates are
// ISO YYYY-MM-DD strings, matching what the upstream APIs accept.
package period

import (
	"fmt"
	"time"

	"sitewatch/internal/core"
)

const dateLayout = "2006-01-02"

// Reporting-delay offsets, in days before today, for the default window's
// end date. The search console publishes data two to three days late.
const (
	AnalyticsDelayDays = 1
	SearchDelayDays    = 3
)

// DefaultWindowDays is the window length used when none is configured.
const DefaultWindowDays = 7

// Resolve produces the current/previous window pair. When custom is nil
// the current window is the trailing windowDays (DefaultWindowDays when
// zero or negative) ending delayDays before today; otherwise the custom
// range is used as-is. The previous window always has the same length
// and ends the day before the current window starts.
func Resolve(custom *core.Period, delayDays, windowDays int, now time.Time) (core.PeriodPair, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	var curStart, curEnd time.Time

	if custom != nil {
		var err error
		curStart, err = time.Parse(dateLayout, custom.Start)
		if err != nil {
			return core.PeriodPair{}, fmt.Errorf("invalid start date %q: %w", custom.Start, err)
		}
		curEnd, err = time.Parse(dateLayout, custom.End)
		if err != nil {
			return core.PeriodPair{}, fmt.Errorf("invalid end date %q: %w", custom.End, err)
		}
		if curEnd.Before(curStart) {
			return core.PeriodPair{}, fmt.Errorf("end date %s is before start date %s", custom.End, custom.Start)
		}
	} else {
		today := now.Truncate(24 * time.Hour)
		curEnd = today.AddDate(0, 0, -delayDays)
		curStart = curEnd.AddDate(0, 0, -(windowDays - 1))
	}

	spanDays := int(curEnd.Sub(curStart).Hours() / 24)
	prevEnd := curStart.AddDate(0, 0, -1)
	prevStart := prevEnd.AddDate(0, 0, -spanDays)

	return core.PeriodPair{
		Current:  core.Period{Start: curStart.Format(dateLayout), End: curEnd.Format(dateLayout)},
		Previous: core.Period{Start: prevStart.Format(dateLayout), End: prevEnd.Format(dateLayout)},
	}, nil
}

// ParsePreset maps a named preset to a concrete range ending yesterday.
// Supported presets: last-week (7 days), last-month (30 days),
// last-quarter (90 days).
func ParsePreset(name string, now time.Time) (*core.Period, error) {
	var days int
	switch name {
	case "last-week":
		days = 7
	case "last-month":
		days = 30
	case "last-quarter":
		days = 90
	default:
		return nil, fmt.Errorf("unknown period preset %q (supported: last-week, last-month, last-quarter)", name)
	}

	end := now.Truncate(24 * time.Hour).AddDate(0, 0, -1)
	start := end.AddDate(0, 0, -(days - 1))
	return &core.Period{Start: start.Format(dateLayout), End: end.Format(dateLayout)}, nil
}

// ParseCustom validates an explicit start/end pair. An end date in the
// future is clamped to yesterday rather than rejected.
func ParseCustom(startDate, endDate string, now time.Time) (*core.Period, error) {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q (use YYYY-MM-DD): %w", startDate, err)
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q (use YYYY-MM-DD): %w", endDate, err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end date %s cannot be before start date %s", endDate, startDate)
	}

	yesterday := now.Truncate(24 * time.Hour).AddDate(0, 0, -1)
	if end.After(yesterday) {
		end = yesterday
	}

	return &core.Period{Start: start.Format(dateLayout), End: end.Format(dateLayout)}, nil
}
