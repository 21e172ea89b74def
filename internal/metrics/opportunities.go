package metrics

import (
	"math"
	"sort"

	"sitewatch/internal/core"
)

// DetectorOptions tune the opportunity filter. Zero values fall back to
// the defaults below.
type DetectorOptions struct {
	MinImpressions int64   // qualify at or above this impression count
	MaxCTR         float64 // qualify strictly below this CTR (0-1 fraction)
	MaxPosition    float64 // qualify at or above this ranking (lower number = better)
	UpliftCTR      float64 // assumed CTR after optimization, for the uplift estimate
	Limit          int     // cap on returned opportunities
}

// DefaultDetectorOptions are the production thresholds: at least 50
// impressions, CTR under 3%, ranked in the top 20, uplift estimated at 5%.
func DefaultDetectorOptions() DetectorOptions {
	return DetectorOptions{
		MinImpressions: 50,
		MaxCTR:         0.03,
		MaxPosition:    20,
		UpliftCTR:      0.05,
		Limit:          10,
	}
}

func (o DetectorOptions) withDefaults() DetectorOptions {
	def := DefaultDetectorOptions()
	if o.MinImpressions == 0 {
		o.MinImpressions = def.MinImpressions
	}
	if o.MaxCTR == 0 {
		o.MaxCTR = def.MaxCTR
	}
	if o.MaxPosition == 0 {
		o.MaxPosition = def.MaxPosition
	}
	if o.UpliftCTR == 0 {
		o.UpliftCTR = def.UpliftCTR
	}
	if o.Limit == 0 {
		o.Limit = def.Limit
	}
	return o
}

// DetectOpportunities filters queries with high impressions but weak CTR
// despite a workable ranking, and estimates the clicks a CTR fix would
// recover. Output is sorted by impressions descending; ties keep their
// input order. Empty input yields an empty slice, never an error.
func DetectOpportunities(records []core.QueryStat, opts DetectorOptions) []core.Opportunity {
	opts = opts.withDefaults()

	opportunities := make([]core.Opportunity, 0, len(records))
	for _, rec := range records {
		if rec.Impressions < opts.MinImpressions || rec.CTR >= opts.MaxCTR || rec.Position > opts.MaxPosition {
			continue
		}
		opportunities = append(opportunities, core.Opportunity{
			Query:           rec.Query,
			Clicks:          rec.Clicks,
			Impressions:     rec.Impressions,
			CTR:             rec.CTR,
			Position:        rec.Position,
			PotentialClicks: int64(math.Round(float64(rec.Impressions) * opts.UpliftCTR)),
		})
	}

	sort.SliceStable(opportunities, func(i, j int) bool {
		return opportunities[i].Impressions > opportunities[j].Impressions
	})

	if len(opportunities) > opts.Limit {
		opportunities = opportunities[:opts.Limit]
	}
	return opportunities
}
