// Package gsc fetches search performance data from the Google Search
// Console and shapes it into the pipeline's snapshot types.
package gsc

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
	searchconsole "google.golang.org/api/searchconsole/v1"

	"sitewatch/internal/core"
	"sitewatch/internal/metrics"
)

// queryFetchLimit is deliberately wider than the report's query cap so
// the opportunity detector sees the long tail, not just the head.
const (
	queryFetchLimit = 100
	pageLimit       = 15
	countryLimit    = 10
)

// Fetcher reads search analytics for one verified site.
type Fetcher struct {
	svc     *searchconsole.Service
	siteURL string
	opts    metrics.DetectorOptions
}

// NewFetcher builds a read-only client from a service-account
// credentials file. siteURL is the property identifier, either a URL
// prefix or an sc-domain: property.
func NewFetcher(ctx context.Context, credentialsFile, siteURL string, opts metrics.DetectorOptions) (*Fetcher, error) {
	svc, err := searchconsole.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(searchconsole.WebmastersReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: creating search console client: %v", core.ErrUpstreamFailure, err)
	}
	return &Fetcher{svc: svc, siteURL: siteURL, opts: opts}, nil
}

// Fetch pulls the overview pair, the query and page breakdowns, device
// and country splits, and the derived CTR opportunities.
func (f *Fetcher) Fetch(ctx context.Context, period core.PeriodPair) (*core.SearchSnapshot, error) {
	overview, err := f.fetchOverview(ctx, period)
	if err != nil {
		return nil, err
	}

	queries, opportunities, err := f.fetchQueries(ctx, period)
	if err != nil {
		return nil, err
	}

	pages, err := f.fetchPages(ctx, period.Current)
	if err != nil {
		return nil, err
	}

	devices, err := f.fetchDevices(ctx, period.Current)
	if err != nil {
		return nil, err
	}

	countries, err := f.fetchCountries(ctx, period.Current)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("site", f.siteURL).
		Int("queries", len(queries)).
		Int("opportunities", len(opportunities)).
		Msg("Search console fetch complete")

	return &core.SearchSnapshot{
		SiteURL:       f.siteURL,
		FetchedAt:     time.Now().UTC(),
		Overview:      overview,
		Queries:       queries,
		Pages:         pages,
		Devices:       devices,
		Countries:     countries,
		Opportunities: opportunities,
	}, nil
}

func (f *Fetcher) fetchOverview(ctx context.Context, period core.PeriodPair) (core.Overview, error) {
	current, err := f.fetchTotals(ctx, period.Current)
	if err != nil {
		return core.Overview{}, err
	}
	previous, err := f.fetchTotals(ctx, period.Previous)
	if err != nil {
		return core.Overview{}, err
	}

	changes, err := metrics.Compare(current, previous, metrics.GSCSchema)
	if err != nil {
		return core.Overview{}, err
	}

	return core.Overview{Period: period, Current: current, Previous: previous, Changes: changes}, nil
}

// fetchTotals runs a dimensionless query: the API returns a single
// aggregate row, or none for a window with no data.
func (f *Fetcher) fetchTotals(ctx context.Context, window core.Period) (core.MetricSet, error) {
	resp, err := f.query(ctx, window, nil, 1)
	if err != nil {
		return nil, err
	}

	set := core.MetricSet{"clicks": 0, "impressions": 0, "ctr": 0, "position": 0}
	if len(resp.Rows) > 0 {
		row := resp.Rows[0]
		set["clicks"] = row.Clicks
		set["impressions"] = row.Impressions
		set["ctr"] = row.Ctr
		set["position"] = row.Position
	}
	return set, nil
}

// fetchQueries pulls both windows at query granularity, resolves
// per-query period-over-period fields against the previous window, and
// runs opportunity detection over the full current set.
func (f *Fetcher) fetchQueries(ctx context.Context, period core.PeriodPair) ([]core.QueryStat, []core.Opportunity, error) {
	curResp, err := f.query(ctx, period.Current, []string{"query"}, queryFetchLimit)
	if err != nil {
		return nil, nil, err
	}
	prevResp, err := f.query(ctx, period.Previous, []string{"query"}, queryFetchLimit)
	if err != nil {
		return nil, nil, err
	}

	queries := mergeQueryRows(curResp.Rows, prevResp.Rows)
	return queries, metrics.DetectOpportunities(queries, f.opts), nil
}

// mergeQueryRows joins current-window query rows against the previous
// window by query text, preserving the API's click-descending order.
func mergeQueryRows(current, prior []*searchconsole.ApiDataRow) []core.QueryStat {
	previous := make(map[string]*searchconsole.ApiDataRow, len(prior))
	for _, row := range prior {
		if len(row.Keys) > 0 {
			previous[row.Keys[0]] = row
		}
	}

	queries := make([]core.QueryStat, 0, len(current))
	for _, row := range current {
		if len(row.Keys) == 0 {
			continue
		}
		stat := core.QueryStat{
			Query:       row.Keys[0],
			Clicks:      int64(row.Clicks),
			Impressions: int64(row.Impressions),
			CTR:         row.Ctr,
			Position:    row.Position,
		}
		if prev, ok := previous[stat.Query]; ok {
			stat.ClicksChange = stat.Clicks - int64(prev.Clicks)
			// Positive means the query moved up the rankings.
			stat.PositionChange = prev.Position - row.Position
		} else {
			stat.IsNew = true
		}
		queries = append(queries, stat)
	}
	return queries
}

func (f *Fetcher) fetchPages(ctx context.Context, window core.Period) ([]core.PageSearchStat, error) {
	resp, err := f.query(ctx, window, []string{"page"}, pageLimit)
	if err != nil {
		return nil, err
	}

	pages := make([]core.PageSearchStat, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		if len(row.Keys) == 0 {
			continue
		}
		pages = append(pages, core.PageSearchStat{
			URL:         row.Keys[0],
			Clicks:      int64(row.Clicks),
			Impressions: int64(row.Impressions),
			CTR:         row.Ctr,
			Position:    row.Position,
		})
	}
	return pages, nil
}

func (f *Fetcher) fetchDevices(ctx context.Context, window core.Period) ([]core.DeviceStat, error) {
	resp, err := f.query(ctx, window, []string{"device"}, 0)
	if err != nil {
		return nil, err
	}

	devices := make([]core.DeviceStat, 0, len(resp.Rows))
	var total int64
	for _, row := range resp.Rows {
		if len(row.Keys) == 0 {
			continue
		}
		clicks := int64(row.Clicks)
		total += clicks
		devices = append(devices, core.DeviceStat{
			Device:      row.Keys[0],
			Clicks:      clicks,
			Impressions: int64(row.Impressions),
			CTR:         row.Ctr,
		})
	}
	for i := range devices {
		devices[i].Share = clickShare(devices[i].Clicks, total)
	}
	return devices, nil
}

func (f *Fetcher) fetchCountries(ctx context.Context, window core.Period) ([]core.CountryStat, error) {
	resp, err := f.query(ctx, window, []string{"country"}, countryLimit)
	if err != nil {
		return nil, err
	}

	countries := make([]core.CountryStat, 0, len(resp.Rows))
	var total int64
	for _, row := range resp.Rows {
		if len(row.Keys) == 0 {
			continue
		}
		clicks := int64(row.Clicks)
		total += clicks
		countries = append(countries, core.CountryStat{
			Country:     row.Keys[0],
			Clicks:      clicks,
			Impressions: int64(row.Impressions),
			CTR:         row.Ctr,
		})
	}
	for i := range countries {
		countries[i].Share = clickShare(countries[i].Clicks, total)
	}
	return countries, nil
}

// Ping runs a one-row query over yesterday to verify site access.
func (f *Fetcher) Ping(ctx context.Context) error {
	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	_, err := f.query(ctx, core.Period{Start: yesterday, End: yesterday}, nil, 1)
	return err
}

func (f *Fetcher) query(ctx context.Context, window core.Period, dimensions []string, limit int64) (*searchconsole.SearchAnalyticsQueryResponse, error) {
	req := &searchconsole.SearchAnalyticsQueryRequest{
		StartDate:  window.Start,
		EndDate:    window.End,
		Dimensions: dimensions,
	}
	if limit > 0 {
		req.RowLimit = limit
	}

	resp, err := f.svc.Searchanalytics.Query(f.siteURL, req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: search analytics query: %v", core.ErrUpstreamFailure, err)
	}
	return resp, nil
}

func clickShare(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
