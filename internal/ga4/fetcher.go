// Package ga4 fetches traffic data from a Google Analytics 4 property
// and shapes it into the pipeline's snapshot types.
package ga4

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/option"

	"sitewatch/internal/core"
	"sitewatch/internal/metrics"
)

// Row limits requested from the API. The report layer applies its own
// caps; fetching at the same limits avoids paying for discarded rows.
const (
	sourceLimit  = 15
	pageLimit    = 15
	countryLimit = 10
)

// Fetcher reads reports from one analytics property.
type Fetcher struct {
	svc        *analyticsdata.Service
	propertyID string
}

// NewFetcher builds a read-only client from a service-account
// credentials file.
func NewFetcher(ctx context.Context, credentialsFile, propertyID string) (*Fetcher, error) {
	svc, err := analyticsdata.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(analyticsdata.AnalyticsReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: creating analytics client: %v", core.ErrUpstreamFailure, err)
	}
	return &Fetcher{svc: svc, propertyID: propertyID}, nil
}

// Fetch pulls the overview pair plus the source, page, device, and
// country breakdowns for the current window.
func (f *Fetcher) Fetch(ctx context.Context, period core.PeriodPair) (*core.AnalyticsSnapshot, error) {
	overview, err := f.fetchOverview(ctx, period)
	if err != nil {
		return nil, err
	}

	sources, err := f.fetchSources(ctx, period.Current)
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
		Str("property", f.propertyID).
		Int("sources", len(sources)).
		Int("pages", len(pages)).
		Msg("Analytics fetch complete")

	return &core.AnalyticsSnapshot{
		PropertyID: f.propertyID,
		FetchedAt:  time.Now().UTC(),
		Overview:   overview,
		Sources:    sources,
		Pages:      pages,
		Devices:    devices,
		Countries:  countries,
	}, nil
}

func (f *Fetcher) fetchOverview(ctx context.Context, period core.PeriodPair) (core.Overview, error) {
	current, err := f.fetchMetricSet(ctx, period.Current)
	if err != nil {
		return core.Overview{}, err
	}
	previous, err := f.fetchMetricSet(ctx, period.Previous)
	if err != nil {
		return core.Overview{}, err
	}

	changes, err := metrics.Compare(current, previous, metrics.GA4Schema)
	if err != nil {
		return core.Overview{}, err
	}

	return core.Overview{Period: period, Current: current, Previous: previous, Changes: changes}, nil
}

// fetchMetricSet runs a dimensionless report for one window and
// materializes every schema metric, missing values as zero.
func (f *Fetcher) fetchMetricSet(ctx context.Context, window core.Period) (core.MetricSet, error) {
	var reqMetrics []*analyticsdata.Metric
	for _, name := range metrics.GA4MetricOrder {
		reqMetrics = append(reqMetrics, &analyticsdata.Metric{Name: name})
	}

	resp, err := f.runReport(ctx, &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{{StartDate: window.Start, EndDate: window.End}},
		Metrics:    reqMetrics,
	})
	if err != nil {
		return nil, err
	}

	set := make(core.MetricSet, len(metrics.GA4Schema))
	for name := range metrics.GA4Schema {
		set[name] = 0
	}
	if len(resp.Rows) > 0 {
		for i, header := range resp.MetricHeaders {
			if i < len(resp.Rows[0].MetricValues) {
				set[header.Name] = parseFloat(resp.Rows[0].MetricValues[i].Value)
			}
		}
	}
	return set, nil
}

func (f *Fetcher) fetchSources(ctx context.Context, window core.Period) ([]core.TrafficSource, error) {
	resp, err := f.runReport(ctx, &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{{StartDate: window.Start, EndDate: window.End}},
		Dimensions: []*analyticsdata.Dimension{{Name: "sessionSource"}, {Name: "sessionMedium"}},
		Metrics: []*analyticsdata.Metric{
			{Name: "sessions"}, {Name: "totalUsers"}, {Name: "bounceRate"},
		},
		OrderBys: sessionsDescending(),
		Limit:    sourceLimit,
	})
	if err != nil {
		return nil, err
	}

	sources := make([]core.TrafficSource, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		if len(row.DimensionValues) < 2 || len(row.MetricValues) < 3 {
			continue
		}
		sources = append(sources, core.TrafficSource{
			Source:     row.DimensionValues[0].Value,
			Medium:     row.DimensionValues[1].Value,
			Sessions:   parseInt(row.MetricValues[0].Value),
			Users:      parseInt(row.MetricValues[1].Value),
			BounceRate: parseFloat(row.MetricValues[2].Value),
		})
	}
	return sources, nil
}

func (f *Fetcher) fetchPages(ctx context.Context, window core.Period) ([]core.PageStat, error) {
	resp, err := f.runReport(ctx, &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{{StartDate: window.Start, EndDate: window.End}},
		Dimensions: []*analyticsdata.Dimension{{Name: "pagePath"}},
		Metrics: []*analyticsdata.Metric{
			{Name: "screenPageViews"}, {Name: "bounceRate"},
			{Name: "userEngagementDuration"}, {Name: "activeUsers"},
		},
		OrderBys: []*analyticsdata.OrderBy{
			{Metric: &analyticsdata.MetricOrderBy{MetricName: "screenPageViews"}, Desc: true},
		},
		Limit: pageLimit,
	})
	if err != nil {
		return nil, err
	}

	pages := make([]core.PageStat, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		if len(row.DimensionValues) < 1 || len(row.MetricValues) < 4 {
			continue
		}
		engagement := parseFloat(row.MetricValues[2].Value)
		users := parseFloat(row.MetricValues[3].Value)
		var perUser float64
		if users > 0 {
			perUser = engagement / users
		}
		pages = append(pages, core.PageStat{
			Path:              row.DimensionValues[0].Value,
			Views:             parseInt(row.MetricValues[0].Value),
			BounceRate:        parseFloat(row.MetricValues[1].Value),
			AvgEngagementSecs: perUser,
		})
	}
	return pages, nil
}

func (f *Fetcher) fetchDevices(ctx context.Context, window core.Period) ([]core.DeviceStat, error) {
	resp, err := f.runReport(ctx, &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{{StartDate: window.Start, EndDate: window.End}},
		Dimensions: []*analyticsdata.Dimension{{Name: "deviceCategory"}},
		Metrics: []*analyticsdata.Metric{
			{Name: "sessions"}, {Name: "totalUsers"}, {Name: "bounceRate"},
		},
		OrderBys: sessionsDescending(),
	})
	if err != nil {
		return nil, err
	}

	devices := make([]core.DeviceStat, 0, len(resp.Rows))
	var total int64
	for _, row := range resp.Rows {
		if len(row.DimensionValues) < 1 || len(row.MetricValues) < 3 {
			continue
		}
		sessions := parseInt(row.MetricValues[0].Value)
		total += sessions
		devices = append(devices, core.DeviceStat{
			Device:     row.DimensionValues[0].Value,
			Sessions:   sessions,
			Users:      parseInt(row.MetricValues[1].Value),
			BounceRate: parseFloat(row.MetricValues[2].Value),
		})
	}
	for i := range devices {
		devices[i].Share = share(devices[i].Sessions, total)
	}
	return devices, nil
}

func (f *Fetcher) fetchCountries(ctx context.Context, window core.Period) ([]core.CountryStat, error) {
	resp, err := f.runReport(ctx, &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{{StartDate: window.Start, EndDate: window.End}},
		Dimensions: []*analyticsdata.Dimension{{Name: "country"}},
		Metrics:    []*analyticsdata.Metric{{Name: "sessions"}, {Name: "totalUsers"}},
		OrderBys:   sessionsDescending(),
		Limit:      countryLimit,
	})
	if err != nil {
		return nil, err
	}

	countries := make([]core.CountryStat, 0, len(resp.Rows))
	var total int64
	for _, row := range resp.Rows {
		if len(row.DimensionValues) < 1 || len(row.MetricValues) < 2 {
			continue
		}
		sessions := parseInt(row.MetricValues[0].Value)
		total += sessions
		countries = append(countries, core.CountryStat{
			Country:  row.DimensionValues[0].Value,
			Sessions: sessions,
			Users:    parseInt(row.MetricValues[1].Value),
		})
	}
	for i := range countries {
		countries[i].Share = share(countries[i].Sessions, total)
	}
	return countries, nil
}

// Ping runs the smallest possible report to verify credentials and
// property access.
func (f *Fetcher) Ping(ctx context.Context) error {
	_, err := f.runReport(ctx, &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{{StartDate: "yesterday", EndDate: "yesterday"}},
		Metrics:    []*analyticsdata.Metric{{Name: "sessions"}},
		Limit:      1,
	})
	return err
}

func (f *Fetcher) runReport(ctx context.Context, req *analyticsdata.RunReportRequest) (*analyticsdata.RunReportResponse, error) {
	resp, err := f.svc.Properties.RunReport("properties/"+f.propertyID, req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: analytics report: %v", core.ErrUpstreamFailure, err)
	}
	return resp, nil
}

func sessionsDescending() []*analyticsdata.OrderBy {
	return []*analyticsdata.OrderBy{
		{Metric: &analyticsdata.MetricOrderBy{MetricName: "sessions"}, Desc: true},
	}
}

func share(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func parseInt(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Some integer metrics arrive as decimals.
		return int64(parseFloat(s))
	}
	return v
}
