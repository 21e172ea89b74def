package report

import (
	"fmt"
	"strings"
	"time"

	"sitewatch/internal/core"
	"sitewatch/internal/metrics"
)

// Row caps per section. Applied here, before rows reach Render.
const (
	MaxSourceRows      = 15
	MaxPageRows        = 15
	MaxCountryRows     = 10
	MaxQueryRows       = 20
	MaxSearchPageRows  = 15
	MaxOpportunityRows = 10
)

// Human-readable labels for overview metrics. Rates carry a (%) suffix
// because their values are converted before they reach the table.
var metricLabels = map[string]string{
	"activeUsers":            "Active Users",
	"newUsers":               "New Users",
	"sessions":               "Sessions",
	"bounceRate":             "Bounce Rate (%)",
	"engagementRate":         "Engagement Rate (%)",
	"screenPageViews":        "Page Views",
	"averageSessionDuration": "Avg Session Duration (s)",
	"clicks":                 "Clicks",
	"impressions":            "Impressions",
	"ctr":                    "CTR (%)",
	"position":               "Avg Position",
}

// rateMetrics are stored as 0-1 fractions and shown as percentages.
var rateMetrics = map[string]bool{
	"bounceRate":     true,
	"engagementRate": true,
	"ctr":            true,
}

// Build assembles the full fixed section list for one report run. Row
// caps are applied here; ordering within each collection is the
// fetchers' (primary metric descending).
func Build(ga4 *core.AnalyticsSnapshot, gsc *core.SearchSnapshot) []Section {
	sections := []Section{
		overviewSection("Analytics Overview", "GA4-OVERVIEW", "GA4-OV", ga4.Overview, metrics.GA4MetricOrder, metrics.GA4Schema),
		sourcesSection(ga4.Sources),
		pagesSection(ga4.Pages),
		deviceSection("Analytics Device Breakdown", "GA4-DEVICES", "DEV", ga4.Devices, false),
		countrySection("Analytics Country Breakdown", "GA4-GEO", "GEO", ga4.Countries, false),
		overviewSection("Search Overview", "GSC-OVERVIEW", "GSC-OV", gsc.Overview, metrics.GSCMetricOrder, metrics.GSCSchema),
		queriesSection(gsc.Queries),
		searchPagesSection(gsc.Pages),
		deviceSection("Search Device Breakdown", "GSC-DEVICES", "GSCDEV", gsc.Devices, true),
		countrySection("Search Country Breakdown", "GSC-COUNTRIES", "GSCC", gsc.Countries, true),
		opportunitiesSection(gsc.Opportunities),
	}
	return sections
}

// Compose renders the complete prompt payload: the period header, the
// generation timestamp, and every section table.
func Compose(ga4 *core.AnalyticsSnapshot, gsc *core.SearchSnapshot, generatedAt time.Time) (string, error) {
	tables, err := Render(Build(ga4, gsc))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("## Reporting Period\n\n")
	fmt.Fprintf(&b, "**Current period**: %s to %s\n", ga4.Overview.Period.Current.Start, ga4.Overview.Period.Current.End)
	fmt.Fprintf(&b, "**Comparison period**: %s to %s\n\n", ga4.Overview.Period.Previous.Start, ga4.Overview.Period.Previous.End)
	fmt.Fprintf(&b, "Report generated: %s\n\n", generatedAt.UTC().Format(time.RFC3339))
	b.WriteString(tables)

	return b.String(), nil
}

func overviewSection(title, marker, prefix string, ov core.Overview, order []string, schema map[string]metrics.Direction) Section {
	rows := make([]Row, 0, len(order))
	for _, name := range order {
		cur, hasCur := ov.Current[name]
		prev, hasPrev := ov.Previous[name]
		if rateMetrics[name] {
			cur *= 100
			prev *= 100
		}

		row := Row{"metric": metricLabels[name]}
		if hasCur {
			row["current"] = round2(cur)
		}
		if hasPrev {
			row["previous"] = round2(prev)
		}
		if change, ok := ov.Changes[name]; ok {
			// Ratio deltas are percentages; the position delta is an
			// absolute rank improvement and carries no percent sign.
			if schema[name] == metrics.LowerIsBetter {
				row["change"] = formatFloat(change)
			} else {
				row["change"] = formatFloat(change) + "%"
			}
		}
		rows = append(rows, row)
	}

	return Section{
		Title:    title,
		Marker:   marker,
		IDPrefix: prefix,
		Columns: []Column{
			{Name: "metric", Header: "Metric", Kind: KindText, Required: true},
			{Name: "current", Header: "Current", Kind: KindNumber},
			{Name: "previous", Header: "Previous", Kind: KindNumber},
			{Name: "change", Header: "Change", Kind: KindText},
		},
		Rows: rows,
	}
}

func sourcesSection(sources []core.TrafficSource) Section {
	rows := make([]Row, 0, MaxSourceRows)
	for _, s := range capSources(sources) {
		rows = append(rows, Row{
			"source":     s.Source,
			"medium":     s.Medium,
			"users":      s.Users,
			"sessions":   s.Sessions,
			"bounceRate": s.BounceRate,
		})
	}
	return Section{
		Title:    "Traffic Sources",
		Marker:   "GA4-SOURCES",
		IDPrefix: "SRC",
		Columns: []Column{
			{Name: "source", Header: "Source", Kind: KindText, MaxLen: MaxPathLen, Required: true},
			{Name: "medium", Header: "Medium", Kind: KindText, MaxLen: MaxPathLen},
			{Name: "users", Header: "Users", Kind: KindNumber},
			{Name: "sessions", Header: "Sessions", Kind: KindNumber},
			{Name: "bounceRate", Header: "Bounce Rate (%)", Kind: KindRate},
		},
		Rows: rows,
	}
}

func pagesSection(pages []core.PageStat) Section {
	if len(pages) > MaxPageRows {
		pages = pages[:MaxPageRows]
	}
	rows := make([]Row, 0, len(pages))
	for _, p := range pages {
		rows = append(rows, Row{
			"path":       p.Path,
			"views":      p.Views,
			"bounceRate": p.BounceRate,
			"engagement": p.AvgEngagementSecs,
		})
	}
	return Section{
		Title:    "Top Pages",
		Marker:   "GA4-PAGES",
		IDPrefix: "PAGE",
		Columns: []Column{
			{Name: "path", Header: "Page Path", Kind: KindText, MaxLen: MaxPathLen, Required: true},
			{Name: "views", Header: "Views", Kind: KindNumber},
			{Name: "bounceRate", Header: "Bounce Rate (%)", Kind: KindRate},
			{Name: "engagement", Header: "Avg Engagement", Kind: KindDuration},
		},
		Rows: rows,
	}
}

func deviceSection(title, marker, prefix string, devices []core.DeviceStat, search bool) Section {
	rows := make([]Row, 0, len(devices))
	for _, d := range devices {
		row := Row{"device": d.Device, "share": d.Share}
		if search {
			row["clicks"] = d.Clicks
			row["impressions"] = d.Impressions
			row["ctr"] = d.CTR
		} else {
			row["users"] = d.Users
			row["sessions"] = d.Sessions
			row["bounceRate"] = d.BounceRate
		}
		rows = append(rows, row)
	}

	columns := []Column{{Name: "device", Header: "Device", Kind: KindText, Required: true}}
	if search {
		columns = append(columns,
			Column{Name: "clicks", Header: "Clicks", Kind: KindNumber},
			Column{Name: "impressions", Header: "Impressions", Kind: KindNumber},
			Column{Name: "ctr", Header: "CTR (%)", Kind: KindRate},
		)
	} else {
		columns = append(columns,
			Column{Name: "users", Header: "Users", Kind: KindNumber},
			Column{Name: "sessions", Header: "Sessions", Kind: KindNumber},
			Column{Name: "bounceRate", Header: "Bounce Rate (%)", Kind: KindRate},
		)
	}
	columns = append(columns, Column{Name: "share", Header: "Share (%)", Kind: KindPercent})

	return Section{Title: title, Marker: marker, IDPrefix: prefix, Columns: columns, Rows: rows}
}

func countrySection(title, marker, prefix string, countries []core.CountryStat, search bool) Section {
	if len(countries) > MaxCountryRows {
		countries = countries[:MaxCountryRows]
	}
	rows := make([]Row, 0, len(countries))
	for _, c := range countries {
		row := Row{"country": c.Country, "share": c.Share}
		if search {
			row["clicks"] = c.Clicks
			row["impressions"] = c.Impressions
			row["ctr"] = c.CTR
		} else {
			row["users"] = c.Users
			row["sessions"] = c.Sessions
		}
		rows = append(rows, row)
	}

	columns := []Column{{Name: "country", Header: "Country", Kind: KindText, Required: true}}
	if search {
		columns = append(columns,
			Column{Name: "clicks", Header: "Clicks", Kind: KindNumber},
			Column{Name: "impressions", Header: "Impressions", Kind: KindNumber},
			Column{Name: "ctr", Header: "CTR (%)", Kind: KindRate},
		)
	} else {
		columns = append(columns,
			Column{Name: "users", Header: "Users", Kind: KindNumber},
			Column{Name: "sessions", Header: "Sessions", Kind: KindNumber},
		)
	}
	columns = append(columns, Column{Name: "share", Header: "Share (%)", Kind: KindPercent})

	return Section{Title: title, Marker: marker, IDPrefix: prefix, Columns: columns, Rows: rows}
}

func queriesSection(queries []core.QueryStat) Section {
	if len(queries) > MaxQueryRows {
		queries = queries[:MaxQueryRows]
	}
	rows := make([]Row, 0, len(queries))
	for _, q := range queries {
		rows = append(rows, Row{
			"query":       q.Query,
			"clicks":      q.Clicks,
			"impressions": q.Impressions,
			"ctr":         q.CTR,
			"position":    q.Position,
		})
	}
	return Section{
		Title:    "Search Queries",
		Marker:   "GSC-QUERIES",
		IDPrefix: "KW",
		Columns: []Column{
			{Name: "query", Header: "Query", Kind: KindText, MaxLen: MaxQueryLen, Required: true},
			{Name: "clicks", Header: "Clicks", Kind: KindNumber},
			{Name: "impressions", Header: "Impressions", Kind: KindNumber},
			{Name: "ctr", Header: "CTR (%)", Kind: KindRate},
			{Name: "position", Header: "Avg Position", Kind: KindNumber},
		},
		Rows: rows,
	}
}

func searchPagesSection(pages []core.PageSearchStat) Section {
	if len(pages) > MaxSearchPageRows {
		pages = pages[:MaxSearchPageRows]
	}
	rows := make([]Row, 0, len(pages))
	for _, p := range pages {
		rows = append(rows, Row{
			"page":        p.URL,
			"clicks":      p.Clicks,
			"impressions": p.Impressions,
			"ctr":         p.CTR,
			"position":    p.Position,
		})
	}
	return Section{
		Title:    "Search Page Performance",
		Marker:   "GSC-PAGES",
		IDPrefix: "GSCPG",
		Columns: []Column{
			{Name: "page", Header: "Page URL", Kind: KindText, MaxLen: MaxPathLen, Required: true},
			{Name: "clicks", Header: "Clicks", Kind: KindNumber},
			{Name: "impressions", Header: "Impressions", Kind: KindNumber},
			{Name: "ctr", Header: "CTR (%)", Kind: KindRate},
			{Name: "position", Header: "Avg Position", Kind: KindNumber},
		},
		Rows: rows,
	}
}

func opportunitiesSection(opps []core.Opportunity) Section {
	if len(opps) > MaxOpportunityRows {
		opps = opps[:MaxOpportunityRows]
	}
	rows := make([]Row, 0, len(opps))
	for _, o := range opps {
		rows = append(rows, Row{
			"query":       o.Query,
			"clicks":      o.Clicks,
			"impressions": o.Impressions,
			"ctr":         o.CTR,
			"position":    o.Position,
			"potential":   fmt.Sprintf("+%d", o.PotentialClicks),
		})
	}
	return Section{
		Title:    "CTR Opportunities (high impressions, low CTR)",
		Marker:   "GSC-OPPORTUNITIES",
		IDPrefix: "OPP",
		Columns: []Column{
			{Name: "query", Header: "Query", Kind: KindText, MaxLen: MaxQueryLen, Required: true},
			{Name: "clicks", Header: "Clicks", Kind: KindNumber},
			{Name: "impressions", Header: "Impressions", Kind: KindNumber},
			{Name: "ctr", Header: "CTR (%)", Kind: KindRate},
			{Name: "position", Header: "Position", Kind: KindNumber},
			{Name: "potential", Header: "Potential Clicks", Kind: KindText},
		},
		Rows: rows,
	}
}

func capSources(sources []core.TrafficSource) []core.TrafficSource {
	if len(sources) > MaxSourceRows {
		return sources[:MaxSourceRows]
	}
	return sources
}

// VerificationFooter renders the audit appendix attached after the
// generated analysis: headline metrics and the top queries, re-stated
// from the raw data so a reader can spot-check the analysis against its
// sources.
func VerificationFooter(ga4 *core.AnalyticsSnapshot, gsc *core.SearchSnapshot) string {
	var b strings.Builder

	b.WriteString("\n\n---\n\n## Data Verification\n\n")
	b.WriteString("> Raw data summary for auditing the analysis above.\n\n")

	b.WriteString("### Analytics Headline Metrics\n\n")
	b.WriteString("| Data ID | Metric | Current | Previous | Change |\n")
	b.WriteString("|---------|--------|---------|----------|--------|\n")
	writeFooterMetrics(&b, "GA4-OV", ga4.Overview, metrics.GA4MetricOrder, metrics.GA4Schema)

	b.WriteString("\n### Search Headline Metrics\n\n")
	b.WriteString("| Data ID | Metric | Current | Previous | Change |\n")
	b.WriteString("|---------|--------|---------|----------|--------|\n")
	writeFooterMetrics(&b, "GSC-OV", gsc.Overview, metrics.GSCMetricOrder, metrics.GSCSchema)

	queries := gsc.Queries
	if len(queries) > 5 {
		queries = queries[:5]
	}
	if len(queries) > 0 {
		b.WriteString("\n### Top 5 Queries\n\n")
		b.WriteString("| ID | Query | Clicks | Impressions |\n")
		b.WriteString("|----|-------|--------|-------------|\n")
		for i, q := range queries {
			fmt.Fprintf(&b, "| KW%03d | %s | %d | %d |\n", i+1, truncate(q.Query, MaxQueryLen), q.Clicks, q.Impressions)
		}
	}

	fmt.Fprintf(&b, "\n*Data fetched: %s*\n", ga4.FetchedAt.UTC().Format(time.RFC3339))
	return b.String()
}

func writeFooterMetrics(b *strings.Builder, prefix string, ov core.Overview, order []string, schema map[string]metrics.Direction) {
	for i, name := range order {
		cur, prev := ov.Current[name], ov.Previous[name]
		if rateMetrics[name] {
			cur *= 100
			prev *= 100
		}
		change := formatFloat(ov.Changes[name])
		if schema[name] != metrics.LowerIsBetter {
			change += "%"
		}
		fmt.Fprintf(b, "| %s%03d | %s | %s | %s | %s |\n",
			prefix, i+1, metricLabels[name], formatFloat(round2(cur)), formatFloat(round2(prev)), change)
	}
}
