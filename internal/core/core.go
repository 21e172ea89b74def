// Package core holds the domain types shared across the report pipeline.
// All entities are transient: they are created during a single report run
// and consumed by the next stage, nothing here is persisted.
package core

import "time"

// MetricSet maps a metric name to its numeric value for one period.
// The set of keys is fixed per data source (see internal/metrics schemas).
type MetricSet map[string]float64

// DeltaSet maps a metric name to its signed period-over-period change.
// Every key present in the current-period MetricSet has an entry here.
// Ratio metrics carry a percentage-of-previous change; lower-is-better
// metrics carry an absolute improvement (positive = better).
type DeltaSet map[string]float64

// Period is a closed date range, ISO YYYY-MM-DD on both ends.
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// PeriodPair couples the current reporting window with the equal-length
// comparison window immediately preceding it.
type PeriodPair struct {
	Current  Period `json:"current"`
	Previous Period `json:"previous"`
}

// Overview holds the paired headline metrics for one data source.
type Overview struct {
	Period   PeriodPair `json:"period"`
	Current  MetricSet  `json:"current"`
	Previous MetricSet  `json:"previous"`
	Changes  DeltaSet   `json:"changes"`
}

// TrafficSource is one session source/medium row from the analytics property.
type TrafficSource struct {
	Source     string  `json:"source"`
	Medium     string  `json:"medium"`
	Sessions   int64   `json:"sessions"`
	Users      int64   `json:"users"`
	BounceRate float64 `json:"bounceRate"` // 0-1 fraction
}

// PageStat is one page row from the analytics property.
type PageStat struct {
	Path              string  `json:"pagePath"`
	Views             int64   `json:"pageViews"`
	AvgEngagementSecs float64 `json:"avgEngagementTime"` // seconds per active user
	BounceRate        float64 `json:"bounceRate"`        // 0-1 fraction
}

// DeviceStat is one device-category row. Share is the row's percentage of
// the table's total primary metric (sessions or clicks depending on source).
type DeviceStat struct {
	Device      string  `json:"device"`
	Sessions    int64   `json:"sessions,omitempty"`
	Users       int64   `json:"users,omitempty"`
	Clicks      int64   `json:"clicks,omitempty"`
	Impressions int64   `json:"impressions,omitempty"`
	CTR         float64 `json:"ctr,omitempty"` // 0-1 fraction
	BounceRate  float64 `json:"bounceRate,omitempty"`
	Share       float64 `json:"percentage"` // already a percentage
}

// CountryStat is one country row.
type CountryStat struct {
	Country     string  `json:"country"`
	Sessions    int64   `json:"sessions,omitempty"`
	Users       int64   `json:"users,omitempty"`
	Clicks      int64   `json:"clicks,omitempty"`
	Impressions int64   `json:"impressions,omitempty"`
	CTR         float64 `json:"ctr,omitempty"` // 0-1 fraction
	Share       float64 `json:"percentage"`
}

// QueryStat is one search query row from the search console, with the
// previous-period comparison fields already resolved by the fetcher.
type QueryStat struct {
	Query          string  `json:"query"`
	Clicks         int64   `json:"clicks"`
	Impressions    int64   `json:"impressions"`
	CTR            float64 `json:"ctr"` // 0-1 fraction
	Position       float64 `json:"position"`
	ClicksChange   int64   `json:"clicksChange"`
	PositionChange float64 `json:"positionChange"` // positive = moved up
	IsNew          bool    `json:"isNew"`          // absent from the previous window
}

// PageSearchStat is one page row from the search console.
type PageSearchStat struct {
	URL         string  `json:"page"`
	Clicks      int64   `json:"clicks"`
	Impressions int64   `json:"impressions"`
	CTR         float64 `json:"ctr"` // 0-1 fraction
	Position    float64 `json:"position"`
}

// Opportunity is a query that passed the high-impression/low-CTR filter,
// annotated with the estimated click uplift.
type Opportunity struct {
	Query           string  `json:"query"`
	Clicks          int64   `json:"clicks"`
	Impressions     int64   `json:"impressions"`
	CTR             float64 `json:"ctr"` // 0-1 fraction
	Position        float64 `json:"position"`
	PotentialClicks int64   `json:"potentialClicks"`
}

// AnalyticsSnapshot is everything fetched from the analytics property for
// one report run, rows already sorted and capped by the fetcher.
type AnalyticsSnapshot struct {
	PropertyID string          `json:"property_id"`
	FetchedAt  time.Time       `json:"fetched_at"`
	Overview   Overview        `json:"overview"`
	Sources    []TrafficSource `json:"traffic_sources"`
	Pages      []PageStat      `json:"top_pages"`
	Devices    []DeviceStat    `json:"devices"`
	Countries  []CountryStat   `json:"geo"`
}

// SearchSnapshot is everything fetched from the search console for one run.
type SearchSnapshot struct {
	SiteURL       string           `json:"site_url"`
	FetchedAt     time.Time        `json:"fetched_at"`
	Overview      Overview         `json:"overview"`
	Queries       []QueryStat      `json:"top_queries"`
	Pages         []PageSearchStat `json:"top_pages"`
	Devices       []DeviceStat     `json:"devices"`
	Countries     []CountryStat    `json:"countries"`
	Opportunities []Opportunity    `json:"opportunities"`
}

// BlockType identifies one kind of document block.
type BlockType string

const (
	BlockHeading      BlockType = "heading"
	BlockDivider      BlockType = "divider"
	BlockBulletItem   BlockType = "bullet_item"
	BlockNumberedItem BlockType = "numbered_item"
	BlockQuote        BlockType = "quote"
	BlockCode         BlockType = "code"
	BlockParagraph    BlockType = "paragraph"
)

// Block is one typed unit of a rendered document. Blocks are immutable
// once created and appear in document order.
type Block struct {
	Type     BlockType `json:"type"`
	Level    int       `json:"level,omitempty"`    // headings only, 1-3
	Text     string    `json:"text,omitempty"`     // empty for dividers
	Language string    `json:"language,omitempty"` // code blocks only
}

// BlockBatch is an ordered slice of blocks sized for one publishing call.
type BlockBatch []Block

// PublishResult identifies the document created by the publisher.
type PublishResult struct {
	PageID string `json:"page_id"`
	URL    string `json:"url"`
}
