package contracts

import (
	"fmt"
	"strings"
	"time"

	"github.com/guregu/null/v6"
)

// EquityPoint is one observation of the portfolio equity curve
// ⭐ SSOT: provider → aligner input (strategy side)
type EquityPoint struct {
	Timestamp int64   `json:"timestamp"` // unix seconds
	Value     float64 `json:"value"`     // equity, currency units
}

// PricePoint is one daily close of the benchmark instrument
type PricePoint struct {
	Date  Date    `json:"date"`
	Close float64 `json:"close"`
}

// AccountState is the live account snapshot
type AccountState struct {
	Equity              float64 `json:"equity"`
	PreviousCloseEquity float64 `json:"previous_close_equity"`
}

// MarketClock reports whether the market is open
type MarketClock struct {
	Timestamp time.Time `json:"timestamp"`
	IsOpen    bool      `json:"is_open"`
	NextOpen  time.Time `json:"next_open"`
	NextClose time.Time `json:"next_close"`
}

// AlignedPoint joins one strategy observation with the benchmark close of the same day.
// BenchmarkValue is null only before the first benchmark observation.
type AlignedPoint struct {
	Timestamp      int64      `json:"timestamp"`
	Date           Date       `json:"date"`
	StrategyValue  float64    `json:"strategy_value"`
	BenchmarkValue null.Float `json:"benchmark_value"`
}

// NormalizedPoint is an aligned point rebased to percent change from the window start.
// Invalid points had a non-finite result coerced to 0; they are rendered but not aggregated.
type NormalizedPoint struct {
	Timestamp          int64      `json:"timestamp"`
	Date               Date       `json:"date"`
	StrategyReturnPct  float64    `json:"strategy_return_pct"`
	BenchmarkReturnPct null.Float `json:"benchmark_return_pct"`
	Invalid            bool       `json:"invalid,omitempty"`
}

// MetricsSnapshot is the full set of KPIs for one refresh cycle.
// It is built in one go and never mutated after publication.
type MetricsSnapshot struct {
	CumulativeReturnPct float64    `json:"cumulative_return_pct"`
	PeriodReturnPct     float64    `json:"period_return_pct"`
	ExcessReturnPct     null.Float `json:"excess_return_pct"`
	RiskAdjustedRatio   float64    `json:"risk_adjusted_ratio"`

	BenchmarkReturnPct null.Float `json:"benchmark_return_pct"`
	SinceInceptionPct  float64    `json:"since_inception_pct"`
	TargetProgressPct  float64    `json:"target_progress_pct"`
	CurrentEquity      float64    `json:"current_equity"`

	// Degraded is set when any field was coerced to its neutral value
	Degraded bool `json:"degraded"`
}

// BenchmarkAvailable reports whether benchmark-dependent fields carry values
func (m *MetricsSnapshot) BenchmarkAvailable() bool {
	return m != nil && m.ExcessReturnPct.Valid
}

// TimeRange selects the lookback window of the dashboard
type TimeRange string

const (
	RangeOneWeek  TimeRange = "1W"
	RangeOneMonth TimeRange = "1M"
	RangeOneYear  TimeRange = "1Y"
	RangeAll      TimeRange = "ALL"
)

// TimeRanges lists every valid range, shortest first
var TimeRanges = []TimeRange{RangeOneWeek, RangeOneMonth, RangeOneYear, RangeAll}

// ParseTimeRange parses a range label case-insensitively
func ParseTimeRange(s string) (TimeRange, error) {
	r := TimeRange(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown time range %q (want one of 1W, 1M, 1Y, ALL)", s)
	}
	return r, nil
}

// Valid reports whether r is one of the closed set of ranges
func (r TimeRange) Valid() bool {
	switch r {
	case RangeOneWeek, RangeOneMonth, RangeOneYear, RangeAll:
		return true
	}
	return false
}

// LookbackDays returns the trailing day count of r.
// ok is false for RangeAll, whose cutoff is the project start instead.
func (r TimeRange) LookbackDays() (days int, ok bool) {
	switch r {
	case RangeOneWeek:
		return 7, true
	case RangeOneMonth:
		return 30, true
	case RangeOneYear:
		return 365, true
	}
	return 0, false
}

// RefreshState is the state of the refresh loop
type RefreshState string

const (
	StateIdle     RefreshState = "idle"
	StateFetching RefreshState = "fetching"
	StateReady    RefreshState = "ready"
	StateFailed   RefreshState = "failed"
)

// DashboardSnapshot is what the presentation layer reads.
// Series and Metrics come from the last successful cycle; State and Range are current.
type DashboardSnapshot struct {
	Range       TimeRange         `json:"range"`
	SeriesRange TimeRange         `json:"series_range,omitempty"`
	Series      []NormalizedPoint `json:"series"`
	Metrics     *MetricsSnapshot  `json:"metrics"`
	State       RefreshState      `json:"state"`
	UpdatedAt   time.Time         `json:"updated_at"`
	LastError   string            `json:"last_error,omitempty"`
}

// HasData reports whether a successful cycle has ever been published
func (s *DashboardSnapshot) HasData() bool {
	return s != nil && s.Metrics != nil
}
