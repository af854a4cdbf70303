package performance

import (
	"fmt"
	"time"

	"github.com/wonny/perfdash/internal/contracts"
	"github.com/wonny/perfdash/internal/metrics"
	"github.com/wonny/perfdash/internal/series"
	"github.com/wonny/perfdash/pkg/config"
)

// Options parameterizes a Tracker
type Options struct {
	Range            contracts.TimeRange
	ProjectStart     contracts.Date
	FundingThreshold float64 // leading points at or below this equity are dropped
	LeadDays         int     // benchmark fetch buffer before the window start
	Location         *time.Location
	Metrics          metrics.Config

	// Now is the wall clock; tests pin it
	Now func() time.Time
}

// OptionsFromConfig builds tracker options from the application config
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	rng, err := contracts.ParseTimeRange(cfg.Analytics.DefaultRange)
	if err != nil {
		return Options{}, fmt.Errorf("DEFAULT_RANGE: %w", err)
	}

	start, err := contracts.ParseDate(cfg.Analytics.ProjectStart)
	if err != nil {
		return Options{}, fmt.Errorf("PROJECT_START: %w", err)
	}

	return Options{
		Range:            rng,
		ProjectStart:     start,
		FundingThreshold: cfg.Analytics.FundingThreshold,
		LeadDays:         cfg.Analytics.BenchmarkLeadDays,
		Location:         cfg.Location(),
		Metrics: metrics.Config{
			RiskFreeRate:    cfg.Analytics.RiskFreeRate,
			AnnualTargetPct: cfg.Analytics.AnnualTargetPct,
		},
	}, nil
}

func (o Options) withDefaults() Options {
	if !o.Range.Valid() {
		o.Range = contracts.RangeOneYear
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.LeadDays < 0 {
		o.LeadDays = series.DefaultLeadDays
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
