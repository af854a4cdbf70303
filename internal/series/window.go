package series

import (
	"time"

	"github.com/guregu/null/v6"

	"github.com/wonny/perfdash/internal/contracts"
)

// FallbackPoints is how many trailing points are shown when a window filters out everything
const FallbackPoints = 5

// WindowOptions parameterizes SelectWindow
type WindowOptions struct {
	Range        contracts.TimeRange
	Today        contracts.Date // "today" in the market timezone
	Now          time.Time      // timestamp of a synthetic live point
	ProjectStart contracts.Date // cutoff of RangeAll and lower bound of every cutoff
	Live         null.Float     // live equity, when the account call succeeded
}

// Cutoff returns the first date visible for the options' range
func (o WindowOptions) Cutoff() contracts.Date {
	cutoff := o.ProjectStart
	if days, ok := o.Range.LookbackDays(); ok {
		cutoff = o.Today.AddDays(-days)
	}
	if cutoff.Before(o.ProjectStart) {
		cutoff = o.ProjectStart
	}
	return cutoff
}

// SelectWindow slices the aligned series to the selected range.
//
// Points dated on or after the cutoff are kept in order. An empty result falls back to the
// last FallbackPoints points of the full series so the chart is never blank. When a live equity
// is known, the last point is made to match it: overwritten if it is already dated today,
// otherwise a point dated today is appended. The input is not modified.
func SelectWindow(aligned []contracts.AlignedPoint, opts WindowOptions) []contracts.AlignedPoint {
	cutoff := opts.Cutoff()

	window := make([]contracts.AlignedPoint, 0, len(aligned))
	for _, p := range aligned {
		if !p.Date.Before(cutoff) {
			window = append(window, p)
		}
	}

	if len(window) == 0 {
		start := len(aligned) - FallbackPoints
		if start < 0 {
			start = 0
		}
		window = append(window, aligned[start:]...)
	}

	if opts.Live.Valid && len(window) > 0 {
		window = patchLive(window, opts)
	}

	return window
}

func patchLive(window []contracts.AlignedPoint, opts WindowOptions) []contracts.AlignedPoint {
	last := window[len(window)-1]

	if last.Date.Equal(opts.Today) {
		last.StrategyValue = opts.Live.Float64
		window[len(window)-1] = last
		return window
	}

	if last.Date.After(opts.Today) {
		// provider clock ahead of ours; leave history untouched
		return window
	}

	ts := opts.Now.Unix()
	if ts <= last.Timestamp {
		ts = last.Timestamp + 1
	}

	return append(window, contracts.AlignedPoint{
		Timestamp:      ts,
		Date:           opts.Today,
		StrategyValue:  opts.Live.Float64,
		BenchmarkValue: last.BenchmarkValue,
	})
}
