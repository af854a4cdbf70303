package series

import (
	"math"
	"sort"
	"time"

	"github.com/guregu/null/v6"

	"github.com/wonny/perfdash/internal/contracts"
)

// DefaultLeadDays is how far before the first strategy date benchmark closes are kept,
// so a weekend or holiday at the window start still has a base value.
const DefaultLeadDays = 5

// Align maps the benchmark series onto the dates of the strategy series.
//
// The output has exactly one point per primary point, in the same order. Dates are the
// calendar days of the primary timestamps in loc. A benchmark close on the same date is used
// as is; otherwise the most recent earlier close is carried forward; when none exists yet the
// benchmark value stays null. Benchmark closes older than leadDays before the first primary
// date are ignored.
func Align(primary []contracts.EquityPoint, secondary []contracts.PricePoint, loc *time.Location, leadDays int) []contracts.AlignedPoint {
	if len(primary) == 0 {
		return []contracts.AlignedPoint{}
	}
	if leadDays < 0 {
		leadDays = 0
	}

	floor := contracts.DateOfUnix(primary[0].Timestamp, loc).AddDays(-leadDays)
	closes := benchmarkCloses(secondary, floor)

	out := make([]contracts.AlignedPoint, len(primary))
	next := 0 // index of the first close not yet consumed
	last := null.Float{}

	for i, p := range primary {
		day := contracts.DateOfUnix(p.Timestamp, loc)

		for next < len(closes) && !closes[next].Date.After(day) {
			last = null.FloatFrom(closes[next].Close)
			next++
		}

		out[i] = contracts.AlignedPoint{
			Timestamp:      p.Timestamp,
			Date:           day,
			StrategyValue:  p.Value,
			BenchmarkValue: last,
		}
	}

	return out
}

// benchmarkCloses returns the usable closes on or after floor, sorted by date.
// Duplicate dates keep the last close seen.
func benchmarkCloses(secondary []contracts.PricePoint, floor contracts.Date) []contracts.PricePoint {
	byDate := make(map[contracts.Date]float64, len(secondary))
	for _, p := range secondary {
		if p.Date.Before(floor) || !(p.Close > 0) || math.IsInf(p.Close, 1) {
			continue
		}
		byDate[p.Date] = p.Close
	}

	closes := make([]contracts.PricePoint, 0, len(byDate))
	for d, c := range byDate {
		closes = append(closes, contracts.PricePoint{Date: d, Close: c})
	}
	sort.Slice(closes, func(i, j int) bool { return closes[i].Date.Before(closes[j].Date) })

	return closes
}
