package series

import (
	"math"

	"github.com/guregu/null/v6"

	"github.com/wonny/perfdash/internal/contracts"
)

// NormalizedSeries is a rebased window plus whether any base had to be substituted
type NormalizedSeries struct {
	Points   []contracts.NormalizedPoint
	Degraded bool
}

// Last returns the last point and false when the series is empty
func (s NormalizedSeries) Last() (contracts.NormalizedPoint, bool) {
	if len(s.Points) == 0 {
		return contracts.NormalizedPoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// BenchmarkAvailable reports whether any point carries a benchmark return
func (s NormalizedSeries) BenchmarkAvailable() bool {
	for _, p := range s.Points {
		if p.BenchmarkReturnPct.Valid {
			return true
		}
	}
	return false
}

// Normalize rebases a window to percent change from its first point.
//
// The strategy base is the first strategy value; the benchmark base is the first non-null
// benchmark value, and points before it keep a null benchmark return. A base <= 0 is replaced
// by 1 and the series is flagged degraded. Non-finite returns are coerced to 0 and the point is
// flagged invalid.
func Normalize(window []contracts.AlignedPoint) NormalizedSeries {
	out := NormalizedSeries{Points: make([]contracts.NormalizedPoint, len(window))}
	if len(window) == 0 {
		return out
	}

	base, ok := usableBase(window[0].StrategyValue)
	if !ok {
		out.Degraded = true
	}

	benchBase := null.Float{}
	for _, p := range window {
		if p.BenchmarkValue.Valid {
			b, ok := usableBase(p.BenchmarkValue.Float64)
			if !ok {
				out.Degraded = true
			}
			benchBase = null.FloatFrom(b)
			break
		}
	}

	for i, p := range window {
		np := contracts.NormalizedPoint{Timestamp: p.Timestamp, Date: p.Date}

		pct, finite := percentChange(p.StrategyValue, base)
		np.StrategyReturnPct = pct
		np.Invalid = !finite

		if benchBase.Valid && p.BenchmarkValue.Valid {
			bpct, bfinite := percentChange(p.BenchmarkValue.Float64, benchBase.Float64)
			np.BenchmarkReturnPct = null.FloatFrom(bpct)
			np.Invalid = np.Invalid || !bfinite
		}

		out.Points[i] = np
	}

	// the first point is the base by construction
	out.Points[0].StrategyReturnPct = 0

	return out
}

func usableBase(v float64) (float64, bool) {
	if !(v > 0) || math.IsInf(v, 1) {
		return 1, false
	}
	return v, true
}

// percentChange returns (v-base)/base*100, or 0 and false when the result is not finite
func percentChange(v, base float64) (float64, bool) {
	pct := (v - base) / base * 100
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return 0, false
	}
	return pct, true
}
