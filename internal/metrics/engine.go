package metrics

import (
	"math"

	"github.com/guregu/null/v6"
	"gonum.org/v1/gonum/stat"

	"github.com/wonny/perfdash/internal/contracts"
	"github.com/wonny/perfdash/internal/series"
)

const (
	// TradingDaysPerYear annualizes daily statistics
	TradingDaysPerYear = 252

	// DefaultRiskFreeRate is the annual risk-free rate used by the Sharpe-style ratio
	DefaultRiskFreeRate = 0.04

	// DefaultAnnualTargetPct is the yearly return goal shown as progress
	DefaultAnnualTargetPct = 50.0
)

// Config holds the engine constants
type Config struct {
	RiskFreeRate    float64 // annual, fractional (0.04 = 4%)
	AnnualTargetPct float64
}

// DefaultConfig returns the stock engine configuration
func DefaultConfig() Config {
	return Config{
		RiskFreeRate:    DefaultRiskFreeRate,
		AnnualTargetPct: DefaultAnnualTargetPct,
	}
}

// Input is everything one computation needs
type Input struct {
	Series  series.NormalizedSeries  // the rebased active window
	Raw     []contracts.EquityPoint  // full equity history, not windowed
	Account *contracts.AccountState // nil when the live account call failed
}

// Engine computes MetricsSnapshot values
// ⭐ SSOT: performance KPIs are computed here and nowhere else
type Engine struct {
	cfg Config
}

// NewEngine creates a metrics engine
func NewEngine(cfg Config) *Engine {
	if cfg.AnnualTargetPct <= 0 {
		cfg.AnnualTargetPct = DefaultAnnualTargetPct
	}
	return &Engine{cfg: cfg}
}

// Compute builds a complete snapshot. A field that cannot be computed falls back to its
// neutral value (0, or null for benchmark fields) and marks the snapshot degraded; the other
// fields are still reported.
func (e *Engine) Compute(in Input) *contracts.MetricsSnapshot {
	m := &contracts.MetricsSnapshot{Degraded: in.Series.Degraded}

	last, hasLast := lastValid(in.Series)
	if hasLast {
		m.CumulativeReturnPct = last.StrategyReturnPct
		if last.BenchmarkReturnPct.Valid {
			m.BenchmarkReturnPct = last.BenchmarkReturnPct
			m.ExcessReturnPct = null.FloatFrom(last.StrategyReturnPct - last.BenchmarkReturnPct.Float64)
		}
	}

	var periodOK bool
	m.PeriodReturnPct, periodOK = PeriodReturnPct(in.Raw, in.Account)

	m.RiskAdjustedRatio = e.RiskAdjustedRatio(in.Raw)

	m.CurrentEquity = currentEquity(in.Raw, in.Account)
	var inceptionOK bool
	m.SinceInceptionPct, inceptionOK = sinceInception(in.Raw, m.CurrentEquity)
	m.TargetProgressPct = e.targetProgress(m.SinceInceptionPct)

	if !periodOK || !inceptionOK {
		m.Degraded = true
	}
	if sanitize(m) {
		m.Degraded = true
	}

	return m
}

// lastValid returns the last point not flagged invalid
func lastValid(s series.NormalizedSeries) (contracts.NormalizedPoint, bool) {
	for i := len(s.Points) - 1; i >= 0; i-- {
		if !s.Points[i].Invalid {
			return s.Points[i], true
		}
	}
	return contracts.NormalizedPoint{}, false
}

// PeriodReturnPct is the return since the prior close, independent of the window.
// It uses the live account (equity vs previous close) and falls back to the last two raw
// equity observations. ok is false when the previous value is unusable.
func PeriodReturnPct(raw []contracts.EquityPoint, account *contracts.AccountState) (pct float64, ok bool) {
	var current, previous float64
	switch {
	case account != nil:
		current, previous = account.Equity, account.PreviousCloseEquity
	case len(raw) >= 2:
		current, previous = raw[len(raw)-1].Value, raw[len(raw)-2].Value
	default:
		return 0, true
	}

	if !(previous > 0) {
		return 0, false
	}
	return finiteOr((current-previous)/previous*100, 0)
}

// StepReturns returns the fractional step returns of an equity series.
// Steps whose previous value is not positive are skipped.
func StepReturns(raw []contracts.EquityPoint) []float64 {
	if len(raw) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(raw)-1)
	for i := 1; i < len(raw); i++ {
		prev, curr := raw[i-1].Value, raw[i].Value
		if !(prev > 0) {
			continue
		}
		r := (curr - prev) / prev
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		returns = append(returns, r)
	}
	return returns
}

// RiskAdjustedRatio is the annualized Sharpe-style ratio of the raw equity series:
// ((mean - rf/252) / stddev) * sqrt(252), with population moments (divide by N).
// Fewer than two returns or zero deviation yields 0.
func (e *Engine) RiskAdjustedRatio(raw []contracts.EquityPoint) float64 {
	returns := StepReturns(raw)
	if len(returns) < 2 {
		return 0
	}

	mean, std := stat.PopMeanStdDev(returns, nil)
	if std == 0 || math.IsNaN(std) {
		return 0
	}

	dailyRiskFree := e.cfg.RiskFreeRate / TradingDaysPerYear
	ratio := (mean - dailyRiskFree) / std * math.Sqrt(TradingDaysPerYear)
	ratio, _ = finiteOr(ratio, 0)
	return ratio
}

func currentEquity(raw []contracts.EquityPoint, account *contracts.AccountState) float64 {
	if account != nil && account.Equity > 0 {
		return account.Equity
	}
	if len(raw) > 0 {
		return raw[len(raw)-1].Value
	}
	return 0
}

// sinceInception compares the current equity to the first funded observation
func sinceInception(raw []contracts.EquityPoint, current float64) (float64, bool) {
	if len(raw) == 0 {
		return 0, true
	}
	base := raw[0].Value
	if !(base > 0) {
		return 0, false
	}
	return finiteOr((current-base)/base*100, 0)
}

// targetProgress is the share of the annual target reached, clamped to [0, 100]
func (e *Engine) targetProgress(sinceInception float64) float64 {
	p := sinceInception / e.cfg.AnnualTargetPct * 100
	return math.Max(0, math.Min(100, p))
}

func finiteOr(v, fallback float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback, false
	}
	return v, true
}

// sanitize coerces any remaining non-finite field and reports whether it had to
func sanitize(m *contracts.MetricsSnapshot) bool {
	coerced := false
	for _, f := range []*float64{&m.CumulativeReturnPct, &m.PeriodReturnPct, &m.RiskAdjustedRatio, &m.SinceInceptionPct, &m.TargetProgressPct, &m.CurrentEquity} {
		if v, ok := finiteOr(*f, 0); !ok {
			*f = v
			coerced = true
		}
	}
	for _, f := range []*null.Float{&m.ExcessReturnPct, &m.BenchmarkReturnPct} {
		if f.Valid {
			if _, ok := finiteOr(f.Float64, 0); !ok {
				*f = null.Float{}
				coerced = true
			}
		}
	}
	return coerced
}
