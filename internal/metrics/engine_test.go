package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/perfdash/internal/contracts"
	"github.com/wonny/perfdash/internal/series"
)

var start = contracts.NewDate(2026, time.January, 5)

func equity(values ...float64) []contracts.EquityPoint {
	pts := make([]contracts.EquityPoint, len(values))
	for i, v := range values {
		pts[i] = contracts.EquityPoint{
			Timestamp: start.AddDays(i).Start(time.UTC).Add(5 * time.Hour).Unix(),
			Value:     v,
		}
	}
	return pts
}

func closes(values ...float64) []contracts.PricePoint {
	var pts []contracts.PricePoint
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		pts = append(pts, contracts.PricePoint{Date: start.AddDays(i), Close: v})
	}
	return pts
}

func normalized(raw []contracts.EquityPoint, bench []contracts.PricePoint) series.NormalizedSeries {
	return series.Normalize(series.Align(raw, bench, time.UTC, series.DefaultLeadDays))
}

func TestCompute_Scenario(t *testing.T) {
	raw := equity(100, 100, 100, 105, 110)
	missing := math.NaN()
	ns := normalized(raw, closes(50, missing, 51, missing, 53))

	m := NewEngine(DefaultConfig()).Compute(Input{Series: ns, Raw: raw})

	assert.InDelta(t, 10, m.CumulativeReturnPct, 1e-9)
	require.True(t, m.ExcessReturnPct.Valid)
	assert.InDelta(t, 4, m.ExcessReturnPct.Float64, 1e-9)
	assert.InDelta(t, 6, m.BenchmarkReturnPct.Float64, 1e-9)
	// no account: last two raw points 105 -> 110
	assert.InDelta(t, 100.0/21.0, m.PeriodReturnPct, 1e-9)
	assert.Equal(t, 110.0, m.CurrentEquity)
	assert.InDelta(t, 10, m.SinceInceptionPct, 1e-9)
	assert.InDelta(t, 20, m.TargetProgressPct, 1e-9)
	assert.False(t, m.Degraded)
}

func TestCompute_AlphaConsistency(t *testing.T) {
	cases := []struct {
		name  string
		raw   []contracts.EquityPoint
		bench []contracts.PricePoint
	}{
		{"outperform", equity(100, 120, 130), closes(10, 11, 12)},
		{"underperform", equity(100, 90, 95), closes(10, 11, 12)},
		{"flat benchmark", equity(100, 101, 102), closes(10, 10, 10)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ns := normalized(tc.raw, tc.bench)
			m := NewEngine(DefaultConfig()).Compute(Input{Series: ns, Raw: tc.raw})

			last, ok := ns.Last()
			require.True(t, ok)
			require.True(t, m.ExcessReturnPct.Valid)
			assert.InDelta(t, last.StrategyReturnPct-last.BenchmarkReturnPct.Float64, m.ExcessReturnPct.Float64, 1e-12)
		})
	}
}

func TestCompute_FlatBenchmarkIsZeroNotNull(t *testing.T) {
	raw := equity(100, 100)
	m := NewEngine(DefaultConfig()).Compute(Input{Series: normalized(raw, closes(10, 10)), Raw: raw})

	assert.Equal(t, null.FloatFrom(0), m.ExcessReturnPct)
	assert.True(t, m.BenchmarkAvailable())
}

func TestCompute_NoBenchmarkIsNull(t *testing.T) {
	raw := equity(100, 105)
	m := NewEngine(DefaultConfig()).Compute(Input{Series: normalized(raw, nil), Raw: raw})

	assert.False(t, m.ExcessReturnPct.Valid)
	assert.False(t, m.BenchmarkReturnPct.Valid)
	assert.False(t, m.BenchmarkAvailable())
	assert.InDelta(t, 5, m.CumulativeReturnPct, 1e-9)
}

func TestCompute_AccountDrivesPeriodReturn(t *testing.T) {
	raw := equity(1000, 1010)
	account := &contracts.AccountState{Equity: 1050, PreviousCloseEquity: 1000}

	m := NewEngine(DefaultConfig()).Compute(Input{Series: normalized(raw, nil), Raw: raw, Account: account})

	assert.InDelta(t, 5, m.PeriodReturnPct, 1e-9)
	assert.Equal(t, 1050.0, m.CurrentEquity)
	assert.InDelta(t, 5, m.SinceInceptionPct, 1e-9)
}

func TestPeriodReturnPct(t *testing.T) {
	tests := []struct {
		name    string
		raw     []contracts.EquityPoint
		account *contracts.AccountState
		want    float64
		wantOK  bool
	}{
		{"account", nil, &contracts.AccountState{Equity: 99, PreviousCloseEquity: 100}, -1, true},
		{"zero previous close", nil, &contracts.AccountState{Equity: 99}, 0, false},
		{"raw fallback", equity(200, 210), nil, 5, true},
		{"single raw point", equity(200), nil, 0, true},
		{"negative previous", equity(-1, 5), nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PeriodReturnPct(tt.raw, tt.account)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestRiskAdjustedRatio_Degenerate(t *testing.T) {
	e := NewEngine(DefaultConfig())

	assert.Equal(t, 0.0, e.RiskAdjustedRatio(equity(100, 100, 100, 100)), "constant series")
	assert.Equal(t, 0.0, e.RiskAdjustedRatio(equity(100)), "single point")
	assert.Equal(t, 0.0, e.RiskAdjustedRatio(equity(100, 110)), "single return")
	assert.Equal(t, 0.0, e.RiskAdjustedRatio(nil))
}

func TestRiskAdjustedRatio_PopulationMoments(t *testing.T) {
	// returns: +10%, -10%, +10%
	raw := equity(100, 110, 99, 108.9)
	returns := StepReturns(raw)
	require.Len(t, returns, 3)

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= 3
	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= 3 // divide by N

	want := (mean - 0.04/252) / math.Sqrt(variance) * math.Sqrt(252)

	got := NewEngine(DefaultConfig()).RiskAdjustedRatio(raw)
	assert.InDelta(t, want, got, 1e-9)
}

func TestRiskAdjustedRatio_UsesConfiguredRate(t *testing.T) {
	raw := equity(100, 101, 100.5, 102, 101.7)

	zero := NewEngine(Config{RiskFreeRate: 0}).RiskAdjustedRatio(raw)
	four := NewEngine(Config{RiskFreeRate: 0.04}).RiskAdjustedRatio(raw)

	assert.Greater(t, zero, four)
}

func TestStepReturns_SkipsNonPositivePrevious(t *testing.T) {
	returns := StepReturns(equity(0, 100, 110))
	require.Len(t, returns, 1)
	assert.InDelta(t, 0.1, returns[0], 1e-12)
}

func TestCompute_SinglePointWindow(t *testing.T) {
	raw := equity(100)
	m := NewEngine(DefaultConfig()).Compute(Input{Series: normalized(raw, closes(50)), Raw: raw})

	assert.Equal(t, 0.0, m.RiskAdjustedRatio)
	assert.Equal(t, 0.0, m.CumulativeReturnPct)
	assert.Equal(t, null.FloatFrom(0), m.ExcessReturnPct)
}

func TestCompute_EmptyInput(t *testing.T) {
	m := NewEngine(DefaultConfig()).Compute(Input{})

	require.NotNil(t, m)
	assert.Equal(t, 0.0, m.CumulativeReturnPct)
	assert.False(t, m.ExcessReturnPct.Valid)
	assert.False(t, m.Degraded)
}

func TestCompute_DegradedSeriesPropagates(t *testing.T) {
	raw := equity(0, 10, 20)
	m := NewEngine(DefaultConfig()).Compute(Input{Series: normalized(raw, nil), Raw: raw})

	assert.True(t, m.Degraded)
	assert.Equal(t, 0.0, m.SinceInceptionPct)
}

func TestCompute_SkipsInvalidTail(t *testing.T) {
	raw := equity(100, 110, math.Inf(1))
	m := NewEngine(DefaultConfig()).Compute(Input{Series: normalized(raw, nil), Raw: equity(100, 110)})

	assert.InDelta(t, 10, m.CumulativeReturnPct, 1e-9)
}

func TestTargetProgressClamped(t *testing.T) {
	e := NewEngine(Config{AnnualTargetPct: 50})

	assert.Equal(t, 100.0, e.targetProgress(80))
	assert.Equal(t, 0.0, e.targetProgress(-10))
	assert.InDelta(t, 50, e.targetProgress(25), 1e-9)
}
