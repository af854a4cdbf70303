package contracts

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeRange(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeRange
		wantErr bool
	}{
		{"1W", RangeOneWeek, false},
		{"1m", RangeOneMonth, false},
		{" 1y ", RangeOneYear, false},
		{"all", RangeAll, false},
		{"3M", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeRange(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeRange_LookbackDays(t *testing.T) {
	for r, want := range map[TimeRange]int{RangeOneWeek: 7, RangeOneMonth: 30, RangeOneYear: 365} {
		days, ok := r.LookbackDays()
		assert.True(t, ok, r)
		assert.Equal(t, want, days, r)
	}

	_, ok := RangeAll.LookbackDays()
	assert.False(t, ok)
}

func TestNormalizedPoint_JSONNullBenchmark(t *testing.T) {
	p := NormalizedPoint{
		Timestamp:         1765497600,
		Date:              NewDate(2025, time.December, 12),
		StrategyReturnPct: 1.5,
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))

	// unavailable must be null, never 0
	assert.Nil(t, raw["benchmark_return_pct"])
	assert.Equal(t, "2025-12-12", raw["date"])
	assert.NotContains(t, raw, "invalid")
}

func TestMetricsSnapshot_BenchmarkAvailable(t *testing.T) {
	var nilSnap *MetricsSnapshot
	assert.False(t, nilSnap.BenchmarkAvailable())

	assert.False(t, (&MetricsSnapshot{}).BenchmarkAvailable())
	assert.True(t, (&MetricsSnapshot{ExcessReturnPct: null.FloatFrom(0)}).BenchmarkAvailable())
}

func TestDashboardSnapshot_HasData(t *testing.T) {
	var s *DashboardSnapshot
	assert.False(t, s.HasData())
	assert.False(t, (&DashboardSnapshot{State: StateFetching}).HasData())
	assert.True(t, (&DashboardSnapshot{Metrics: &MetricsSnapshot{}}).HasData())
}
