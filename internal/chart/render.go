package chart

import (
	"errors"
	"fmt"
	"math"
	"strings"

	charts "github.com/vicanso/go-charts/v2"

	"github.com/wonny/perfdash/internal/contracts"
)

// ErrNoSeries is returned when there is nothing to draw
var ErrNoSeries = errors.New("no series to render")

const (
	defaultWidth  = 1000
	defaultHeight = 560
)

// Options controls the rendered image
type Options struct {
	Width     int
	Height    int
	Benchmark string // legend label of the benchmark line
}

// RenderPNG draws the rebased strategy curve, and the benchmark curve when every point has
// one, as a PNG line chart.
func RenderPNG(snap contracts.DashboardSnapshot, opts Options) ([]byte, error) {
	if len(snap.Series) == 0 {
		return nil, ErrNoSeries
	}
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}
	if opts.Benchmark == "" {
		opts.Benchmark = "Benchmark"
	}

	values, names := lines(snap.Series, opts.Benchmark)
	xLabels := make([]string, len(snap.Series))
	for i, p := range snap.Series {
		xLabels[i] = p.Date.String()
	}
	yMin, yMax := bounds(values)

	p, err := charts.LineRender(
		values,
		charts.PNGTypeOption(),
		charts.TitleTextOptionFunc(title(snap)),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        xLabels,
			SplitNumber: splitNumber(len(xLabels)),
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{
			Min:         &yMin,
			Max:         &yMax,
			DivideCount: 5,
		}),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: names,
			Left: charts.PositionRight,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(opts.Width),
		charts.HeightOptionFunc(opts.Height),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chart bytes: %w", err)
	}
	return buf, nil
}

// lines returns the strategy series and, when complete, the benchmark series
func lines(points []contracts.NormalizedPoint, benchmark string) ([][]float64, []string) {
	strategy := make([]float64, len(points))
	bench := make([]float64, len(points))
	complete := true

	for i, p := range points {
		strategy[i] = p.StrategyReturnPct
		if p.BenchmarkReturnPct.Valid {
			bench[i] = p.BenchmarkReturnPct.Float64
		} else {
			complete = false
		}
	}

	if !complete {
		return [][]float64{strategy}, []string{"Strategy"}
	}
	return [][]float64{strategy, bench}, []string{"Strategy", benchmark}
}

// bounds pads the value range by 5%, at least one point either side
func bounds(values [][]float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, line := range values {
		for _, v := range line {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}

	pad := (hi - lo) * 0.05
	if pad < 1 {
		pad = 1
	}
	return lo - pad, hi + pad
}

func splitNumber(n int) int {
	if n > 30 {
		return 6
	}
	split := n / 3
	if split < 3 {
		split = 3
	}
	return split
}

func title(snap contracts.DashboardSnapshot) string {
	rng := snap.SeriesRange
	if rng == "" {
		rng = snap.Range
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Performance • %s", rng)
	if m := snap.Metrics; m != nil {
		fmt.Fprintf(&b, "\nReturn: %.2f%%", m.CumulativeReturnPct)
		if m.ExcessReturnPct.Valid {
			fmt.Fprintf(&b, " | Alpha: %.2f%%", m.ExcessReturnPct.Float64)
		}
		fmt.Fprintf(&b, " | Sharpe: %.2f", m.RiskAdjustedRatio)
	}
	return b.String()
}
