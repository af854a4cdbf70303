package performance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/guregu/null/v6"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/perfdash/internal/contracts"
	"github.com/wonny/perfdash/internal/metrics"
	"github.com/wonny/perfdash/internal/provider"
	"github.com/wonny/perfdash/internal/series"
	"github.com/wonny/perfdash/pkg/logger"
)

// ErrSuperseded is returned by Refresh when a newer cycle published first
var ErrSuperseded = errors.New("refresh superseded by a newer cycle")

// published is the immutable result of one successful cycle
type published struct {
	rng       contracts.TimeRange
	series    []contracts.NormalizedPoint
	metrics   *contracts.MetricsSnapshot
	updatedAt time.Time
}

// Tracker runs refresh cycles and holds the dashboard snapshot
// ⭐ SSOT: the only writer of dashboard state
type Tracker struct {
	md     provider.MarketData
	engine *metrics.Engine
	opts   Options
	logger *logger.Logger

	data atomic.Pointer[published]
	seq  atomic.Uint64

	mu      sync.Mutex
	rng     contracts.TimeRange
	state   contracts.RefreshState
	lastErr string
	applied uint64 // sequence of the newest finished cycle

	subs *broadcaster
}

// NewTracker creates a tracker in the idle state
func NewTracker(md provider.MarketData, opts Options, log *logger.Logger) *Tracker {
	opts = opts.withDefaults()
	return &Tracker{
		md:     md,
		engine: metrics.NewEngine(opts.Metrics),
		opts:   opts,
		logger: log.WithField("component", "tracker"),
		rng:    opts.Range,
		state:  contracts.StateIdle,
		subs:   newBroadcaster(),
	}
}

// Range returns the range the next cycle will use
func (t *Tracker) Range() contracts.TimeRange {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rng
}

// SetRange stores r for the next cycle. An in-flight cycle keeps the range it started with.
func (t *Tracker) SetRange(r contracts.TimeRange) error {
	if !r.Valid() {
		return fmt.Errorf("unknown time range %q", r)
	}

	t.mu.Lock()
	prev := t.rng
	t.rng = r
	t.mu.Unlock()

	if prev != r {
		t.logger.WithFields(map[string]interface{}{
			"from": prev,
			"to":   r,
		}).Info("Range changed")
	}
	return nil
}

// Snapshot returns the last published data with the current state and range
func (t *Tracker) Snapshot() contracts.DashboardSnapshot {
	t.mu.Lock()
	snap := contracts.DashboardSnapshot{
		Range:     t.rng,
		State:     t.state,
		LastError: t.lastErr,
	}
	t.mu.Unlock()

	if p := t.data.Load(); p != nil {
		snap.SeriesRange = p.rng
		snap.Series = p.series
		snap.Metrics = p.metrics
		snap.UpdatedAt = p.updatedAt
	}
	if snap.Series == nil {
		snap.Series = []contracts.NormalizedPoint{}
	}
	return snap
}

// Subscribe returns a channel that receives every snapshot published after the call,
// and a function that ends the subscription. Slow readers only see the latest snapshot.
func (t *Tracker) Subscribe() (<-chan contracts.DashboardSnapshot, func()) {
	return t.subs.subscribe()
}

// fetched collects the three provider results of one cycle
type fetched struct {
	equity     []contracts.EquityPoint
	account    *contracts.AccountState
	accountErr error
	bars       []contracts.PricePoint
	barsErr    error
}

// Refresh runs one cycle: fetch, align, window, normalize, compute, publish.
// A failed cycle leaves the last published data in place and moves the state to failed.
func (t *Tracker) Refresh(ctx context.Context) error {
	seq := t.seq.Add(1)

	t.mu.Lock()
	rng := t.rng
	t.state = contracts.StateFetching
	t.mu.Unlock()

	now := t.opts.Now()
	windowOpts := series.WindowOptions{
		Range:        rng,
		Today:        contracts.DateOf(now, t.opts.Location),
		Now:          now,
		ProjectStart: t.opts.ProjectStart,
	}
	benchStart := windowOpts.Cutoff().AddDays(-t.opts.LeadDays)

	log := t.logger.WithFields(map[string]interface{}{
		"cycle": seq,
		"range": rng,
	})
	log.Debug("Refresh started")

	f, err := t.fetch(ctx, benchStart)
	if err != nil {
		return t.fail(seq, log, fmt.Errorf("equity history: %w: %w", contracts.ErrDataUnavailable, err))
	}

	raw := fundedHistory(f.equity, t.opts.ProjectStart, t.opts.FundingThreshold, t.opts.Location)
	if len(raw) == 0 {
		return t.fail(seq, log, fmt.Errorf("no funded equity history: %w", contracts.ErrDataUnavailable))
	}

	if f.accountErr != nil {
		log.WithError(f.accountErr).Warn("Account state unavailable, skipping live point")
	} else if f.account != nil && f.account.Equity > 0 {
		windowOpts.Live = null.FloatFrom(f.account.Equity)
	}

	if f.barsErr != nil {
		log.WithError(f.barsErr).Warn("Benchmark unavailable, benchmark fields will be null")
		f.bars = nil
	}

	aligned := series.Align(raw, f.bars, t.opts.Location, t.opts.LeadDays)
	window := series.SelectWindow(aligned, windowOpts)
	if f.barsErr == nil && len(window) > 0 {
		if viewStart := window[0].Date.AddDays(-t.opts.LeadDays); viewStart.Before(benchStart) {
			window = t.widenBenchmark(ctx, log, raw, viewStart, windowOpts, window)
		}
	}
	normalized := series.Normalize(window)

	m := t.engine.Compute(metrics.Input{
		Series:  normalized,
		Raw:     raw,
		Account: f.account,
	})
	if !m.BenchmarkAvailable() {
		log.WithError(contracts.ErrPartialAvailability).Debug("Benchmark missing from window")
	}
	if m.Degraded {
		log.WithError(contracts.ErrDegenerateInput).Warn("Metrics degraded")
	}

	return t.publish(seq, log, &published{
		rng:       rng,
		series:    normalized.Points,
		metrics:   m,
		updatedAt: now,
	})
}

// widenBenchmark refetches the benchmark from the start of a last-points fallback window,
// which begins before the range cutoff the first fetch was sized for.
// On failure the original window is kept.
func (t *Tracker) widenBenchmark(ctx context.Context, log *logger.Logger, raw []contracts.EquityPoint, start contracts.Date, opts series.WindowOptions, window []contracts.AlignedPoint) []contracts.AlignedPoint {
	bars, err := t.md.FetchBenchmarkSeries(ctx, start)
	if err != nil {
		log.WithError(err).Warn("Benchmark refetch for fallback window failed")
		return window
	}
	log.WithField("start", start.String()).Debug("Benchmark refetched for fallback window")
	return series.SelectWindow(series.Align(raw, bars, t.opts.Location, t.opts.LeadDays), opts)
}

// fetch issues the three provider calls concurrently.
// Only the equity history failing fails the whole fetch.
func (t *Tracker) fetch(ctx context.Context, benchStart contracts.Date) (*fetched, error) {
	var f fetched
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		equity, err := t.md.FetchEquitySeries(gctx)
		if err != nil {
			return err
		}
		if len(equity) == 0 {
			return errors.New("empty history")
		}
		f.equity = equity
		return nil
	})

	g.Go(func() error {
		f.account, f.accountErr = t.md.FetchCurrentAccountState(gctx)
		return nil
	})

	g.Go(func() error {
		f.bars, f.barsErr = t.md.FetchBenchmarkSeries(gctx, benchStart)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (t *Tracker) publish(seq uint64, log *logger.Logger, p *published) error {
	t.mu.Lock()
	if seq < t.applied {
		t.mu.Unlock()
		log.Debug("Discarding superseded cycle")
		return ErrSuperseded
	}
	t.applied = seq
	t.data.Store(p)
	t.state = contracts.StateReady
	t.lastErr = ""
	t.mu.Unlock()

	log.WithFields(map[string]interface{}{
		"points":     len(p.series),
		"cumulative": p.metrics.CumulativeReturnPct,
		"degraded":   p.metrics.Degraded,
	}).Info("Snapshot published")

	t.subs.publish(t.Snapshot())
	return nil
}

func (t *Tracker) fail(seq uint64, log *logger.Logger, err error) error {
	t.mu.Lock()
	if seq < t.applied {
		t.mu.Unlock()
		log.WithError(err).Debug("Discarding superseded failed cycle")
		return ErrSuperseded
	}
	t.applied = seq
	t.state = contracts.StateFailed
	t.lastErr = err.Error()
	t.mu.Unlock()

	log.WithError(err).Error("Refresh failed, keeping last snapshot")

	t.subs.publish(t.Snapshot())
	return err
}

// Subscribers returns the number of live snapshot subscriptions
func (t *Tracker) Subscribers() int {
	return t.subs.count()
}
