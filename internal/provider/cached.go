package provider

import (
	"context"
	"time"

	"github.com/wonny/perfdash/internal/contracts"
	"github.com/wonny/perfdash/pkg/logger"
	"github.com/wonny/perfdash/pkg/redis"
)

// Store is the subset of redis.Cache the decorator needs
type Store interface {
	Enabled() bool
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Cached memoizes equity history and benchmark bars for ttl.
// Account state and the clock are always fetched live.
type Cached struct {
	next   Provider
	store  Store
	ttl    time.Duration
	period string
	symbol string
	logger *logger.Logger
}

// NewCached wraps next. period and symbol only namespace the keys.
func NewCached(next Provider, store Store, ttl time.Duration, period, symbol string, log *logger.Logger) *Cached {
	if ttl <= 0 {
		ttl = redis.TTLShort
	}
	return &Cached{
		next:   next,
		store:  store,
		ttl:    ttl,
		period: period,
		symbol: symbol,
		logger: log,
	}
}

// FetchEquitySeries implements MarketData
func (c *Cached) FetchEquitySeries(ctx context.Context) ([]contracts.EquityPoint, error) {
	var points []contracts.EquityPoint
	key := redis.HistoryKey(c.period)
	if c.lookup(ctx, key, &points) {
		return points, nil
	}

	points, err := c.next.FetchEquitySeries(ctx)
	if err != nil {
		return nil, err
	}
	c.save(ctx, key, points)
	return points, nil
}

// FetchCurrentAccountState implements MarketData
func (c *Cached) FetchCurrentAccountState(ctx context.Context) (*contracts.AccountState, error) {
	return c.next.FetchCurrentAccountState(ctx)
}

// FetchBenchmarkSeries implements MarketData
func (c *Cached) FetchBenchmarkSeries(ctx context.Context, start contracts.Date) ([]contracts.PricePoint, error) {
	var bars []contracts.PricePoint
	key := redis.BarsKey(c.symbol, start.String())
	if c.lookup(ctx, key, &bars) {
		return bars, nil
	}

	bars, err := c.next.FetchBenchmarkSeries(ctx, start)
	if err != nil {
		return nil, err
	}
	c.save(ctx, key, bars)
	return bars, nil
}

// FetchMarketClock implements Clock
func (c *Cached) FetchMarketClock(ctx context.Context) (*contracts.MarketClock, error) {
	return c.next.FetchMarketClock(ctx)
}

// lookup treats cache errors as misses
func (c *Cached) lookup(ctx context.Context, key string, dest interface{}) bool {
	if c.store == nil || !c.store.Enabled() {
		return false
	}
	found, err := c.store.Get(ctx, key, dest)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Cache read failed")
		return false
	}
	return found
}

func (c *Cached) save(ctx context.Context, key string, value interface{}) {
	if c.store == nil || !c.store.Enabled() {
		return
	}
	if err := c.store.Set(ctx, key, value, c.ttl); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
}
