package alpaca

import (
	"context"
	"errors"
	"testing"
	"time"

	alpacaapi "github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/perfdash/internal/contracts"
	"github.com/wonny/perfdash/pkg/logger"
)

type fakeTrading struct {
	account    *alpacaapi.Account
	history    *alpacaapi.PortfolioHistory
	clock      *alpacaapi.Clock
	err        error
	historyReq alpacaapi.GetPortfolioHistoryRequest
}

func (f *fakeTrading) GetAccount() (*alpacaapi.Account, error) { return f.account, f.err }

func (f *fakeTrading) GetPortfolioHistory(req alpacaapi.GetPortfolioHistoryRequest) (*alpacaapi.PortfolioHistory, error) {
	f.historyReq = req
	return f.history, f.err
}

func (f *fakeTrading) GetClock() (*alpacaapi.Clock, error) { return f.clock, f.err }

type fakeBars struct {
	bars   []marketdata.Bar
	err    error
	symbol string
	req    marketdata.GetBarsRequest
}

func (f *fakeBars) GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error) {
	f.symbol = symbol
	f.req = req
	return f.bars, f.err
}

func newYork(t *testing.T) *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	return loc
}

func TestFetchEquitySeries(t *testing.T) {
	trading := &fakeTrading{history: &alpacaapi.PortfolioHistory{
		Timestamp: []int64{100, 200, 300, 400},
		Equity: []decimal.Decimal{
			decimal.Zero, // null in the payload
			decimal.NewFromFloat(1000.25),
			decimal.NewFromFloat(1010.5),
		},
	}}
	c := newClient(trading, &fakeBars{}, "1A", "SPY", time.UTC, logger.Nop())

	points, err := c.FetchEquitySeries(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []contracts.EquityPoint{
		{Timestamp: 200, Value: 1000.25},
		{Timestamp: 300, Value: 1010.5},
	}, points)
	assert.Equal(t, "1A", trading.historyReq.Period)
	assert.Equal(t, alpacaapi.Day1, trading.historyReq.TimeFrame)
}

func TestFetchEquitySeries_Error(t *testing.T) {
	trading := &fakeTrading{err: errors.New("forbidden")}
	c := newClient(trading, &fakeBars{}, "1A", "SPY", time.UTC, logger.Nop())

	_, err := c.FetchEquitySeries(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "portfolio history")
}

func TestFetchEquitySeries_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newClient(&fakeTrading{}, &fakeBars{}, "1A", "SPY", time.UTC, logger.Nop())
	_, err := c.FetchEquitySeries(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchCurrentAccountState(t *testing.T) {
	trading := &fakeTrading{account: &alpacaapi.Account{
		Equity:     decimal.RequireFromString("10500.75"),
		LastEquity: decimal.RequireFromString("10000"),
	}}
	c := newClient(trading, &fakeBars{}, "1A", "SPY", time.UTC, logger.Nop())

	state, err := c.FetchCurrentAccountState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10500.75, state.Equity)
	assert.Equal(t, 10000.0, state.PreviousCloseEquity)
}

func TestFetchBenchmarkSeries(t *testing.T) {
	loc := newYork(t)
	bars := &fakeBars{bars: []marketdata.Bar{
		// daily bars are stamped at midnight New York time
		{Timestamp: time.Date(2026, time.March, 2, 5, 0, 0, 0, time.UTC), Close: 580.1},
		{Timestamp: time.Date(2026, time.March, 3, 5, 0, 0, 0, time.UTC), Close: 582.4},
	}}
	c := newClient(&fakeTrading{}, bars, "1A", "SPY", loc, logger.Nop())

	start := contracts.NewDate(2026, time.February, 25)
	prices, err := c.FetchBenchmarkSeries(context.Background(), start)
	require.NoError(t, err)

	assert.Equal(t, "SPY", bars.symbol)
	assert.Equal(t, marketdata.IEX, bars.req.Feed)
	assert.Equal(t, marketdata.OneDay, bars.req.TimeFrame)
	assert.True(t, bars.req.Start.Equal(start.Start(loc)))

	require.Len(t, prices, 2)
	assert.Equal(t, contracts.NewDate(2026, time.March, 2), prices[0].Date)
	assert.Equal(t, 582.4, prices[1].Close)
}

func TestFetchMarketClock(t *testing.T) {
	next := time.Date(2026, time.March, 3, 14, 30, 0, 0, time.UTC)
	trading := &fakeTrading{clock: &alpacaapi.Clock{IsOpen: false, NextOpen: next}}
	c := newClient(trading, &fakeBars{}, "1A", "SPY", time.UTC, logger.Nop())

	clock, err := c.FetchMarketClock(context.Background())
	require.NoError(t, err)
	assert.False(t, clock.IsOpen)
	assert.True(t, clock.NextOpen.Equal(next))
}

func TestHistoryToEquity_Nil(t *testing.T) {
	assert.Nil(t, historyToEquity(nil))
}
