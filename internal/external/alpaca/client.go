package alpaca

import (
	"context"
	"fmt"
	"time"

	alpacaapi "github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"github.com/wonny/perfdash/internal/contracts"
	"github.com/wonny/perfdash/pkg/config"
	"github.com/wonny/perfdash/pkg/logger"
)

const (
	paperBaseURL = "https://paper-api.alpaca.markets"
	liveBaseURL  = "https://api.alpaca.markets"
)

// tradingAPI is the part of the trading SDK client this package calls
type tradingAPI interface {
	GetAccount() (*alpacaapi.Account, error)
	GetPortfolioHistory(req alpacaapi.GetPortfolioHistoryRequest) (*alpacaapi.PortfolioHistory, error)
	GetClock() (*alpacaapi.Clock, error)
}

// barsAPI is the part of the market data SDK client this package calls
type barsAPI interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// Client talks to the Alpaca brokerage directly through the official SDK
// ⭐ SSOT: Alpaca SDK calls happen in this client only
type Client struct {
	trading tradingAPI
	data    barsAPI
	logger  *logger.Logger

	period string
	symbol string
	loc    *time.Location
}

// NewClient creates an Alpaca client from config
func NewClient(cfg *config.Config, log *logger.Logger) *Client {
	baseURL := liveBaseURL
	if cfg.Provider.Paper {
		baseURL = paperBaseURL
	}

	trading := alpacaapi.NewClient(alpacaapi.ClientOpts{
		APIKey:    cfg.Provider.APIKeyID,
		APISecret: cfg.Provider.APISecretKey,
		BaseURL:   baseURL,
	})
	data := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    cfg.Provider.APIKeyID,
		APISecret: cfg.Provider.APISecretKey,
	})

	return newClient(trading, data, cfg.Provider.HistoryPeriod, cfg.Analytics.BenchmarkSymbol, cfg.Location(), log)
}

func newClient(trading tradingAPI, data barsAPI, period, symbol string, loc *time.Location, log *logger.Logger) *Client {
	return &Client{
		trading: trading,
		data:    data,
		logger:  log,
		period:  period,
		symbol:  symbol,
		loc:     loc,
	}
}

// FetchEquitySeries returns the daily portfolio history over the configured period
func (c *Client) FetchEquitySeries(ctx context.Context) ([]contracts.EquityPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	history, err := c.trading.GetPortfolioHistory(alpacaapi.GetPortfolioHistoryRequest{
		Period:    c.period,
		TimeFrame: alpacaapi.Day1,
	})
	if err != nil {
		return nil, fmt.Errorf("portfolio history request failed: %w", err)
	}

	points := historyToEquity(history)
	c.logger.WithFields(map[string]interface{}{
		"period": c.period,
		"points": len(points),
	}).Debug("Fetched portfolio history")

	return points, nil
}

// FetchCurrentAccountState returns live equity and the previous close
func (c *Client) FetchCurrentAccountState(ctx context.Context) (*contracts.AccountState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	acct, err := c.trading.GetAccount()
	if err != nil {
		return nil, fmt.Errorf("account request failed: %w", err)
	}
	return accountToState(acct), nil
}

// FetchBenchmarkSeries returns daily IEX closes of the benchmark symbol from start
func (c *Client) FetchBenchmarkSeries(ctx context.Context, start contracts.Date) ([]contracts.PricePoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bars, err := c.data.GetBars(c.symbol, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     start.Start(c.loc),
		Feed:      marketdata.IEX,
	})
	if err != nil {
		return nil, fmt.Errorf("bars request for %s failed: %w", c.symbol, err)
	}

	return barsToPrices(bars, c.loc), nil
}

// FetchMarketClock reports whether the market is open
func (c *Client) FetchMarketClock(ctx context.Context) (*contracts.MarketClock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clock, err := c.trading.GetClock()
	if err != nil {
		return nil, fmt.Errorf("clock request failed: %w", err)
	}
	return &contracts.MarketClock{
		Timestamp: clock.Timestamp,
		IsOpen:    clock.IsOpen,
		NextOpen:  clock.NextOpen,
		NextClose: clock.NextClose,
	}, nil
}
