package proxy

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"

	"github.com/wonny/perfdash/internal/contracts"
	"github.com/wonny/perfdash/pkg/config"
	"github.com/wonny/perfdash/pkg/httputil"
	"github.com/wonny/perfdash/pkg/logger"
)

// barsLimit covers more than a year of daily bars in one page
const barsLimit = 1000

// Client reads brokerage data through a key-holding HTTP proxy.
// The proxy forwards ?endpoint=account|clock|history|bars to the brokerage unchanged.
// ⭐ SSOT: proxy calls happen in this client only
type Client struct {
	http    *httputil.Client
	logger  *logger.Logger
	baseURL string
	period  string
	symbol  string
	loc     *time.Location
}

// NewClient creates a proxy client
func NewClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		http:    httpClient,
		logger:  log,
		baseURL: strings.TrimRight(cfg.Provider.ProxyURL, "?"),
		period:  cfg.Provider.HistoryPeriod,
		symbol:  cfg.Analytics.BenchmarkSymbol,
		loc:     cfg.Location(),
	}
}

type accountResponse struct {
	Equity     decimal.Decimal `json:"equity"`
	LastEquity decimal.Decimal `json:"last_equity"`
}

type historyResponse struct {
	Timestamp []int64      `json:"timestamp"`
	Equity    []null.Float `json:"equity"`
}

type barResponse struct {
	Timestamp time.Time `json:"t"`
	Close     float64   `json:"c"`
}

type barsResponse struct {
	Bars map[string][]barResponse `json:"bars"`
}

type clockResponse struct {
	Timestamp time.Time `json:"timestamp"`
	IsOpen    bool      `json:"is_open"`
	NextOpen  time.Time `json:"next_open"`
	NextClose time.Time `json:"next_close"`
}

func (c *Client) endpoint(name string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("endpoint", name)

	sep := "?"
	if strings.Contains(c.baseURL, "?") {
		sep = "&"
	}
	return c.baseURL + sep + params.Encode()
}

// FetchEquitySeries returns the daily portfolio history
func (c *Client) FetchEquitySeries(ctx context.Context) ([]contracts.EquityPoint, error) {
	var resp historyResponse
	if err := c.http.GetJSON(ctx, c.endpoint("history", url.Values{"period": {c.period}}), &resp); err != nil {
		return nil, fmt.Errorf("proxy history request failed: %w", err)
	}

	points := resp.points()
	c.logger.WithFields(map[string]interface{}{
		"period": c.period,
		"points": len(points),
	}).Debug("Fetched portfolio history via proxy")

	return points, nil
}

// points drops null equity entries
func (r historyResponse) points() []contracts.EquityPoint {
	n := len(r.Timestamp)
	if len(r.Equity) < n {
		n = len(r.Equity)
	}

	points := make([]contracts.EquityPoint, 0, n)
	for i := 0; i < n; i++ {
		if !r.Equity[i].Valid {
			continue
		}
		points = append(points, contracts.EquityPoint{
			Timestamp: r.Timestamp[i],
			Value:     r.Equity[i].Float64,
		})
	}
	return points
}

// FetchCurrentAccountState returns live equity and the previous close
func (c *Client) FetchCurrentAccountState(ctx context.Context) (*contracts.AccountState, error) {
	var resp accountResponse
	if err := c.http.GetJSON(ctx, c.endpoint("account", nil), &resp); err != nil {
		return nil, fmt.Errorf("proxy account request failed: %w", err)
	}

	return &contracts.AccountState{
		Equity:              resp.Equity.InexactFloat64(),
		PreviousCloseEquity: resp.LastEquity.InexactFloat64(),
	}, nil
}

// FetchBenchmarkSeries returns daily closes of the benchmark from start
func (c *Client) FetchBenchmarkSeries(ctx context.Context, start contracts.Date) ([]contracts.PricePoint, error) {
	params := url.Values{
		"symbols": {c.symbol},
		"limit":   {fmt.Sprint(barsLimit)},
		"start":   {start.String()},
	}

	var resp barsResponse
	if err := c.http.GetJSON(ctx, c.endpoint("bars", params), &resp); err != nil {
		return nil, fmt.Errorf("proxy bars request for %s failed: %w", c.symbol, err)
	}

	bars := resp.Bars[c.symbol]
	prices := make([]contracts.PricePoint, 0, len(bars))
	for _, b := range bars {
		prices = append(prices, contracts.PricePoint{
			Date:  contracts.DateOf(b.Timestamp, c.loc),
			Close: b.Close,
		})
	}
	return prices, nil
}

// FetchMarketClock reports whether the market is open
func (c *Client) FetchMarketClock(ctx context.Context) (*contracts.MarketClock, error) {
	var resp clockResponse
	if err := c.http.GetJSON(ctx, c.endpoint("clock", nil), &resp); err != nil {
		return nil, fmt.Errorf("proxy clock request failed: %w", err)
	}

	return &contracts.MarketClock{
		Timestamp: resp.Timestamp,
		IsOpen:    resp.IsOpen,
		NextOpen:  resp.NextOpen,
		NextClose: resp.NextClose,
	}, nil
}
