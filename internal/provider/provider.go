// Package provider defines the upstream market data boundary of the dashboard.
package provider

import (
	"context"

	"github.com/wonny/perfdash/internal/contracts"
)

// MarketData supplies the three inputs of a refresh cycle
// ⭐ SSOT: every upstream implementation satisfies this interface
type MarketData interface {
	// FetchEquitySeries returns the daily equity history, ordered by timestamp
	FetchEquitySeries(ctx context.Context) ([]contracts.EquityPoint, error)
	// FetchCurrentAccountState returns live equity and the previous close
	FetchCurrentAccountState(ctx context.Context) (*contracts.AccountState, error)
	// FetchBenchmarkSeries returns daily benchmark closes from start onward
	FetchBenchmarkSeries(ctx context.Context, start contracts.Date) ([]contracts.PricePoint, error)
}

// Clock reports market hours
type Clock interface {
	FetchMarketClock(ctx context.Context) (*contracts.MarketClock, error)
}

// Provider is an upstream that serves both market data and the clock
type Provider interface {
	MarketData
	Clock
}
