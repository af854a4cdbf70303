package alpaca

import (
	"time"

	alpacaapi "github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"github.com/wonny/perfdash/internal/contracts"
)

// historyToEquity zips timestamps with equity values.
// Null equity entries decode to zero and are dropped.
func historyToEquity(h *alpacaapi.PortfolioHistory) []contracts.EquityPoint {
	if h == nil {
		return nil
	}

	n := len(h.Timestamp)
	if len(h.Equity) < n {
		n = len(h.Equity)
	}

	points := make([]contracts.EquityPoint, 0, n)
	for i := 0; i < n; i++ {
		if h.Equity[i].IsZero() {
			continue
		}
		points = append(points, contracts.EquityPoint{
			Timestamp: h.Timestamp[i],
			Value:     h.Equity[i].InexactFloat64(),
		})
	}
	return points
}

func accountToState(a *alpacaapi.Account) *contracts.AccountState {
	return &contracts.AccountState{
		Equity:              a.Equity.InexactFloat64(),
		PreviousCloseEquity: a.LastEquity.InexactFloat64(),
	}
}

// barsToPrices dates each bar in the market timezone
func barsToPrices(bars []marketdata.Bar, loc *time.Location) []contracts.PricePoint {
	prices := make([]contracts.PricePoint, 0, len(bars))
	for _, b := range bars {
		prices = append(prices, contracts.PricePoint{
			Date:  contracts.DateOf(b.Timestamp, loc),
			Close: b.Close,
		})
	}
	return prices
}
