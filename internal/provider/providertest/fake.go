// Package providertest offers an in-memory provider for tests.
package providertest

import (
	"context"
	"sync"

	"github.com/wonny/perfdash/internal/contracts"
)

// Fake serves canned responses and counts calls.
// Hooks, when set, run before the canned response and may block.
type Fake struct {
	mu sync.Mutex

	Equity     []contracts.EquityPoint
	EquityErr  error
	Account    *contracts.AccountState
	AccountErr error
	Bars       []contracts.PricePoint
	BarsErr    error
	Clock      *contracts.MarketClock
	ClockErr   error

	EquityHook func(ctx context.Context)

	EquityCalls  int
	AccountCalls int
	BarsCalls    int
	ClockCalls   int
	BarsStarts   []contracts.Date
}

// Set swaps canned values under the lock
func (f *Fake) Set(fn func(f *Fake)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

// Calls returns the equity, account and bars call counts
func (f *Fake) Calls() (equity, account, bars int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.EquityCalls, f.AccountCalls, f.BarsCalls
}

// LastBarsStart returns the start of the most recent bars request
func (f *Fake) LastBarsStart() contracts.Date {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.BarsStarts) == 0 {
		return contracts.Date{}
	}
	return f.BarsStarts[len(f.BarsStarts)-1]
}

func (f *Fake) FetchEquitySeries(ctx context.Context) ([]contracts.EquityPoint, error) {
	f.mu.Lock()
	f.EquityCalls++
	hook := f.EquityHook
	f.mu.Unlock()

	if hook != nil {
		hook(ctx)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.EquityErr != nil {
		return nil, f.EquityErr
	}
	return append([]contracts.EquityPoint(nil), f.Equity...), nil
}

func (f *Fake) FetchCurrentAccountState(ctx context.Context) (*contracts.AccountState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AccountCalls++
	if f.AccountErr != nil {
		return nil, f.AccountErr
	}
	if f.Account == nil {
		return nil, contracts.ErrDataUnavailable
	}
	acct := *f.Account
	return &acct, nil
}

func (f *Fake) FetchBenchmarkSeries(ctx context.Context, start contracts.Date) ([]contracts.PricePoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.BarsCalls++
	f.BarsStarts = append(f.BarsStarts, start)
	if f.BarsErr != nil {
		return nil, f.BarsErr
	}
	var out []contracts.PricePoint
	for _, b := range f.Bars {
		if !b.Date.Before(start) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *Fake) FetchMarketClock(ctx context.Context) (*contracts.MarketClock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ClockCalls++
	if f.ClockErr != nil {
		return nil, f.ClockErr
	}
	if f.Clock == nil {
		return nil, contracts.ErrDataUnavailable
	}
	c := *f.Clock
	return &c, nil
}
