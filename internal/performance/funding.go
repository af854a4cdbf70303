package performance

import (
	"time"

	"github.com/wonny/perfdash/internal/contracts"
)

// fundedHistory applies the project-start filter and then drops the unfunded lead-in:
// every point before the first one whose equity exceeds threshold. When no point falls on or
// after the project start the filter is skipped. Returns nil when nothing is funded.
func fundedHistory(raw []contracts.EquityPoint, projectStart contracts.Date, threshold float64, loc *time.Location) []contracts.EquityPoint {
	global := make([]contracts.EquityPoint, 0, len(raw))
	for _, p := range raw {
		if !contracts.DateOfUnix(p.Timestamp, loc).Before(projectStart) {
			global = append(global, p)
		}
	}
	if len(global) == 0 {
		global = append(global, raw...)
	}

	for i, p := range global {
		if p.Value > threshold {
			return global[i:]
		}
	}
	return nil
}
