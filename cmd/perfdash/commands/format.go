package commands

import (
	"fmt"
	"io"

	"github.com/guregu/null/v6"

	"github.com/wonny/perfdash/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// every command prints with the same layout
// ═══════════════════════════════════════════════════════════

// PrintSeparator prints a visual separator
func PrintSeparator(w io.Writer) {
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator(w io.Writer) {
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
}

// PrintHeader prints a titled block header
func PrintHeader(w io.Writer, title string) {
	fmt.Fprintln(w)
	PrintDoubleSeparator(w)
	fmt.Fprintf(w, "  %s\n", title)
	PrintSeparator(w)
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintf(w, "⚠️  %s\n", message)
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(w io.Writer, key string, value string, keyWidth int) {
	fmt.Fprintf(w, "   %-*s : %s\n", keyWidth, key, value)
}

// PrintTableHeader prints a table header
func PrintTableHeader(w io.Writer, columns []string, widths []int) {
	PrintTableRow(w, columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	for i := 0; i < totalWidth; i++ {
		fmt.Fprint(w, "─")
	}
	fmt.Fprintln(w)
}

// PrintTableRow prints a table row
func PrintTableRow(w io.Writer, values []string, widths []int) {
	for i, val := range values {
		fmt.Fprintf(w, "%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Fprint(w, "  ")
		}
	}
	fmt.Fprintln(w)
}

// pct formats a percentage with sign
func pct(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}

// nullPct formats a nullable percentage; null renders as "n/a"
func nullPct(v null.Float) string {
	if !v.Valid {
		return "n/a"
	}
	return pct(v.Float64)
}

// PrintSnapshot renders a dashboard snapshot as KPIs followed by the series table
func PrintSnapshot(w io.Writer, snap contracts.DashboardSnapshot, benchmark string) {
	PrintHeader(w, fmt.Sprintf("Performance • %s • %s", snap.Range, snap.State))

	if snap.LastError != "" {
		PrintWarning(w, snap.LastError)
	}

	if m := snap.Metrics; m != nil {
		PrintKeyValue(w, "Equity", fmt.Sprintf("$%.2f", m.CurrentEquity), 16)
		PrintKeyValue(w, "Range return", pct(m.CumulativeReturnPct), 16)
		PrintKeyValue(w, "Day return", pct(m.PeriodReturnPct), 16)
		PrintKeyValue(w, benchmark+" return", nullPct(m.BenchmarkReturnPct), 16)
		PrintKeyValue(w, "Alpha", nullPct(m.ExcessReturnPct), 16)
		PrintKeyValue(w, "Sharpe", fmt.Sprintf("%.2f", m.RiskAdjustedRatio), 16)
		PrintKeyValue(w, "Since inception", pct(m.SinceInceptionPct), 16)
		PrintKeyValue(w, "Annual target", fmt.Sprintf("%.0f%%", m.TargetProgressPct), 16)
		if m.Degraded {
			PrintWarning(w, "some metrics fell back to neutral values")
		}
	}

	if len(snap.Series) == 0 {
		return
	}

	fmt.Fprintln(w)
	widths := []int{12, 10, 10}
	PrintTableHeader(w, []string{"Date", "Strategy", benchmark}, widths)
	for _, p := range snap.Series {
		PrintTableRow(w, []string{p.Date.String(), pct(p.StrategyReturnPct), nullPct(p.BenchmarkReturnPct)}, widths)
	}
	PrintDoubleSeparator(w)
}

// PrintClock renders the market clock
func PrintClock(w io.Writer, c *contracts.MarketClock) {
	status := "CLOSED"
	if c.IsOpen {
		status = "OPEN"
	}
	PrintHeader(w, "Market "+status)
	PrintKeyValue(w, "As of", c.Timestamp.Format("2006-01-02 15:04 MST"), 10)
	PrintKeyValue(w, "Next open", c.NextOpen.Format("2006-01-02 15:04 MST"), 10)
	PrintKeyValue(w, "Next close", c.NextClose.Format("2006-01-02 15:04 MST"), 10)
	PrintDoubleSeparator(w)
}
