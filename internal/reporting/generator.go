package reporting

import (
	"sort"
	"time"

	"tradelab/internal/backtest"
)

// Generator builds sweep reports from backtest results.
type Generator struct {
	now func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a report generator.
func NewGenerator() *Generator {
	return &Generator{
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Build assembles a report from sweep results. Rows are sorted by net
// PnL descending so the best configuration reads first.
func (g *Generator) Build(results []*backtest.Result) *Report {
	r := &Report{
		GeneratedAt: g.now(),
		RunCount:    len(results),
	}
	if len(results) == 0 {
		return r
	}

	// A sweep shares one symbol and one strategy across all points.
	r.Symbol = results[0].Symbol
	r.Strategy = results[0].Strategy

	r.Rows = buildRows(results)
	r.WindowStart, r.WindowEnd = window(results)
	r.ExitReasons = exitReasonBreakdown(results)

	if r.Rows[0].TotalTrades > 0 {
		r.BestRunID = r.Rows[0].RunID
	}
	return r
}

// buildRows flattens each result into a row and sorts by net PnL
// descending, run ID ascending on ties.
func buildRows(results []*backtest.Result) []RunRow {
	rows := make([]RunRow, len(results))
	for i, res := range results {
		rows[i] = RunRow{
			RunID:            res.RunID,
			TotalTrades:      res.TotalTrades,
			WinRate:          res.WinRate,
			NetPnL:           res.NetPnL,
			ProfitFactor:     res.ProfitFactor,
			WinLossRatio:     res.WinLossRatio,
			MaxDrawdown:      res.MaxDrawdown,
			SharpeRatio:      res.SharpeRatio,
			AvgHoldingTimeMs: res.AvgHoldingTimeMs,
			FinalBalance:     res.FinalBalance,
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].NetPnL != rows[j].NetPnL {
			return rows[i].NetPnL > rows[j].NetPnL
		}
		return rows[i].RunID < rows[j].RunID
	})
	return rows
}

// window returns the widest replayed window across all equity curves.
func window(results []*backtest.Result) (start, end int64) {
	for _, res := range results {
		if len(res.EquityCurve) == 0 {
			continue
		}
		first := res.EquityCurve[0].Timestamp
		last := res.EquityCurve[len(res.EquityCurve)-1].Timestamp
		if start == 0 || first < start {
			start = first
		}
		if last > end {
			end = last
		}
	}
	return start, end
}

// exitReasonBreakdown counts ledger entries per exit reason across the
// whole sweep, sorted by count descending, reason ascending on ties.
func exitReasonBreakdown(results []*backtest.Result) []ExitReasonRow {
	byReason := make(map[string]*ExitReasonRow)
	for _, res := range results {
		for _, t := range res.Trades {
			row := byReason[t.ExitReason]
			if row == nil {
				row = &ExitReasonRow{Reason: t.ExitReason}
				byReason[t.ExitReason] = row
			}
			row.Count++
			row.NetPnL += t.PnLNet
		}
	}

	rows := make([]ExitReasonRow, 0, len(byReason))
	for _, row := range byReason {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Reason < rows[j].Reason
	})
	return rows
}
