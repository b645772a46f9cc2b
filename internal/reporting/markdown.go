package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders the report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Sweep Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Symbol: %s | Strategy: %s | Runs: %d\n\n", r.Symbol, r.Strategy, r.RunCount))

	sb.WriteString("## Window\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Start (ms) | %d |\n", r.WindowStart))
	sb.WriteString(fmt.Sprintf("| End (ms) | %d |\n", r.WindowEnd))
	if r.BestRunID != "" {
		sb.WriteString(fmt.Sprintf("| Best Run | %s |\n", r.BestRunID))
	}
	sb.WriteString("\n")

	sb.WriteString("## Runs\n\n")
	if len(r.Rows) > 0 {
		sb.WriteString("| Run | Trades | WinRate | NetPnL | PF | W/L | MaxDD | Sharpe | AvgHold(ms) | Final |\n")
		sb.WriteString("|-----|--------|---------|--------|----|-----|-------|--------|-------------|-------|\n")
		for _, row := range r.Rows {
			sb.WriteString(fmt.Sprintf("| %s | %d | %.4f | %.4f | %.4f | %.4f | %.4f | %.4f | %d | %.4f |\n",
				row.RunID, row.TotalTrades, row.WinRate, row.NetPnL,
				row.ProfitFactor, row.WinLossRatio, row.MaxDrawdown,
				row.SharpeRatio, row.AvgHoldingTimeMs, row.FinalBalance))
		}
	} else {
		sb.WriteString("No runs completed.\n")
	}
	sb.WriteString("\n")

	sb.WriteString("## Exit Reasons\n\n")
	if len(r.ExitReasons) > 0 {
		sb.WriteString("| Reason | Count | NetPnL |\n")
		sb.WriteString("|--------|-------|--------|\n")
		for _, row := range r.ExitReasons {
			sb.WriteString(fmt.Sprintf("| %s | %d | %.4f |\n", row.Reason, row.Count, row.NetPnL))
		}
	} else {
		sb.WriteString("No trades recorded.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
