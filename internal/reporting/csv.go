package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders the per-run rows as a CSV string.
func RenderCSV(rows []RunRow) string {
	var sb strings.Builder

	sb.WriteString("run_id,total_trades,win_rate,net_pnl,profit_factor,win_loss_ratio,")
	sb.WriteString("max_drawdown,sharpe_ratio,avg_holding_ms,final_balance\n")

	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("%s,%d,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%d,%.6f\n",
			row.RunID,
			row.TotalTrades,
			row.WinRate,
			row.NetPnL,
			row.ProfitFactor,
			row.WinLossRatio,
			row.MaxDrawdown,
			row.SharpeRatio,
			row.AvgHoldingTimeMs,
			row.FinalBalance,
		))
	}

	return sb.String()
}
