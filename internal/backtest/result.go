package backtest

import (
	"math"

	"tradelab/internal/domain"
)

// AnnualizationFactor converts the per-trade return distribution into an
// annualized Sharpe-like ratio. Fixed so calibration sweeps stay
// comparable across runs.
const AnnualizationFactor = 365

// maxStatRatio caps ratio statistics (profit factor, win/loss ratio)
// when the denominator is zero, instead of letting them go unbounded.
const maxStatRatio = 1000.0

// Result is the aggregate output of one backtest run.
type Result struct {
	RunID          string
	Symbol         string
	Strategy       string
	Trades         []domain.ClosedTrade
	EquityCurve    []domain.EquityPoint
	InitialBalance float64
	FinalBalance   float64

	TotalTrades      int
	WinRate          float64 // fraction of ledger entries with positive net PnL
	GrossProfit      float64 // sum of winning net PnL
	GrossLoss        float64 // absolute sum of losing net PnL
	NetPnL           float64
	ProfitFactor     float64 // GrossProfit / GrossLoss
	WinLossRatio     float64 // average win / average loss
	MaxDrawdown      float64
	SharpeRatio      float64 // annualized, over percentage returns
	AvgHoldingTimeMs int64
}

// Summary flattens the result into its persisted form. Start and end
// times come from the equity curve, which always brackets the replayed
// window.
func (r *Result) Summary() *domain.RunSummary {
	var start, end int64
	if len(r.EquityCurve) > 0 {
		start = r.EquityCurve[0].Timestamp
		end = r.EquityCurve[len(r.EquityCurve)-1].Timestamp
	}
	return &domain.RunSummary{
		RunID:            r.RunID,
		Symbol:           r.Symbol,
		Strategy:         r.Strategy,
		StartTime:        start,
		EndTime:          end,
		InitialBalance:   r.InitialBalance,
		FinalBalance:     r.FinalBalance,
		TotalTrades:      r.TotalTrades,
		WinRate:          r.WinRate,
		NetPnL:           r.NetPnL,
		ProfitFactor:     r.ProfitFactor,
		WinLossRatio:     r.WinLossRatio,
		MaxDrawdown:      r.MaxDrawdown,
		SharpeRatio:      r.SharpeRatio,
		AvgHoldingTimeMs: r.AvgHoldingTimeMs,
	}
}

// computeResult derives the aggregate statistics from the ledger and
// equity curve. Trades are already in chronological close order; the
// engine never reorders its own ledger.
func computeResult(cfg Config, trades []domain.ClosedTrade, equity []domain.EquityPoint, finalBalance, maxDrawdown float64) *Result {
	res := &Result{
		RunID:          cfg.ID(),
		Symbol:         cfg.Symbol,
		Trades:         trades,
		EquityCurve:    equity,
		InitialBalance: cfg.InitialBalance,
		FinalBalance:   finalBalance,
		TotalTrades:    len(trades),
		MaxDrawdown:    maxDrawdown,
	}
	if len(trades) == 0 {
		return res
	}

	wins := 0
	var holdSum int64
	returns := make([]float64, len(trades))
	for i, t := range trades {
		res.NetPnL += t.PnLNet
		if t.Win() {
			wins++
			res.GrossProfit += t.PnLNet
		} else {
			res.GrossLoss += -t.PnLNet
		}
		holdSum += t.ExitTime - t.EntryTime
		returns[i] = t.PnLNet / t.NotionalAtEntry() * 100
	}

	res.WinRate = float64(wins) / float64(len(trades))
	res.ProfitFactor = boundedStatRatio(res.GrossProfit, res.GrossLoss)
	res.AvgHoldingTimeMs = holdSum / int64(len(trades))

	losses := len(trades) - wins
	avgWin, avgLoss := 0.0, 0.0
	if wins > 0 {
		avgWin = res.GrossProfit / float64(wins)
	}
	if losses > 0 {
		avgLoss = res.GrossLoss / float64(losses)
	}
	res.WinLossRatio = boundedStatRatio(avgWin, avgLoss)

	res.SharpeRatio = sharpe(returns)
	return res
}

// sharpe computes the annualized Sharpe-like ratio over per-trade
// percentage returns, with a sample (n-1) standard deviation.
func sharpe(returns []float64) float64 {
	n := len(returns)
	if n < 2 {
		return 0
	}
	m := 0.0
	for _, r := range returns {
		m += r
	}
	m /= float64(n)

	sumSq := 0.0
	for _, r := range returns {
		d := r - m
		sumSq += d * d
	}
	sd := math.Sqrt(sumSq / float64(n-1))
	if sd == 0 {
		return 0
	}
	return m / sd * math.Sqrt(AnnualizationFactor)
}

func boundedStatRatio(num, den float64) float64 {
	if den == 0 {
		if num > 0 {
			return maxStatRatio
		}
		return 0
	}
	r := num / den
	if r > maxStatRatio {
		return maxStatRatio
	}
	return r
}
