package domain

// RunSummary is the persisted aggregate of one backtest run, keyed by
// RunID. One run always produces exactly one summary.
type RunSummary struct {
	RunID            string
	Symbol           string
	Strategy         string
	StartTime        int64 // first candle timestamp (ms)
	EndTime          int64 // last candle timestamp (ms)
	InitialBalance   float64
	FinalBalance     float64
	TotalTrades      int
	WinRate          float64
	NetPnL           float64
	ProfitFactor     float64
	WinLossRatio     float64
	MaxDrawdown      float64
	SharpeRatio      float64
	AvgHoldingTimeMs int64
}
