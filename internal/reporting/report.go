package reporting

import "time"

// Report summarizes a parameter sweep for offline review.
type Report struct {
	GeneratedAt time.Time
	Symbol      string
	Strategy    string
	RunCount    int

	// Replayed window (Unix ms), taken from the widest equity curve.
	WindowStart int64
	WindowEnd   int64

	// Rows sorted by net PnL descending.
	Rows []RunRow

	// BestRunID is empty when no run produced a trade.
	BestRunID string

	ExitReasons []ExitReasonRow
}

// RunRow is one sweep configuration's aggregate outcome.
type RunRow struct {
	RunID            string
	TotalTrades      int
	WinRate          float64
	NetPnL           float64
	ProfitFactor     float64
	WinLossRatio     float64
	MaxDrawdown      float64
	SharpeRatio      float64
	AvgHoldingTimeMs int64
	FinalBalance     float64
}

// ExitReasonRow counts ledger entries per exit reason across all runs.
type ExitReasonRow struct {
	Reason string
	Count  int
	NetPnL float64
}
