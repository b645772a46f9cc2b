package domain

// ClosedTrade is an immutable ledger entry appended on every full or
// partial close of a position.
type ClosedTrade struct {
	RunID      string // backtest run identifier
	Symbol     string
	EntryTime  int64
	EntryPrice float64
	ExitTime   int64
	ExitPrice  float64
	Direction  Direction
	Size       float64
	PnLGross   float64
	Fees       float64
	PnLNet     float64
	ExitReason string
}

// Exit reason codes.
const (
	ExitReasonStopLoss      = "STOP_LOSS"
	ExitReasonTakeProfit    = "TAKE_PROFIT"
	ExitReasonEndOfBacktest = "END_OF_BACKTEST"
)

// NotionalAtEntry returns the quote-currency value of the closed slice
// at its entry price.
func (t ClosedTrade) NotionalAtEntry() float64 {
	return t.EntryPrice * t.Size
}

// Win reports whether the trade closed with positive net PnL.
func (t ClosedTrade) Win() bool {
	return t.PnLNet > 0
}
