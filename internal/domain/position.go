package domain

// Direction is the side of a trade candidate or open position.
type Direction string

// Direction constants.
const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// PositionState tracks the position lifecycle:
// NONE -> OPEN -> (PARTIALLY_CLOSED)* -> CLOSED.
type PositionState string

// Position lifecycle states.
const (
	PositionNone            PositionState = "NONE"
	PositionOpen            PositionState = "OPEN"
	PositionPartiallyClosed PositionState = "PARTIALLY_CLOSED"
	PositionClosed          PositionState = "CLOSED"
)

// TakeProfitLevel is one partial-exit target. ClosePercent is the share
// of the ORIGINAL position size (plain percent, 100 == full close).
type TakeProfitLevel struct {
	Price        float64
	ClosePercent float64
}

// Position is a mutable open position inside a backtest. Size and
// TakeProfits shrink as partial closes consume them; OriginalSize keeps
// the allocation base for close-percent math.
type Position struct {
	EntryTime    int64
	EntryPrice   float64
	Direction    Direction
	Size         float64
	OriginalSize float64
	StopLoss     float64
	TakeProfits  []TakeProfitLevel
	State        PositionState
}

// EquityPoint is one (timestamp, balance) snapshot of the equity curve.
type EquityPoint struct {
	Timestamp int64
	Balance   float64
}
