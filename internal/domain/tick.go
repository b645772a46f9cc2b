package domain

// Side is the aggressor side of an executed trade.
type Side string

// Side constants.
const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Tick represents a single executed trade. Ticks are append-only;
// callers must deliver them in non-decreasing timestamp order.
type Tick struct {
	Timestamp int64 // epoch ms
	Price     float64
	Size      float64
	Side      Side
}

// Notional returns price * size in quote-currency units.
func (t Tick) Notional() float64 {
	return t.Price * t.Size
}

// PriceLevel is one (price, size) entry of an order book side.
type PriceLevel struct {
	Price float64
	Size  float64
}

// OrderBookSnapshot is a point-in-time view of the book, best price first
// on both sides.
type OrderBookSnapshot struct {
	Symbol    string
	Bids      []PriceLevel
	Asks      []PriceLevel
	Timestamp int64 // epoch ms
	UpdateID  int64
}

// BestBid returns the top bid level and whether one exists.
func (s OrderBookSnapshot) BestBid() (PriceLevel, bool) {
	if len(s.Bids) == 0 {
		return PriceLevel{}, false
	}
	return s.Bids[0], true
}

// BestAsk returns the top ask level and whether one exists.
func (s OrderBookSnapshot) BestAsk() (PriceLevel, bool) {
	if len(s.Asks) == 0 {
		return PriceLevel{}, false
	}
	return s.Asks[0], true
}
