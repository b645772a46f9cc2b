package momentum

import "tradelab/internal/domain"

// OrderFlowAnalyzer infers aggressive flow from consecutive order-book
// snapshots: price up with best-ask depth removed reads as an aggressive
// buy, price down with best-bid depth removed as an aggressive sell. The
// very first snapshot only seeds the baseline and never emits an event.
type OrderFlowAnalyzer struct {
	win    flowWindow
	prev   domain.OrderBookSnapshot
	seeded bool
}

// NewOrderFlowAnalyzer creates an order-flow analyzer.
func NewOrderFlowAnalyzer(cfg Config) (*OrderFlowAnalyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &OrderFlowAnalyzer{win: newFlowWindow(cfg)}, nil
}

// AddSnapshot ingests one book snapshot. Snapshots must arrive in
// non-decreasing timestamp order.
func (a *OrderFlowAnalyzer) AddSnapshot(s domain.OrderBookSnapshot) {
	if !a.seeded {
		a.prev, a.seeded = s, true
		return
	}
	prev := a.prev
	a.prev = s

	prevBid, okPB := prev.BestBid()
	prevAsk, okPA := prev.BestAsk()
	bid, okB := s.BestBid()
	ask, okA := s.BestAsk()
	if !okPB || !okPA || !okB || !okA {
		return
	}

	mid := (bid.Price + ask.Price) / 2
	prevMid := (prevBid.Price + prevAsk.Price) / 2

	switch {
	case mid > prevMid && ask.Size < prevAsk.Size:
		a.win.add(flowEvent{
			timestamp: s.Timestamp,
			size:      prevAsk.Size - ask.Size,
			notional:  prevAsk.Price * (prevAsk.Size - ask.Size),
			side:      domain.SideBuy,
		})
	case mid < prevMid && bid.Size < prevBid.Size:
		a.win.add(flowEvent{
			timestamp: s.Timestamp,
			size:      prevBid.Size - bid.Size,
			notional:  prevBid.Price * (prevBid.Size - bid.Size),
			side:      domain.SideSell,
		})
	}
}

// Ratio returns the ask-removed/bid-removed depth ratio over the window.
func (a *OrderFlowAnalyzer) Ratio() float64 {
	return a.win.ratio()
}

// DetectSpike returns a momentum spike, or nil when depth removal is too
// thin or balanced.
func (a *OrderFlowAnalyzer) DetectSpike() *Spike {
	return a.win.detectSpike()
}
