package momentum

import "tradelab/internal/domain"

// TickDeltaAnalyzer measures buy/sell imbalance over executed trades.
type TickDeltaAnalyzer struct {
	win flowWindow
}

// NewTickDeltaAnalyzer creates a tick-delta analyzer.
func NewTickDeltaAnalyzer(cfg Config) (*TickDeltaAnalyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &TickDeltaAnalyzer{win: newFlowWindow(cfg)}, nil
}

// AddTick ingests one executed trade. Ticks must arrive in
// non-decreasing timestamp order.
func (a *TickDeltaAnalyzer) AddTick(t domain.Tick) {
	a.win.add(flowEvent{
		timestamp: t.Timestamp,
		size:      t.Size,
		notional:  t.Notional(),
		side:      t.Side,
	})
}

// Ratio returns the buy/sell volume ratio over the detection window.
func (a *TickDeltaAnalyzer) Ratio() float64 {
	return a.win.ratio()
}

// DetectSpike returns a momentum spike, or nil when the window is too
// thin or the imbalance does not clear the threshold.
func (a *TickDeltaAnalyzer) DetectSpike() *Spike {
	return a.win.detectSpike()
}
