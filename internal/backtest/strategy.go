package backtest

import "tradelab/internal/domain"

// Candidate is a proposed entry: which way and how convinced. What to do
// with it (gate admission, sizing, exits) is the engine's job.
type Candidate struct {
	Direction  domain.Direction
	Confidence float64
}

// Strategy originates trade candidates from candle history. The engine
// calls OnBar once per bar with the full history up to and including it;
// an error means "skip this bar, keep scanning", never "abort".
type Strategy interface {
	OnBar(history []domain.Candle) (*Candidate, error)

	// Name returns the strategy identifier.
	Name() string
}
