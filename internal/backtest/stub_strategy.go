package backtest

import "tradelab/internal/domain"

// StubStrategy emits pre-programmed candidates keyed by bar timestamp.
// It exists for engine tests: the bar at which an entry is attempted is
// known exactly, so exit behavior can be asserted bar by bar.
type StubStrategy struct {
	signals map[int64]Candidate
	bars    int
}

// NewStubStrategy creates a stub that signals on the given timestamps.
func NewStubStrategy(signals map[int64]Candidate) *StubStrategy {
	return &StubStrategy{signals: signals}
}

// OnBar returns the programmed candidate for the latest bar, if any.
func (s *StubStrategy) OnBar(history []domain.Candle) (*Candidate, error) {
	s.bars++
	last := history[len(history)-1]
	if c, ok := s.signals[last.Timestamp]; ok {
		return &c, nil
	}
	return nil, nil
}

// Name returns the strategy identifier.
func (s *StubStrategy) Name() string {
	return "stub"
}

// Bars returns how many bars the stub has seen, for test verification.
func (s *StubStrategy) Bars() int {
	return s.bars
}

// Ensure StubStrategy implements Strategy
var _ Strategy = (*StubStrategy)(nil)
