package indicator

import "tradelab/internal/domain"

// StochasticValue holds the smoothed %K and its %D signal line.
type StochasticValue struct {
	K float64
	D float64
}

// Stochastic computes the stochastic oscillator: raw %K from the rolling
// high/low window, smoothed by SMA(smooth); %D is SMA(dPeriod) of the
// smoothed %K. A zero-range window maps to the neutral fallback rather
// than dividing by zero.
type Stochastic struct {
	kPeriod int
	smooth  int
	dPeriod int
	neutral float64

	window  []domain.Candle // last kPeriod candles
	rawK    []float64       // last `smooth` raw %K values
	smoothK []float64       // last dPeriod smoothed %K values
	ready   bool
}

// NewStochastic creates a stochastic oscillator. All periods must be
// positive.
func NewStochastic(kPeriod, smooth, dPeriod int) (*Stochastic, error) {
	if kPeriod < 1 || smooth < 1 || dPeriod < 1 {
		return nil, ErrInvalidConfig
	}
	return &Stochastic{
		kPeriod: kPeriod,
		smooth:  smooth,
		dPeriod: dPeriod,
		neutral: DefaultNeutralFallback,
	}, nil
}

// SetNeutralFallback overrides the value reported for zero-range windows.
func (s *Stochastic) SetNeutralFallback(v float64) {
	s.neutral = v
}

// MinCandles returns the shortest window Calculate accepts.
func (s *Stochastic) MinCandles() int {
	return s.kPeriod + s.smooth + s.dPeriod - 2
}

// Calculate resets state and recomputes %K/%D over the full candle series.
func (s *Stochastic) Calculate(candles []domain.Candle) (StochasticValue, error) {
	if len(candles) < s.MinCandles() {
		return StochasticValue{}, ErrInsufficientData
	}

	raw := make([]float64, 0, len(candles)-s.kPeriod+1)
	for i := s.kPeriod - 1; i < len(candles); i++ {
		raw = append(raw, s.rawAt(candles[i+1-s.kPeriod:i+1]))
	}

	smoothed := make([]float64, 0, len(raw)-s.smooth+1)
	for i := s.smooth - 1; i < len(raw); i++ {
		smoothed = append(smoothed, mean(raw[i+1-s.smooth:i+1]))
	}

	s.window = tail(candles, s.kPeriod)
	s.rawK = tail(raw, s.smooth)
	s.smoothK = tail(smoothed, s.dPeriod)
	s.ready = true
	return s.value(), nil
}

// Update advances the oscillator by one candle. Work per call is bounded
// by the configured periods.
func (s *Stochastic) Update(c domain.Candle) (StochasticValue, error) {
	if !s.ready {
		return StochasticValue{}, ErrNotInitialized
	}
	s.window = pushBounded(s.window, c, s.kPeriod)
	s.rawK = pushBounded(s.rawK, s.rawAt(s.window), s.smooth)
	s.smoothK = pushBounded(s.smoothK, mean(s.rawK), s.dPeriod)
	return s.value(), nil
}

func (s *Stochastic) value() StochasticValue {
	return StochasticValue{
		K: s.smoothK[len(s.smoothK)-1],
		D: mean(s.smoothK),
	}
}

// rawAt computes raw %K over one kPeriod window.
func (s *Stochastic) rawAt(window []domain.Candle) float64 {
	highest := window[0].High
	lowest := window[0].Low
	for _, c := range window[1:] {
		if c.High > highest {
			highest = c.High
		}
		if c.Low < lowest {
			lowest = c.Low
		}
	}
	if highest == lowest {
		return s.neutral
	}
	return (window[len(window)-1].Close - lowest) / (highest - lowest) * 100
}

func mean(vs []float64) float64 {
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func tail[T any](vs []T, n int) []T {
	out := make([]T, 0, n)
	if len(vs) > n {
		vs = vs[len(vs)-n:]
	}
	return append(out, vs...)
}

func pushBounded[T any](vs []T, v T, n int) []T {
	vs = append(vs, v)
	if len(vs) > n {
		vs = vs[1:]
	}
	return vs
}
