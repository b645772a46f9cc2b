package indicator

// EMA computes an exponential moving average seeded from the SMA of the
// first `period` closes, with multiplier 2/(period+1).
type EMA struct {
	period int
	k      float64

	value float64
	ready bool
}

// NewEMA creates an EMA indicator. Period must be positive.
func NewEMA(period int) (*EMA, error) {
	if period < 1 {
		return nil, ErrInvalidConfig
	}
	return &EMA{period: period, k: 2 / float64(period+1)}, nil
}

// Calculate resets state and recomputes the EMA over the full close
// series. Requires at least `period` closes.
func (e *EMA) Calculate(closes []float64) (float64, error) {
	if len(closes) < e.period {
		return 0, ErrInsufficientData
	}

	seed := 0.0
	for _, c := range closes[:e.period] {
		seed += c
	}
	v := seed / float64(e.period)

	for _, c := range closes[e.period:] {
		v += (c - v) * e.k
	}

	e.value = v
	e.ready = true
	return v, nil
}

// Update advances the EMA by one close in O(1).
func (e *EMA) Update(close float64) (float64, error) {
	if !e.ready {
		return 0, ErrNotInitialized
	}
	e.value += (close - e.value) * e.k
	return e.value, nil
}

// Value returns the current EMA without advancing it.
func (e *EMA) Value() (float64, error) {
	if !e.ready {
		return 0, ErrNotInitialized
	}
	return e.value, nil
}
