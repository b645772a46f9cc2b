package indicator

import (
	"math"

	"tradelab/internal/domain"
)

// ATR computes the average true range, seeded from a simple average of
// the first `period` true ranges and smoothed with Wilder's method.
// Values are reported as a percentage of the latest close so they stay
// comparable across price scales.
type ATR struct {
	period int

	atr       float64 // absolute true-range average
	prevClose float64
	ready     bool
}

// NewATR creates an ATR indicator. Period must be positive.
func NewATR(period int) (*ATR, error) {
	if period < 1 {
		return nil, ErrInvalidConfig
	}
	return &ATR{period: period}, nil
}

// Calculate resets state and recomputes ATR over the full candle series.
// Requires period+1 candles (true range needs a previous close).
func (a *ATR) Calculate(candles []domain.Candle) (float64, error) {
	if len(candles) < a.period+1 {
		return 0, ErrInsufficientData
	}
	last := candles[len(candles)-1]
	if last.Close <= 0 {
		return 0, ErrInvalidInput
	}

	sum := 0.0
	for i := 1; i <= a.period; i++ {
		sum += trueRange(candles[i], candles[i-1].Close)
	}
	atr := sum / float64(a.period)

	p := float64(a.period)
	for i := a.period + 1; i < len(candles); i++ {
		atr = (atr*(p-1) + trueRange(candles[i], candles[i-1].Close)) / p
	}

	a.atr = atr
	a.prevClose = last.Close
	a.ready = true
	return atr / last.Close * 100, nil
}

// Update advances the ATR by one candle in O(1).
func (a *ATR) Update(c domain.Candle) (float64, error) {
	if !a.ready {
		return 0, ErrNotInitialized
	}
	if c.Close <= 0 {
		return 0, ErrInvalidInput
	}
	p := float64(a.period)
	a.atr = (a.atr*(p-1) + trueRange(c, a.prevClose)) / p
	a.prevClose = c.Close
	return a.atr / c.Close * 100, nil
}

// trueRange is max(high-low, |high-prevClose|, |low-prevClose|).
func trueRange(c domain.Candle, prevClose float64) float64 {
	tr := c.High - c.Low
	if hc := math.Abs(c.High - prevClose); hc > tr {
		tr = hc
	}
	if lc := math.Abs(c.Low - prevClose); lc > tr {
		tr = lc
	}
	return tr
}
