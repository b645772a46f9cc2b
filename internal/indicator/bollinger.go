package indicator

import "math"

// maxWidthHistory bounds the band-width history kept for squeeze
// detection.
const maxWidthHistory = 100

// BollingerValue holds one Bollinger Bands observation.
type BollingerValue struct {
	Middle   float64
	Upper    float64
	Lower    float64
	PercentB float64 // clamped to [0, 1]
	Width    float64 // (upper-lower)/middle * 100
}

// Bollinger computes Bollinger Bands: middle = SMA(period), bands at
// middle +- multiplier * population standard deviation. It also tracks
// band widths for squeeze detection.
type Bollinger struct {
	period     int
	multiplier float64

	window []float64
	widths []float64
	ready  bool
}

// NewBollinger creates a Bollinger Bands indicator. Period must be at
// least 2 and the multiplier positive.
func NewBollinger(period int, multiplier float64) (*Bollinger, error) {
	if period < 2 || multiplier <= 0 {
		return nil, ErrInvalidConfig
	}
	return &Bollinger{period: period, multiplier: multiplier}, nil
}

// Calculate resets state and recomputes the bands over the full close
// series. The width history is rebuilt from every full window in the
// series so squeeze detection matches the incremental path.
func (b *Bollinger) Calculate(closes []float64) (BollingerValue, error) {
	if len(closes) < b.period {
		return BollingerValue{}, ErrInsufficientData
	}

	widths := make([]float64, 0, len(closes)-b.period+1)
	var last BollingerValue
	for i := b.period - 1; i < len(closes); i++ {
		last = b.compute(closes[i+1-b.period : i+1])
		widths = append(widths, last.Width)
	}

	b.window = tail(closes, b.period)
	b.widths = tail(widths, maxWidthHistory)
	b.ready = true
	return last, nil
}

// Update advances the bands by one close. Work per call is bounded by
// the configured period.
func (b *Bollinger) Update(close float64) (BollingerValue, error) {
	if !b.ready {
		return BollingerValue{}, ErrNotInitialized
	}
	b.window = pushBounded(b.window, close, b.period)
	v := b.compute(b.window)
	b.widths = pushBounded(b.widths, v.Width, maxWidthHistory)
	return v, nil
}

// IsSqueeze reports whether the current band width is below
// threshold * average width over the trailing lookback windows.
func (b *Bollinger) IsSqueeze(threshold float64, lookback int) (bool, error) {
	if threshold <= 0 || lookback < 1 {
		return false, ErrInvalidConfig
	}
	if !b.ready {
		return false, ErrNotInitialized
	}
	if len(b.widths) < lookback+1 {
		return false, ErrInsufficientData
	}
	current := b.widths[len(b.widths)-1]
	avg := mean(b.widths[len(b.widths)-1-lookback : len(b.widths)-1])
	return current < threshold*avg, nil
}

func (b *Bollinger) compute(window []float64) BollingerValue {
	m := mean(window)
	variance := 0.0
	for _, v := range window {
		d := v - m
		variance += d * d
	}
	sd := math.Sqrt(variance / float64(len(window)))

	upper := m + b.multiplier*sd
	lower := m - b.multiplier*sd
	price := window[len(window)-1]

	// Zero-width bands happen in flat markets; report mid-band.
	pctB := 0.5
	if upper != lower {
		pctB = clamp((price-lower)/(upper-lower), 0, 1)
	}
	width := 0.0
	if m != 0 {
		width = (upper - lower) / m * 100
	}

	return BollingerValue{Middle: m, Upper: upper, Lower: lower, PercentB: pctB, Width: width}
}

// AdaptiveMultiplierConfig selects a band multiplier from the current
// volatility regime, keyed by the ATR/price ratio in percent.
type AdaptiveMultiplierConfig struct {
	LowVolatilityMax  float64 // regime boundary, ATR percent
	HighVolatilityMin float64 // regime boundary, ATR percent
	LowMultiplier     float64
	BaseMultiplier    float64
	HighMultiplier    float64
}

// DefaultAdaptiveMultiplierConfig returns the standard three-regime setup.
func DefaultAdaptiveMultiplierConfig() AdaptiveMultiplierConfig {
	return AdaptiveMultiplierConfig{
		LowVolatilityMax:  1.0,
		HighVolatilityMin: 3.0,
		LowMultiplier:     1.5,
		BaseMultiplier:    2.0,
		HighMultiplier:    2.5,
	}
}

// Validate rejects inverted regime bounds and non-positive multipliers.
func (c AdaptiveMultiplierConfig) Validate() error {
	if c.LowVolatilityMax >= c.HighVolatilityMin {
		return ErrInvalidConfig
	}
	if c.LowMultiplier <= 0 || c.BaseMultiplier <= 0 || c.HighMultiplier <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// SelectMultiplier maps an ATR-percent volatility ratio to one of the
// three regime multipliers.
func (c AdaptiveMultiplierConfig) SelectMultiplier(atrPercent float64) float64 {
	switch {
	case atrPercent < c.LowVolatilityMax:
		return c.LowMultiplier
	case atrPercent > c.HighVolatilityMin:
		return c.HighMultiplier
	default:
		return c.BaseMultiplier
	}
}
