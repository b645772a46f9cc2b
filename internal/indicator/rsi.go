package indicator

// RSI computes the relative strength index with Wilder's smoothing.
// The first `period` deltas seed avgGain/avgLoss as simple averages;
// subsequent deltas apply avg = (avg*(period-1) + x) / period.
type RSI struct {
	period  int
	neutral float64

	avgGain   float64
	avgLoss   float64
	prevClose float64
	ready     bool
}

// NewRSI creates an RSI indicator. Period must be at least 2.
func NewRSI(period int) (*RSI, error) {
	if period < 2 {
		return nil, ErrInvalidConfig
	}
	return &RSI{period: period, neutral: DefaultNeutralFallback}, nil
}

// SetNeutralFallback overrides the value reported when both average gain
// and average loss are zero (a constant-price market).
func (r *RSI) SetNeutralFallback(v float64) {
	r.neutral = v
}

// Calculate resets state and recomputes RSI over the full close series.
// Requires at least period+1 closes. State is committed only after the
// window is validated, so a failing call leaves prior state untouched.
func (r *RSI) Calculate(closes []float64) (float64, error) {
	if len(closes) < r.period+1 {
		return 0, ErrInsufficientData
	}

	var gainSum, lossSum float64
	for i := 1; i <= r.period; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gainSum += d
		} else {
			lossSum -= d
		}
	}
	avgGain := gainSum / float64(r.period)
	avgLoss := lossSum / float64(r.period)

	for i := r.period + 1; i < len(closes); i++ {
		avgGain, avgLoss = wilderStep(avgGain, avgLoss, closes[i]-closes[i-1], r.period)
	}

	r.avgGain = avgGain
	r.avgLoss = avgLoss
	r.prevClose = closes[len(closes)-1]
	r.ready = true
	return r.value(), nil
}

// Update advances the RSI by one close in O(1). Numerically equivalent to
// Calculate over the cumulative series.
func (r *RSI) Update(close float64) (float64, error) {
	if !r.ready {
		return 0, ErrNotInitialized
	}
	r.avgGain, r.avgLoss = wilderStep(r.avgGain, r.avgLoss, close-r.prevClose, r.period)
	r.prevClose = close
	return r.value(), nil
}

// value maps the smoothed averages to [0, 100] with the documented
// degenerate-market fallbacks.
func (r *RSI) value() float64 {
	if r.avgLoss == 0 {
		if r.avgGain > 0 {
			return 100
		}
		return r.neutral
	}
	rs := r.avgGain / r.avgLoss
	rsi := 100 - 100/(1+rs)
	return clamp(rsi, 0, 100)
}

// wilderStep applies one Wilder smoothing step to both averages for a
// single price delta.
func wilderStep(avgGain, avgLoss, delta float64, period int) (float64, float64) {
	var gain, loss float64
	if delta > 0 {
		gain = delta
	} else {
		loss = -delta
	}
	p := float64(period)
	return (avgGain*(p-1) + gain) / p, (avgLoss*(p-1) + loss) / p
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
