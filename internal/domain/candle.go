package domain

import "errors"

// Candle validation errors.
var (
	ErrInvalidCandle  = errors.New("invalid candle: OHLC bounds violated")
	ErrNegativeVolume = errors.New("invalid candle: negative volume")
)

// Candle represents one OHLCV observation over a fixed time interval.
// Timestamp is the bar's close time in epoch milliseconds. Candles are
// immutable once emitted; a time-ordered sequence is the unit of replay.
type Candle struct {
	Timestamp int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Validate checks OHLC bounds: high >= max(open, close),
// low <= min(open, close), volume >= 0.
func (c Candle) Validate() error {
	if c.High < c.Open || c.High < c.Close {
		return ErrInvalidCandle
	}
	if c.Low > c.Open || c.Low > c.Close {
		return ErrInvalidCandle
	}
	if c.Volume < 0 {
		return ErrNegativeVolume
	}
	return nil
}

// Range returns the full high-low price range of the bar.
func (c Candle) Range() float64 {
	return c.High - c.Low
}

// Body returns the absolute open-close distance.
func (c Candle) Body() float64 {
	if c.Close >= c.Open {
		return c.Close - c.Open
	}
	return c.Open - c.Close
}

// UpperWick returns the distance from the body top to the high.
func (c Candle) UpperWick() float64 {
	if c.Close >= c.Open {
		return c.High - c.Close
	}
	return c.High - c.Open
}

// LowerWick returns the distance from the body bottom to the low.
func (c Candle) LowerWick() float64 {
	if c.Close >= c.Open {
		return c.Open - c.Low
	}
	return c.Close - c.Low
}
