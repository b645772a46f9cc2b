package indicator

import "tradelab/internal/domain"

// SwingKind distinguishes swing highs from swing lows.
type SwingKind string

// Swing point kinds.
const (
	SwingHigh SwingKind = "HIGH"
	SwingLow  SwingKind = "LOW"
)

// SwingPoint is one detected zigzag pivot.
type SwingPoint struct {
	Index     int
	Timestamp int64
	Price     float64
	Kind      SwingKind
}

// SwingDetector finds zigzag pivots: a candle is a swing high/low when no
// candle within +-depth bars has a higher high / lower low. Output feeds
// external level-detection logic.
type SwingDetector struct {
	depth int
}

// NewSwingDetector creates a detector. Depth must be positive.
func NewSwingDetector(depth int) (*SwingDetector, error) {
	if depth < 1 {
		return nil, ErrInvalidConfig
	}
	return &SwingDetector{depth: depth}, nil
}

// IsSwingHigh reports whether candles[index] is a swing high. The index
// must have `depth` candles on both sides.
func (d *SwingDetector) IsSwingHigh(candles []domain.Candle, index int) (bool, error) {
	if err := d.checkBounds(candles, index); err != nil {
		return false, err
	}
	pivot := candles[index].High
	for i := index - d.depth; i <= index+d.depth; i++ {
		if i != index && candles[i].High > pivot {
			return false, nil
		}
	}
	return true, nil
}

// IsSwingLow reports whether candles[index] is a swing low.
func (d *SwingDetector) IsSwingLow(candles []domain.Candle, index int) (bool, error) {
	if err := d.checkBounds(candles, index); err != nil {
		return false, err
	}
	pivot := candles[index].Low
	for i := index - d.depth; i <= index+d.depth; i++ {
		if i != index && candles[i].Low < pivot {
			return false, nil
		}
	}
	return true, nil
}

// FindSwingPoints scans the series and returns every pivot in index
// order. Edge candles without a full +-depth neighborhood are skipped,
// never guessed.
func (d *SwingDetector) FindSwingPoints(candles []domain.Candle) []SwingPoint {
	var points []SwingPoint
	for i := d.depth; i < len(candles)-d.depth; i++ {
		if high, _ := d.IsSwingHigh(candles, i); high {
			points = append(points, SwingPoint{
				Index:     i,
				Timestamp: candles[i].Timestamp,
				Price:     candles[i].High,
				Kind:      SwingHigh,
			})
		}
		if low, _ := d.IsSwingLow(candles, i); low {
			points = append(points, SwingPoint{
				Index:     i,
				Timestamp: candles[i].Timestamp,
				Price:     candles[i].Low,
				Kind:      SwingLow,
			})
		}
	}
	return points
}

func (d *SwingDetector) checkBounds(candles []domain.Candle, index int) error {
	if index-d.depth < 0 || index+d.depth >= len(candles) {
		return ErrInsufficientData
	}
	return nil
}
