// Package momentum detects short-horizon order-flow imbalance from raw
// trade ticks and order-book deltas. Analyzers ingest one event at a
// time into a bounded, time-pruned history; all windowed math assumes
// monotonically non-decreasing event timestamps.
package momentum

import (
	"errors"

	"tradelab/internal/domain"
)

// ErrInvalidConfig is returned at construction for out-of-range
// detector settings.
var ErrInvalidConfig = errors.New("invalid momentum detector configuration")

// RatioCap bounds one-sided buy/sell ratios so downstream confidence
// math stays finite. Large enough to clear any sane MinDeltaRatio.
const RatioCap = 100.0

// Confidence ramp: a spike starts at baseConfidence when the ratio sits
// exactly on the threshold and grows linearly with the relative excess.
const (
	baseConfidence  = 0.5
	confidenceSlope = 0.5
)

// DefaultCleanupIntervalMs is how often (at most) the event history is
// pruned. Pruning is decoupled from the per-event hot path.
const DefaultCleanupIntervalMs = 5_000

// Config configures a momentum detector.
type Config struct {
	MinDeltaRatio     float64 // spike threshold, must exceed 1
	DetectionWindowMs int64
	MinEventCount     int
	MinVolumeNotional float64 // minimum sum(price*size) in the window
	MaxConfidence     float64 // cap in (0, 1]
	CleanupIntervalMs int64   // 0 means DefaultCleanupIntervalMs
}

// Validate rejects out-of-range settings at construction time.
func (c Config) Validate() error {
	if c.MinDeltaRatio <= 1 || c.MinDeltaRatio > RatioCap {
		return ErrInvalidConfig
	}
	if c.DetectionWindowMs <= 0 {
		return ErrInvalidConfig
	}
	if c.MinEventCount < 1 || c.MinVolumeNotional < 0 {
		return ErrInvalidConfig
	}
	if c.MaxConfidence <= 0 || c.MaxConfidence > 1 {
		return ErrInvalidConfig
	}
	if c.CleanupIntervalMs < 0 {
		return ErrInvalidConfig
	}
	return nil
}

func (c Config) cleanupInterval() int64 {
	if c.CleanupIntervalMs == 0 {
		return DefaultCleanupIntervalMs
	}
	return c.CleanupIntervalMs
}

// Spike is a detected momentum burst.
type Spike struct {
	Direction  domain.Direction
	Ratio      float64
	Confidence float64
	Timestamp  int64 // timestamp of the latest event in the window
	EventCount int
	Notional   float64
}
