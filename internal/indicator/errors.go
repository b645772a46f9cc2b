// Package indicator provides stateful technical indicators with a dual
// batch/incremental contract: Calculate resets and recomputes from a full
// window, Update advances existing state by one point. Both paths converge
// to the same numeric result for the same logical history.
//
// Instances are not safe for concurrent use; each traded symbol must own
// its own set.
package indicator

import "errors"

// Indicator errors.
var (
	// ErrInsufficientData is returned when a window is shorter than the
	// indicator's required minimum. Indicators never extrapolate.
	ErrInsufficientData = errors.New("insufficient data for indicator window")

	// ErrNotInitialized is returned by Update before a successful Calculate.
	ErrNotInitialized = errors.New("indicator not initialized: call Calculate first")

	// ErrInvalidConfig is returned at construction for out-of-range
	// periods or thresholds. Configuration is never validated lazily.
	ErrInvalidConfig = errors.New("invalid indicator configuration")

	// ErrInvalidInput is returned for inputs no market can produce
	// (non-positive prices).
	ErrInvalidInput = errors.New("invalid indicator input")
)

// DefaultNeutralFallback is the value RSI and Stochastic report on
// degenerate input (zero gain and loss, or a zero-range window). The
// source system used 70 rather than a conventional 50-neutral; it is kept
// as an overridable configuration value, not a hidden literal.
const DefaultNeutralFallback = 70.0
