package backtest

import (
	"errors"
	"fmt"
	"strings"

	"tradelab/internal/gate"
)

// Engine errors.
var (
	ErrInvalidConfig    = errors.New("invalid backtest configuration")
	ErrNoCandles        = errors.New("backtest: empty candle sequence")
	ErrUnorderedCandles = errors.New("backtest: candles not in ascending timestamp order")
)

// DefaultEquitySnapshotIntervalMs samples the equity curve hourly; the
// curve is sampled periodically, not per bar, to bound memory on long
// replays.
const DefaultEquitySnapshotIntervalMs = 3_600_000

// IndicatorPeriods configures the reference indicators shared across a
// run. EMA feeds the gate's distance rule when the gate section leaves
// its period unset; RSI and ATR seed the strategy defaults the same way
// (see config.StrategyConfig). A more specific setting always wins.
type IndicatorPeriods struct {
	EMA int
	RSI int
	ATR int
}

// TakeProfitTarget is one exit target expressed as a percent distance
// from entry; ClosePercent is the share of the original size to close.
type TakeProfitTarget struct {
	Percent      float64
	ClosePercent float64
}

// StrategyParams holds exit management settings.
type StrategyParams struct {
	StopLossPercent     float64
	TakeProfits         []TakeProfitTarget
	MoveStopToBreakeven bool // after the first partial close
	Kind                gate.StrategyKind
}

// Config is the full backtest configuration.
type Config struct {
	RunID                    string // empty = derived deterministically
	Symbol                   string
	InitialBalance           float64
	PositionSizeNotional     float64
	Leverage                 float64
	TakerFee                 float64 // applied on stop and forced exits
	MakerFee                 float64 // applied on take-profit fills
	IndicatorPeriods         IndicatorPeriods
	Strategy                 StrategyParams
	Gate                     gate.Config
	EquitySnapshotIntervalMs int64
}

// Validate rejects out-of-range settings at construction time.
func (c Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidConfig)
	}
	if c.InitialBalance <= 0 || c.PositionSizeNotional <= 0 {
		return fmt.Errorf("%w: balance and position size must be positive", ErrInvalidConfig)
	}
	if c.Leverage < 1 {
		return fmt.Errorf("%w: leverage must be at least 1", ErrInvalidConfig)
	}
	if c.TakerFee < 0 || c.MakerFee < 0 {
		return fmt.Errorf("%w: fees must not be negative", ErrInvalidConfig)
	}
	if c.Strategy.StopLossPercent <= 0 {
		return fmt.Errorf("%w: stop loss percent must be positive", ErrInvalidConfig)
	}
	if len(c.Strategy.TakeProfits) == 0 {
		return fmt.Errorf("%w: at least one take-profit target required", ErrInvalidConfig)
	}
	total := 0.0
	for _, tp := range c.Strategy.TakeProfits {
		if tp.Percent <= 0 || tp.ClosePercent <= 0 || tp.ClosePercent > 100 {
			return fmt.Errorf("%w: take-profit target out of range", ErrInvalidConfig)
		}
		total += tp.ClosePercent
	}
	if total > 100 {
		return fmt.Errorf("%w: take-profit close percents exceed 100", ErrInvalidConfig)
	}
	if c.IndicatorPeriods.EMA < 0 || c.IndicatorPeriods.RSI < 0 || c.IndicatorPeriods.ATR < 0 {
		return fmt.Errorf("%w: indicator periods must not be negative", ErrInvalidConfig)
	}
	if c.EquitySnapshotIntervalMs < 0 {
		return fmt.Errorf("%w: equity snapshot interval must not be negative", ErrInvalidConfig)
	}
	// Gate settings are validated by gate.New, after defaults apply.
	return nil
}

// ID returns the run identifier: the explicit RunID when set, otherwise
// a deterministic identifier derived from the sweep-relevant parameters
// so repeated runs of the same configuration collide intentionally.
func (c Config) ID() string {
	if c.RunID != "" {
		return c.RunID
	}
	parts := []string{
		c.Symbol,
		fmt.Sprintf("sl%.2f", c.Strategy.StopLossPercent),
	}
	for _, tp := range c.Strategy.TakeProfits {
		parts = append(parts, fmt.Sprintf("tp%.2fx%.0f", tp.Percent, tp.ClosePercent))
	}
	parts = append(parts, fmt.Sprintf("lev%.0f", c.Leverage))
	return strings.Join(parts, "_")
}

func (c Config) snapshotInterval() int64 {
	if c.EquitySnapshotIntervalMs == 0 {
		return DefaultEquitySnapshotIntervalMs
	}
	return c.EquitySnapshotIntervalMs
}
