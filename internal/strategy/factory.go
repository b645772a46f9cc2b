package strategy

import (
	"errors"

	"tradelab/internal/backtest"
	"tradelab/internal/indicator"
)

// Strategy type identifiers.
const (
	TypeRSIReversion      = "RSI_REVERSION"
	TypeBollingerBreakout = "BOLLINGER_BREAKOUT"
)

// Factory errors
var ErrUnknownStrategyType = errors.New("unknown strategy type")

// Config selects and parameterizes a reference strategy. Zero-value
// numeric fields fall back to the defaults below.
type Config struct {
	Type string

	RSIPeriod  int
	Oversold   float64
	Overbought float64

	BollingerPeriod int
	ATRPeriod       int
}

// Default parameters, applied per field when unset.
const (
	DefaultRSIPeriod       = 14
	DefaultOversold        = 30.0
	DefaultOverbought      = 70.0
	DefaultBollingerPeriod = 20
	DefaultATRPeriod       = 14
)

// FromConfig creates a Strategy from Config. Returns
// ErrUnknownStrategyType for an unrecognized type.
func FromConfig(cfg Config) (backtest.Strategy, error) {
	switch cfg.Type {
	case TypeRSIReversion:
		return NewRSIReversion(
			intOr(cfg.RSIPeriod, DefaultRSIPeriod),
			floatOr(cfg.Oversold, DefaultOversold),
			floatOr(cfg.Overbought, DefaultOverbought),
		)
	case TypeBollingerBreakout:
		return NewBollingerBreakout(
			intOr(cfg.BollingerPeriod, DefaultBollingerPeriod),
			intOr(cfg.ATRPeriod, DefaultATRPeriod),
			indicator.DefaultAdaptiveMultiplierConfig(),
		)
	default:
		return nil, ErrUnknownStrategyType
	}
}

func intOr(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func floatOr(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
