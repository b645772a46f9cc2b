package strategy

import (
	"errors"
	"fmt"

	"tradelab/internal/backtest"
	"tradelab/internal/domain"
	"tradelab/internal/indicator"
)

// BollingerBreakout signals in the direction of a band breach: LONG on
// a close above the upper band, SHORT on a close below the lower band.
// The band multiplier adapts to the current volatility regime, measured
// by ATR as a percent of price.
type BollingerBreakout struct {
	period   int
	atr      *indicator.ATR
	adaptive indicator.AdaptiveMultiplierConfig
	// One band calculator per regime multiplier, keyed by multiplier.
	bands map[float64]*indicator.Bollinger
}

// NewBollingerBreakout creates an adaptive-band breakout strategy.
func NewBollingerBreakout(bollingerPeriod, atrPeriod int, adaptive indicator.AdaptiveMultiplierConfig) (*BollingerBreakout, error) {
	if err := adaptive.Validate(); err != nil {
		return nil, err
	}
	atr, err := indicator.NewATR(atrPeriod)
	if err != nil {
		return nil, err
	}

	bands := make(map[float64]*indicator.Bollinger)
	for _, m := range []float64{adaptive.LowMultiplier, adaptive.BaseMultiplier, adaptive.HighMultiplier} {
		if _, ok := bands[m]; ok {
			continue
		}
		b, err := indicator.NewBollinger(bollingerPeriod, m)
		if err != nil {
			return nil, err
		}
		bands[m] = b
	}

	return &BollingerBreakout{
		period:   bollingerPeriod,
		atr:      atr,
		adaptive: adaptive,
		bands:    bands,
	}, nil
}

// OnBar computes the volatility regime, then checks the latest close
// against the regime's bands. Insufficient history skips the bar.
func (s *BollingerBreakout) OnBar(history []domain.Candle) (*backtest.Candidate, error) {
	atrPercent, err := s.atr.Calculate(history)
	if err != nil {
		if errors.Is(err, indicator.ErrInsufficientData) {
			return nil, nil
		}
		return nil, err
	}

	multiplier := s.adaptive.SelectMultiplier(atrPercent)
	band := s.bands[multiplier]

	closes := make([]float64, len(history))
	for i, c := range history {
		closes[i] = c.Close
	}
	v, err := band.Calculate(closes)
	if err != nil {
		if errors.Is(err, indicator.ErrInsufficientData) {
			return nil, nil
		}
		return nil, err
	}

	last := closes[len(closes)-1]
	switch {
	case last > v.Upper:
		return &backtest.Candidate{Direction: domain.DirectionLong, Confidence: v.PercentB}, nil
	case last < v.Lower:
		return &backtest.Candidate{Direction: domain.DirectionShort, Confidence: 1 - v.PercentB}, nil
	}
	return nil, nil
}

// Name returns the strategy identifier, parameters included.
func (s *BollingerBreakout) Name() string {
	return fmt.Sprintf("bollinger_breakout_%d", s.period)
}

var _ backtest.Strategy = (*BollingerBreakout)(nil)
