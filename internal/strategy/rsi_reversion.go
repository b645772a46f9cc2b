// Package strategy provides reference Strategy implementations for the
// backtest engine. These exist to drive the engine and the indicator
// library end to end; they are deliberately simple and carry no tuning
// beyond their named parameters.
package strategy

import (
	"errors"
	"fmt"

	"tradelab/internal/backtest"
	"tradelab/internal/domain"
	"tradelab/internal/indicator"
)

// Strategy construction errors.
var ErrInvalidParams = errors.New("invalid strategy params")

// RSIReversion signals against RSI extremes: LONG when oversold, SHORT
// when overbought. Confidence scales with how far past the threshold
// the reading sits.
type RSIReversion struct {
	rsi        *indicator.RSI
	period     int
	oversold   float64
	overbought float64
}

// NewRSIReversion creates an RSI mean-reversion strategy. Thresholds
// must satisfy 0 < oversold < overbought < 100.
func NewRSIReversion(period int, oversold, overbought float64) (*RSIReversion, error) {
	if oversold <= 0 || overbought >= 100 || oversold >= overbought {
		return nil, fmt.Errorf("%w: thresholds %v/%v", ErrInvalidParams, oversold, overbought)
	}
	rsi, err := indicator.NewRSI(period)
	if err != nil {
		return nil, err
	}
	return &RSIReversion{
		rsi:        rsi,
		period:     period,
		oversold:   oversold,
		overbought: overbought,
	}, nil
}

// OnBar recomputes RSI over the visible history and signals on
// threshold breaches. Insufficient history is not an error; the bar is
// simply skipped.
func (s *RSIReversion) OnBar(history []domain.Candle) (*backtest.Candidate, error) {
	closes := make([]float64, len(history))
	for i, c := range history {
		closes[i] = c.Close
	}

	value, err := s.rsi.Calculate(closes)
	if err != nil {
		if errors.Is(err, indicator.ErrInsufficientData) {
			return nil, nil
		}
		return nil, err
	}

	switch {
	case value <= s.oversold:
		return &backtest.Candidate{
			Direction:  domain.DirectionLong,
			Confidence: thresholdExcess(s.oversold-value, s.oversold),
		}, nil
	case value >= s.overbought:
		return &backtest.Candidate{
			Direction:  domain.DirectionShort,
			Confidence: thresholdExcess(value-s.overbought, 100-s.overbought),
		}, nil
	}
	return nil, nil
}

// Name returns the strategy identifier, parameters included.
func (s *RSIReversion) Name() string {
	return fmt.Sprintf("rsi_reversion_%d_%g_%g", s.period, s.oversold, s.overbought)
}

// thresholdExcess maps how far past a threshold the reading sits onto
// [0.5, 1.0].
func thresholdExcess(excess, span float64) float64 {
	if span <= 0 {
		return 0.5
	}
	c := 0.5 + excess/span*0.5
	if c > 1 {
		return 1
	}
	return c
}

var _ backtest.Strategy = (*RSIReversion)(nil)
