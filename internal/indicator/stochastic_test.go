package indicator

import (
	"errors"
	"testing"

	"tradelab/internal/domain"
)

func TestStochastic_ZeroRangeWindow_Neutral(t *testing.T) {
	// A flat window has highest == lowest; raw %K falls back to neutral
	s, err := NewStochastic(3, 1, 1)
	if err != nil {
		t.Fatalf("NewStochastic: %v", err)
	}

	flat := make([]domain.Candle, 5)
	for i := range flat {
		flat[i] = domain.Candle{Timestamp: int64(i), Open: 10, High: 10, Low: 10, Close: 10, Volume: 1}
	}

	v, err := s.Calculate(flat)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if v.K != DefaultNeutralFallback || v.D != DefaultNeutralFallback {
		t.Errorf("expected neutral %f/%f, got %f/%f", DefaultNeutralFallback, DefaultNeutralFallback, v.K, v.D)
	}
}

func TestStochastic_CloseAtExtremes(t *testing.T) {
	// Close at the window high → raw %K 100; at the low → 0.
	// smooth=1, dPeriod=1 make K/D equal the raw value.
	s, _ := NewStochastic(3, 1, 1)

	rising := []domain.Candle{
		{Timestamp: 1, Open: 10, High: 11, Low: 9, Close: 10, Volume: 1},
		{Timestamp: 2, Open: 10, High: 12, Low: 10, Close: 11, Volume: 1},
		{Timestamp: 3, Open: 11, High: 13, Low: 11, Close: 13, Volume: 1},
	}
	v, err := s.Calculate(rising)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	// window high 13, low 9, close 13 → (13-9)/(13-9) = 100
	if v.K != 100 {
		t.Errorf("expected %%K 100 at window high, got %f", v.K)
	}

	falling := []domain.Candle{
		{Timestamp: 1, Open: 13, High: 13, Low: 11, Close: 12, Volume: 1},
		{Timestamp: 2, Open: 12, High: 12, Low: 10, Close: 11, Volume: 1},
		{Timestamp: 3, Open: 11, High: 11, Low: 9, Close: 9, Volume: 1},
	}
	v, err = s.Calculate(falling)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if v.K != 0 {
		t.Errorf("expected %%K 0 at window low, got %f", v.K)
	}
}

func TestStochastic_MinCandles(t *testing.T) {
	s, _ := NewStochastic(14, 3, 3)
	if got := s.MinCandles(); got != 18 {
		t.Errorf("expected MinCandles 18, got %d", got)
	}
	if _, err := s.Calculate(make([]domain.Candle, 17)); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestStochastic_UpdateMatchesCalculate(t *testing.T) {
	s, _ := NewStochastic(14, 3, 3)
	candles := syntheticCandles(60)

	seed := s.MinCandles()
	if _, err := s.Calculate(candles[:seed]); err != nil {
		t.Fatalf("seed Calculate: %v", err)
	}

	for i := seed; i < len(candles); i++ {
		got, err := s.Update(candles[i])
		if err != nil {
			t.Fatalf("Update at %d: %v", i, err)
		}

		full, _ := NewStochastic(14, 3, 3)
		want, err := full.Calculate(candles[:i+1])
		if err != nil {
			t.Fatalf("full Calculate at %d: %v", i, err)
		}

		if relDiff(got.K, want.K) > 1e-9 || relDiff(got.D, want.D) > 1e-9 {
			t.Errorf("bar %d: update %+v vs calculate %+v", i, got, want)
		}
	}
}

func TestStochastic_UpdateBeforeCalculate(t *testing.T) {
	s, _ := NewStochastic(5, 3, 3)
	if _, err := s.Update(domain.Candle{}); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
}
