package indicator

import (
	"errors"
	"math"
	"testing"
)

func TestBollinger_KnownWindow(t *testing.T) {
	// window {2, 4, 6}: mean 4, population sd = sqrt(8/3)
	b, err := NewBollinger(3, 2)
	if err != nil {
		t.Fatalf("NewBollinger: %v", err)
	}

	v, err := b.Calculate([]float64{2, 4, 6})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	sd := math.Sqrt(8.0 / 3.0)
	if relDiff(v.Middle, 4) > 1e-12 {
		t.Errorf("middle: expected 4, got %f", v.Middle)
	}
	if relDiff(v.Upper, 4+2*sd) > 1e-12 {
		t.Errorf("upper: expected %f, got %f", 4+2*sd, v.Upper)
	}
	if relDiff(v.Lower, 4-2*sd) > 1e-12 {
		t.Errorf("lower: expected %f, got %f", 4-2*sd, v.Lower)
	}
}

func TestBollinger_PercentBClamped(t *testing.T) {
	b, _ := NewBollinger(3, 0.1)

	// Tight bands with a strong final move push raw %B past 1
	v, err := b.Calculate([]float64{10, 10, 10, 10, 25})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if v.PercentB != 1 {
		t.Errorf("expected %%B clamped to 1, got %f", v.PercentB)
	}

	v, err = b.Calculate([]float64{10, 10, 10, 10, 2})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if v.PercentB != 0 {
		t.Errorf("expected %%B clamped to 0, got %f", v.PercentB)
	}
}

func TestBollinger_FlatMarket_MidBand(t *testing.T) {
	// Zero-width bands report mid-band rather than dividing by zero
	b, _ := NewBollinger(3, 2)
	v, err := b.Calculate([]float64{5, 5, 5})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if v.PercentB != 0.5 {
		t.Errorf("expected %%B 0.5 for flat market, got %f", v.PercentB)
	}
	if v.Width != 0 {
		t.Errorf("expected zero width, got %f", v.Width)
	}
}

func TestBollinger_IsSqueeze(t *testing.T) {
	b, _ := NewBollinger(3, 2)

	// Volatile head, flat tail: current width far below trailing average
	closes := []float64{10, 30, 10, 30, 10, 20, 20, 20, 20}
	if _, err := b.Calculate(closes); err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	squeezed, err := b.IsSqueeze(0.5, 4)
	if err != nil {
		t.Fatalf("IsSqueeze: %v", err)
	}
	if !squeezed {
		t.Error("expected squeeze after volatility collapse")
	}

	// Not enough width history for the lookback
	short, _ := NewBollinger(3, 2)
	if _, err := short.Calculate([]float64{1, 2, 3}); err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if _, err := short.IsSqueeze(0.5, 4); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestBollinger_UpdateMatchesCalculate(t *testing.T) {
	const period = 20
	series := syntheticCloses(60)

	incr, _ := NewBollinger(period, 2)
	if _, err := incr.Calculate(series[:period]); err != nil {
		t.Fatalf("seed Calculate: %v", err)
	}

	for i := period; i < len(series); i++ {
		got, err := incr.Update(series[i])
		if err != nil {
			t.Fatalf("Update at %d: %v", i, err)
		}

		full, _ := NewBollinger(period, 2)
		want, err := full.Calculate(series[:i+1])
		if err != nil {
			t.Fatalf("full Calculate at %d: %v", i, err)
		}

		if relDiff(got.Upper, want.Upper) > 1e-9 || relDiff(got.Lower, want.Lower) > 1e-9 {
			t.Errorf("bar %d: update %+v vs calculate %+v", i, got, want)
		}
	}
}

func TestAdaptiveMultiplier_Regimes(t *testing.T) {
	cfg := DefaultAdaptiveMultiplierConfig()

	cases := []struct {
		atrPercent float64
		want       float64
	}{
		{0.5, cfg.LowMultiplier},   // calm
		{2.0, cfg.BaseMultiplier},  // normal
		{5.0, cfg.HighMultiplier},  // volatile
		{1.0, cfg.BaseMultiplier},  // boundary belongs to the base regime
		{3.0, cfg.BaseMultiplier},  // boundary belongs to the base regime
	}
	for _, tc := range cases {
		if got := cfg.SelectMultiplier(tc.atrPercent); got != tc.want {
			t.Errorf("atr %.1f%%: expected %f, got %f", tc.atrPercent, tc.want, got)
		}
	}
}

func TestAdaptiveMultiplier_Validate(t *testing.T) {
	bad := DefaultAdaptiveMultiplierConfig()
	bad.LowVolatilityMax = 5
	bad.HighVolatilityMin = 1
	if err := bad.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for inverted bounds, got %v", err)
	}

	bad = DefaultAdaptiveMultiplierConfig()
	bad.BaseMultiplier = 0
	if err := bad.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for zero multiplier, got %v", err)
	}
}
