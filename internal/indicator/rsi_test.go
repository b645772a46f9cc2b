package indicator

import (
	"errors"
	"math"
	"testing"
)

func TestRSI_AllGains(t *testing.T) {
	// Monotonically rising closes → avgLoss 0, avgGain > 0 → exactly 100
	r, err := NewRSI(14)
	if err != nil {
		t.Fatalf("NewRSI: %v", err)
	}

	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	v, err := r.Calculate(closes)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if v != 100 {
		t.Errorf("expected RSI 100 for all gains, got %f", v)
	}
}

func TestRSI_AllLosses(t *testing.T) {
	// Monotonically falling closes → avgGain 0 → RSI 0
	r, _ := NewRSI(14)

	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 - float64(i)
	}

	v, err := r.Calculate(closes)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if v != 0 {
		t.Errorf("expected RSI 0 for all losses, got %f", v)
	}
}

func TestRSI_ConstantPrice_NeutralFallback(t *testing.T) {
	// Flat series → both averages zero → neutral fallback, default 70
	r, _ := NewRSI(14)

	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 50
	}

	v, err := r.Calculate(closes)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if v != DefaultNeutralFallback {
		t.Errorf("expected neutral fallback %f, got %f", DefaultNeutralFallback, v)
	}

	r.SetNeutralFallback(50)
	v, err = r.Calculate(closes)
	if err != nil {
		t.Fatalf("Calculate after override: %v", err)
	}
	if v != 50 {
		t.Errorf("expected overridden neutral 50, got %f", v)
	}
}

func TestRSI_InsufficientData(t *testing.T) {
	r, _ := NewRSI(14)

	// period+1 closes required
	closes := make([]float64, 14)
	if _, err := r.Calculate(closes); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}

	// A failed Calculate must leave the indicator uninitialized
	if _, err := r.Update(50); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized after failed Calculate, got %v", err)
	}
}

func TestRSI_UpdateBeforeCalculate(t *testing.T) {
	r, _ := NewRSI(5)
	if _, err := r.Update(10); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
}

func TestRSI_UpdateMatchesCalculate(t *testing.T) {
	// Updating bar by bar must match recomputing over the cumulative
	// series within 1e-9 relative tolerance.
	const period = 14
	series := syntheticCloses(3 * period)

	incr, _ := NewRSI(period)
	if _, err := incr.Calculate(series[:period+1]); err != nil {
		t.Fatalf("seed Calculate: %v", err)
	}

	for i := period + 1; i < len(series); i++ {
		got, err := incr.Update(series[i])
		if err != nil {
			t.Fatalf("Update at %d: %v", i, err)
		}

		full, _ := NewRSI(period)
		want, err := full.Calculate(series[:i+1])
		if err != nil {
			t.Fatalf("full Calculate at %d: %v", i, err)
		}

		if relDiff(got, want) > 1e-9 {
			t.Errorf("bar %d: update %v vs calculate %v", i, got, want)
		}
	}
}

func TestRSI_InvalidPeriod(t *testing.T) {
	if _, err := NewRSI(1); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for period 1, got %v", err)
	}
}

// syntheticCloses produces a deterministic oscillating price path with
// both gains and losses at every scale.
func syntheticCloses(n int) []float64 {
	closes := make([]float64, n)
	price := 100.0
	for i := range closes {
		price += 2.5*math.Sin(float64(i)*0.7) + 0.3
		closes[i] = price
	}
	return closes
}

func relDiff(a, b float64) float64 {
	if a == b {
		return 0
	}
	den := math.Max(math.Abs(a), math.Abs(b))
	if den == 0 {
		return 0
	}
	return math.Abs(a-b) / den
}
