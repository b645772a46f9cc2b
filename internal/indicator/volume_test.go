package indicator

import (
	"errors"
	"testing"
)

func TestVolumeRatio_Calculate(t *testing.T) {
	v, err := NewVolumeRatio(VolumeCalculatorConfig{RollingPeriod: 4})
	if err != nil {
		t.Fatalf("NewVolumeRatio: %v", err)
	}

	// current 300 against average of {100, 100, 100, 100} → 3.0
	got, err := v.Calculate([]float64{100, 100, 100, 100, 300})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if got != 3.0 {
		t.Errorf("expected ratio 3.0, got %f", got)
	}
}

func TestVolumeRatio_DeadMarketNeutral(t *testing.T) {
	v, _ := NewVolumeRatio(VolumeCalculatorConfig{RollingPeriod: 3})
	got, err := v.Calculate([]float64{0, 0, 0, 50})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if got != 1.0 {
		t.Errorf("expected neutral 1.0 for zero average, got %f", got)
	}
}

func TestVolumeRatio_UpdateMatchesCalculate(t *testing.T) {
	const period = 5
	volumes := []float64{100, 120, 80, 150, 90, 300, 60, 110, 95, 400, 100, 100}

	incr, _ := NewVolumeRatio(VolumeCalculatorConfig{RollingPeriod: period})
	if _, err := incr.Calculate(volumes[:period+1]); err != nil {
		t.Fatalf("seed Calculate: %v", err)
	}

	for i := period + 1; i < len(volumes); i++ {
		got, err := incr.Update(volumes[i])
		if err != nil {
			t.Fatalf("Update at %d: %v", i, err)
		}

		full, _ := NewVolumeRatio(VolumeCalculatorConfig{RollingPeriod: period})
		want, err := full.Calculate(volumes[:i+1])
		if err != nil {
			t.Fatalf("full Calculate at %d: %v", i, err)
		}

		if relDiff(got, want) > 1e-9 {
			t.Errorf("step %d: update %v vs calculate %v", i, got, want)
		}
	}
}

func TestVolumeRatio_InsufficientData(t *testing.T) {
	v, _ := NewVolumeRatio(VolumeCalculatorConfig{RollingPeriod: 20})
	if _, err := v.Calculate(make([]float64, 20)); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
	if _, err := v.Update(100); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		ratio float64
		want  VolumeClass
	}{
		{0.1, VolumeLow},
		{0.5, VolumeNormal}, // boundary is inclusive on the normal side
		{1.0, VolumeNormal},
		{2.0, VolumeNormal},
		{2.5, VolumeHigh},
	}
	for _, tc := range cases {
		if got := Classify(tc.ratio); got != tc.want {
			t.Errorf("ratio %.2f: expected %s, got %s", tc.ratio, tc.want, got)
		}
	}
}

func TestConfidenceModifier_Bounded(t *testing.T) {
	if got := ConfidenceModifier(10.0); got != 0.10 {
		t.Errorf("expected +0.10 for high volume, got %f", got)
	}
	if got := ConfidenceModifier(0.01); got != -0.10 {
		t.Errorf("expected -0.10 for low volume, got %f", got)
	}
	if got := ConfidenceModifier(1.0); got != 0 {
		t.Errorf("expected 0 for normal volume, got %f", got)
	}
}
