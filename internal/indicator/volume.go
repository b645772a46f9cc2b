package indicator

// Volume classification thresholds and the bounded confidence modifier
// they map to.
const (
	LowVolumeRatio  = 0.5
	HighVolumeRatio = 2.0

	volumeConfidenceBonus = 0.10
)

// VolumeClass buckets a volume ratio against its rolling average.
type VolumeClass string

// Volume classes.
const (
	VolumeLow    VolumeClass = "LOW"
	VolumeNormal VolumeClass = "NORMAL"
	VolumeHigh   VolumeClass = "HIGH"
)

// VolumeCalculatorConfig configures the rolling volume ratio.
type VolumeCalculatorConfig struct {
	RollingPeriod int
}

// Validate rejects non-positive rolling periods.
func (c VolumeCalculatorConfig) Validate() error {
	if c.RollingPeriod < 1 {
		return ErrInvalidConfig
	}
	return nil
}

// VolumeRatio computes currentVolume / average(last period volumes).
type VolumeRatio struct {
	period int

	window []float64 // last period+1 volumes, current last
	ratio  float64
	ready  bool
}

// NewVolumeRatio creates a rolling volume ratio calculator.
func NewVolumeRatio(cfg VolumeCalculatorConfig) (*VolumeRatio, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &VolumeRatio{period: cfg.RollingPeriod}, nil
}

// Calculate resets state and recomputes the ratio of the last volume
// against the average of the `period` volumes before it. Requires
// period+1 volumes.
func (v *VolumeRatio) Calculate(volumes []float64) (float64, error) {
	if len(volumes) < v.period+1 {
		return 0, ErrInsufficientData
	}
	v.window = tail(volumes, v.period+1)
	v.ratio = ratioAgainst(v.window[len(v.window)-1], v.window[:v.period])
	v.ready = true
	return v.ratio, nil
}

// Update advances the ratio by one volume; the previous current volume
// joins the rolling window.
func (v *VolumeRatio) Update(volume float64) (float64, error) {
	if !v.ready {
		return 0, ErrNotInitialized
	}
	v.window = pushBounded(v.window, volume, v.period+1)
	prior := v.window[:len(v.window)-1]
	v.ratio = ratioAgainst(volume, prior)
	return v.ratio, nil
}

// Classify buckets a ratio: low below 0.5x, high above 2x.
func Classify(ratio float64) VolumeClass {
	switch {
	case ratio < LowVolumeRatio:
		return VolumeLow
	case ratio > HighVolumeRatio:
		return VolumeHigh
	default:
		return VolumeNormal
	}
}

// ConfidenceModifier maps a ratio to a bounded adjustment: high volume
// adds 10% confidence, low volume removes 10%.
func ConfidenceModifier(ratio float64) float64 {
	switch Classify(ratio) {
	case VolumeHigh:
		return volumeConfidenceBonus
	case VolumeLow:
		return -volumeConfidenceBonus
	default:
		return 0
	}
}

// ratioAgainst divides current by the average of prior volumes. A dead
// market (zero average) reads as neutral 1.0 rather than dividing by
// zero.
func ratioAgainst(current float64, prior []float64) float64 {
	avg := mean(prior)
	if avg == 0 {
		return 1.0
	}
	return current / avg
}
