package gesture

import (
	"fmt"

	"github.com/teaden/Audiophile/pkg/common"
)

// Default tuning values for the classifier
const (
	DefaultStabilizationTicks = 30
	DefaultBaselineTicks      = 30
	DefaultThresholdSamples   = 30
	DefaultThresholdCapacity  = 30
	DefaultSigmaMultiplier    = 3.0
	DefaultHalfSpanBins       = 100
	DefaultBandBins           = 10
	DefaultDeviationFloorPct  = 0.05
)

// ProbeConfig describes the continuously played inaudible reference tone
type ProbeConfig struct {
	FrequencyHz float64 `json:"frequency_hz"`
	Volume      float64 `json:"volume"`
}

// Config contains classifier tuning parameters
type Config struct {
	// StabilizationTicks is the cooldown after a probe-frequency change
	// before calibration restarts
	StabilizationTicks int
	// BaselineTicks is the number of ticks accumulated into one baseline
	// average of the quiet band energies
	BaselineTicks int
	// ThresholdSamples is the number of ratio samples required before
	// detection thresholds are considered valid
	ThresholdSamples int
	// ThresholdCapacity bounds the sliding ratio-sample window (FIFO)
	ThresholdCapacity int
	// SigmaMultiplier scales the standard deviation into detection bounds
	SigmaMultiplier float64
	// HalfSpanBins is the half-width of the probe-centered sub-spectrum
	HalfSpanBins int
	// BandBins is the number of bins averaged on each side of the probe bin
	BandBins int
	// DeviationFloorPct floors the standard deviation at this fraction of
	// the absolute mean, preventing over-sensitive thresholds
	DeviationFloorPct float64
}

// DefaultConfig returns the standard tuning
func DefaultConfig() Config {
	return Config{
		StabilizationTicks: DefaultStabilizationTicks,
		BaselineTicks:      DefaultBaselineTicks,
		ThresholdSamples:   DefaultThresholdSamples,
		ThresholdCapacity:  DefaultThresholdCapacity,
		SigmaMultiplier:    DefaultSigmaMultiplier,
		HalfSpanBins:       DefaultHalfSpanBins,
		BandBins:           DefaultBandBins,
		DeviationFloorPct:  DefaultDeviationFloorPct,
	}
}

func (c Config) validate() error {
	if c.StabilizationTicks < 1 {
		return configErr(fmt.Sprintf("stabilization ticks must be >= 1, got %d", c.StabilizationTicks))
	}
	if c.BaselineTicks < 1 {
		return configErr(fmt.Sprintf("baseline ticks must be >= 1, got %d", c.BaselineTicks))
	}
	if c.ThresholdSamples < 2 {
		return configErr(fmt.Sprintf("threshold samples must be >= 2, got %d", c.ThresholdSamples))
	}
	if c.ThresholdCapacity < c.ThresholdSamples {
		return configErr(fmt.Sprintf("threshold capacity %d below sample target %d", c.ThresholdCapacity, c.ThresholdSamples))
	}
	if c.SigmaMultiplier <= 0 {
		return configErr(fmt.Sprintf("sigma multiplier must be positive, got %v", c.SigmaMultiplier))
	}
	if c.BandBins < 1 || c.BandBins > c.HalfSpanBins {
		return configErr(fmt.Sprintf("band bins %d must be in [1, %d]", c.BandBins, c.HalfSpanBins))
	}
	if c.DeviationFloorPct < 0 {
		return configErr(fmt.Sprintf("deviation floor must be non-negative, got %v", c.DeviationFloorPct))
	}
	return nil
}

func configErr(msg string) error {
	return common.NewAnalysisError("gesture_classifier", common.ErrCodeConfiguration, msg, nil)
}
