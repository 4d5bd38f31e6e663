package configs

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/teaden/Audiophile/pkg/gesture"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose      bool   `mapstructure:"verbose"`
	LogLevel     string `mapstructure:"log_level"`
	OutputFormat string `mapstructure:"output_format"`

	// Audio device and analysis cadence
	Audio AudioConfig `mapstructure:"audio"`

	// Peak detection parameters
	Peaks PeaksConfig `mapstructure:"peaks"`

	// Gesture classifier parameters
	Gesture GestureConfig `mapstructure:"gesture"`
}

// AudioConfig contains capture and analysis timing settings
type AudioConfig struct {
	SampleRate int    `mapstructure:"sample_rate"`
	BufferSize int    `mapstructure:"buffer_size"`
	Device     string `mapstructure:"device"`
	TickRateHz int    `mapstructure:"tick_rate_hz"`
}

// PeaksConfig contains spectral peak finder settings
type PeaksConfig struct {
	MinSeparationHz float64 `mapstructure:"min_separation_hz"`
}

// GestureConfig contains Doppler classifier and probe tone settings
type GestureConfig struct {
	ProbeFrequencyHz   float64 `mapstructure:"probe_frequency_hz"`
	ProbeVolume        float64 `mapstructure:"probe_volume"`
	StabilizationTicks int     `mapstructure:"stabilization_ticks"`
	BaselineTicks      int     `mapstructure:"baseline_ticks"`
	ThresholdSamples   int     `mapstructure:"threshold_samples"`
	ThresholdCapacity  int     `mapstructure:"threshold_capacity"`
	SigmaMultiplier    float64 `mapstructure:"sigma_multiplier"`
	HalfSpanBins       int     `mapstructure:"half_span_bins"`
	BandBins           int     `mapstructure:"band_bins"`
	DeviationFloorPct  float64 `mapstructure:"deviation_floor_pct"`
}

// ClassifierConfig converts the gesture section into the classifier's
// tuning struct
func (g GestureConfig) ClassifierConfig() gesture.Config {
	return gesture.Config{
		StabilizationTicks: g.StabilizationTicks,
		BaselineTicks:      g.BaselineTicks,
		ThresholdSamples:   g.ThresholdSamples,
		ThresholdCapacity:  g.ThresholdCapacity,
		SigmaMultiplier:    g.SigmaMultiplier,
		HalfSpanBins:       g.HalfSpanBins,
		BandBins:           g.BandBins,
		DeviationFloorPct:  g.DeviationFloorPct,
	}
}

// Probe converts the gesture section into the probe tone configuration
func (g GestureConfig) Probe() gesture.ProbeConfig {
	return gesture.ProbeConfig{
		FrequencyHz: g.ProbeFrequencyHz,
		Volume:      g.ProbeVolume,
	}
}

// LoadConfig loads configuration from viper
func LoadConfig() (*Config, error) {
	config := &Config{}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	return config, nil
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	if config.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio sample rate must be positive")
	}

	if config.Audio.BufferSize < 8 || config.Audio.BufferSize%2 != 0 {
		return fmt.Errorf("audio buffer size must be an even number >= 8")
	}

	if config.Audio.TickRateHz <= 0 {
		return fmt.Errorf("tick rate must be positive")
	}

	if config.Peaks.MinSeparationHz <= 0 {
		return fmt.Errorf("peak separation must be positive")
	}

	nyquist := float64(config.Audio.SampleRate) / 2
	if config.Gesture.ProbeFrequencyHz <= 0 || config.Gesture.ProbeFrequencyHz >= nyquist {
		return fmt.Errorf("probe frequency must be between 0 and %v Hz", nyquist)
	}

	if config.Gesture.ProbeVolume < 0 || config.Gesture.ProbeVolume > 1 {
		return fmt.Errorf("probe volume must be between 0 and 1")
	}

	switch config.OutputFormat {
	case "json", "yaml", "text":
	default:
		return fmt.Errorf("unsupported output format %q", config.OutputFormat)
	}

	return nil
}
