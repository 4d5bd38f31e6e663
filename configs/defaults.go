package configs

import (
	"github.com/spf13/viper"

	"github.com/teaden/Audiophile/pkg/gesture"
)

// SetDefaults sets default configuration values for all components
func SetDefaults(v *viper.Viper) {
	// Application defaults
	if !v.IsSet("verbose") {
		v.Set("verbose", false)
	}
	if !v.IsSet("log_level") {
		v.Set("log_level", "info")
	}
	if !v.IsSet("output_format") {
		v.Set("output_format", "text")
	}

	// Audio defaults. 44.1 kHz with a 4096-point FFT gives ~10.8 Hz bins,
	// fine enough for the gesture sub-spectrum around the probe.
	if !v.IsSet("audio.sample_rate") {
		v.Set("audio.sample_rate", 44100)
	}
	if !v.IsSet("audio.buffer_size") {
		v.Set("audio.buffer_size", 4096)
	}
	if !v.IsSet("audio.device") {
		v.Set("audio.device", "")
	}
	if !v.IsSet("audio.tick_rate_hz") {
		v.Set("audio.tick_rate_hz", 20)
	}

	// Peak finder defaults
	if !v.IsSet("peaks.min_separation_hz") {
		v.Set("peaks.min_separation_hz", 50.0)
	}

	// Gesture defaults; the probe sits above most adult hearing
	if !v.IsSet("gesture.probe_frequency_hz") {
		v.Set("gesture.probe_frequency_hz", 18000.0)
	}
	if !v.IsSet("gesture.probe_volume") {
		v.Set("gesture.probe_volume", 1.0)
	}
	if !v.IsSet("gesture.stabilization_ticks") {
		v.Set("gesture.stabilization_ticks", gesture.DefaultStabilizationTicks)
	}
	if !v.IsSet("gesture.baseline_ticks") {
		v.Set("gesture.baseline_ticks", gesture.DefaultBaselineTicks)
	}
	if !v.IsSet("gesture.threshold_samples") {
		v.Set("gesture.threshold_samples", gesture.DefaultThresholdSamples)
	}
	if !v.IsSet("gesture.threshold_capacity") {
		v.Set("gesture.threshold_capacity", gesture.DefaultThresholdCapacity)
	}
	if !v.IsSet("gesture.sigma_multiplier") {
		v.Set("gesture.sigma_multiplier", gesture.DefaultSigmaMultiplier)
	}
	if !v.IsSet("gesture.half_span_bins") {
		v.Set("gesture.half_span_bins", gesture.DefaultHalfSpanBins)
	}
	if !v.IsSet("gesture.band_bins") {
		v.Set("gesture.band_bins", gesture.DefaultBandBins)
	}
	if !v.IsSet("gesture.deviation_floor_pct") {
		v.Set("gesture.deviation_floor_pct", gesture.DefaultDeviationFloorPct)
	}
}

// GetDefaultConfig returns a Config struct with all default values set
func GetDefaultConfig() *Config {
	return &Config{
		Verbose:      false,
		LogLevel:     "info",
		OutputFormat: "text",
		Audio:        GetDefaultAudioConfig(),
		Peaks:        GetDefaultPeaksConfig(),
		Gesture:      GetDefaultGestureConfig(),
	}
}

// GetDefaultAudioConfig returns default capture settings
func GetDefaultAudioConfig() AudioConfig {
	return AudioConfig{
		SampleRate: 44100,
		BufferSize: 4096,
		Device:     "",
		TickRateHz: 20,
	}
}

// GetDefaultPeaksConfig returns default peak finder settings
func GetDefaultPeaksConfig() PeaksConfig {
	return PeaksConfig{
		MinSeparationHz: 50.0,
	}
}

// GetDefaultGestureConfig returns default classifier settings
func GetDefaultGestureConfig() GestureConfig {
	return GestureConfig{
		ProbeFrequencyHz:   18000.0,
		ProbeVolume:        1.0,
		StabilizationTicks: gesture.DefaultStabilizationTicks,
		BaselineTicks:      gesture.DefaultBaselineTicks,
		ThresholdSamples:   gesture.DefaultThresholdSamples,
		ThresholdCapacity:  gesture.DefaultThresholdCapacity,
		SigmaMultiplier:    gesture.DefaultSigmaMultiplier,
		HalfSpanBins:       gesture.DefaultHalfSpanBins,
		BandBins:           gesture.DefaultBandBins,
		DeviationFloorPct:  gesture.DefaultDeviationFloorPct,
	}
}
