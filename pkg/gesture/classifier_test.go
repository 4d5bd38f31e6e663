package gesture

import (
	"errors"
	"math"
	"testing"

	"github.com/teaden/Audiophile/pkg/common"
	"github.com/teaden/Audiophile/pkg/logging"
)

const (
	testSampleRate = 2048.0
	testBufferSize = 512 // 256 bins, 4 Hz per bin
	testProbeHz    = 900.0
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.StabilizationTicks = 5
	cfg.BaselineTicks = 5
	cfg.ThresholdSamples = 5
	cfg.ThresholdCapacity = 8
	cfg.HalfSpanBins = 20
	cfg.BandBins = 4
	return cfg
}

// quietSpectrum is a low-magnitude floor with a small deterministic ripple so
// the band averages are non-degenerate
func quietSpectrum(bins int) []float64 {
	s := make([]float64, bins)
	for i := range s {
		s[i] = -80 + 0.5*math.Sin(float64(i)*0.7)
	}
	return s
}

// bumpBand returns a copy of the spectrum with extra energy in the given
// bin range [from, to)
func bumpBand(spectrum []float64, from, to int, db float64) []float64 {
	out := make([]float64, len(spectrum))
	copy(out, spectrum)
	for i := from; i < to; i++ {
		out[i] += db
	}
	return out
}

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := NewClassifier(testSampleRate, testBufferSize, ProbeConfig{FrequencyHz: testProbeHz, Volume: 1.0}, testConfig(), logging.NewNopLogger())
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}
	return c
}

// calibrate drives the classifier through stabilization, baseline
// accumulation and threshold learning on a quiet spectrum
func calibrate(t *testing.T, c *Classifier, spectrum []float64) {
	t.Helper()
	cfg := testConfig()
	maxTicks := 1 + cfg.StabilizationTicks + cfg.BaselineTicks + cfg.ThresholdSamples + 5
	for i := 0; i < maxTicks; i++ {
		res, err := c.Tick(spectrum)
		if err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		if res.State == StateNone {
			return
		}
	}
	t.Fatalf("classifier never reached detection, state %v", c.State())
}

func TestClassifierCalibrationSequence(t *testing.T) {
	c := newTestClassifier(t)
	spectrum := quietSpectrum(testBufferSize / 2)
	cfg := testConfig()

	var states []State
	total := 1 + cfg.StabilizationTicks + cfg.BaselineTicks + cfg.ThresholdSamples
	for i := 0; i < total; i++ {
		res, err := c.Tick(spectrum)
		if err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		states = append(states, res.State)
	}

	if states[0] != StateUnavailable {
		t.Errorf("first tick state = %v, want unavailable", states[0])
	}
	if last := states[len(states)-1]; last != StateNone {
		t.Errorf("final state = %v, want none after %d ticks", last, total)
	}

	sawCalibrating := false
	for i, s := range states {
		if s == StateToward || s == StateAway {
			t.Fatalf("tick %d reported gesture %v during calibration", i, s)
		}
		if s == StateCalibrating {
			sawCalibrating = true
		}
		if s == StateNone && !sawCalibrating {
			t.Fatalf("tick %d reached detection without passing through calibrating", i)
		}
	}
	if !sawCalibrating {
		t.Error("calibrating state never observed")
	}
}

func TestClassifierQuietStaysNone(t *testing.T) {
	c := newTestClassifier(t)
	spectrum := quietSpectrum(testBufferSize / 2)
	calibrate(t, c, spectrum)

	for i := 0; i < 50; i++ {
		res, err := c.Tick(spectrum)
		if err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		if res.State != StateNone {
			t.Fatalf("quiet tick %d reported %v, want none", i, res.State)
		}
	}
}

func TestClassifierDetectsToward(t *testing.T) {
	c := newTestClassifier(t)
	quiet := quietSpectrum(testBufferSize / 2)
	calibrate(t, c, quiet)

	// energy rising in the band just above the probe means motion toward
	cfg := testConfig()
	bumped := bumpBand(quiet, c.probeBin+1, c.probeBin+1+cfg.BandBins, 2)

	res, err := c.Tick(bumped)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if res.State != StateToward {
		t.Errorf("state = %v (ratio %.3f), want toward", res.State, res.Ratio)
	}
}

func TestClassifierDetectsAway(t *testing.T) {
	c := newTestClassifier(t)
	quiet := quietSpectrum(testBufferSize / 2)
	calibrate(t, c, quiet)

	cfg := testConfig()
	bumped := bumpBand(quiet, c.probeBin-cfg.BandBins, c.probeBin, 2)

	res, err := c.Tick(bumped)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if res.State != StateAway {
		t.Errorf("state = %v (ratio %.3f), want away", res.State, res.Ratio)
	}
}

func TestClassifierNoAdaptationDuringGesture(t *testing.T) {
	c := newTestClassifier(t)
	quiet := quietSpectrum(testBufferSize / 2)
	calibrate(t, c, quiet)

	cfg := testConfig()
	bumped := bumpBand(quiet, c.probeBin+1, c.probeBin+1+cfg.BandBins, 2)

	sizeBefore := c.thresholds.size()
	for i := 0; i < 10; i++ {
		res, err := c.Tick(bumped)
		if err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		if res.State != StateToward {
			t.Fatalf("tick %d state = %v, want toward to persist", i, res.State)
		}
	}
	if got := c.thresholds.size(); got != sizeBefore {
		t.Errorf("threshold window grew from %d to %d during gesture", sizeBefore, got)
	}
}

func TestClassifierProbeChangeForcesRecalibration(t *testing.T) {
	c := newTestClassifier(t)
	spectrum := quietSpectrum(testBufferSize / 2)
	calibrate(t, c, spectrum)

	c.SetProbe(ProbeConfig{FrequencyHz: 700, Volume: 1.0})

	res, err := c.Tick(spectrum)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if res.State != StateUnavailable {
		t.Fatalf("state after probe change = %v, want unavailable", res.State)
	}

	// must pass through calibrating again, never jumping to detection
	sawCalibrating := false
	cfg := testConfig()
	total := cfg.StabilizationTicks + cfg.BaselineTicks + cfg.ThresholdSamples + 5
	for i := 0; i < total; i++ {
		res, err := c.Tick(spectrum)
		if err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		switch res.State {
		case StateToward, StateAway:
			t.Fatalf("tick %d reported gesture %v before recalibration finished", i, res.State)
		case StateCalibrating:
			sawCalibrating = true
		case StateNone:
			if !sawCalibrating {
				t.Fatal("reached detection without passing through calibrating")
			}
			return
		}
	}
	t.Fatalf("never returned to detection, state %v", c.State())
}

func TestClassifierVolumeChangeDoesNotRecalibrate(t *testing.T) {
	c := newTestClassifier(t)
	spectrum := quietSpectrum(testBufferSize / 2)
	calibrate(t, c, spectrum)

	c.SetProbe(ProbeConfig{FrequencyHz: testProbeHz, Volume: 0.25})

	res, err := c.Tick(spectrum)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if res.State != StateNone {
		t.Errorf("state after volume-only change = %v, want none", res.State)
	}
}

func TestClassifierSpectrumLengthMismatch(t *testing.T) {
	c := newTestClassifier(t)

	_, err := c.Tick(make([]float64, 10))
	if err == nil {
		t.Fatal("expected precondition error")
	}
	var analysisErr *common.AnalysisError
	if !errors.As(err, &analysisErr) || analysisErr.Code != common.ErrCodePrecondition {
		t.Errorf("error = %v, want code %s", err, common.ErrCodePrecondition)
	}
}

func TestClassifierProbeNearSpectrumEdge(t *testing.T) {
	// probe close to Nyquist: the sub-spectrum window must clamp, not trap
	cfg := testConfig()
	c, err := NewClassifier(testSampleRate, testBufferSize, ProbeConfig{FrequencyHz: 1010, Volume: 1.0}, cfg, logging.NewNopLogger())
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}

	spectrum := quietSpectrum(testBufferSize / 2)
	total := 1 + cfg.StabilizationTicks + cfg.BaselineTicks + cfg.ThresholdSamples + 5
	for i := 0; i < total; i++ {
		if _, err := c.Tick(spectrum); err != nil {
			t.Fatalf("tick %d near edge: %v", i, err)
		}
	}
	if got := c.State(); got != StateNone {
		t.Errorf("state = %v, want none after calibration near edge", got)
	}
}

func TestNewClassifierRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		probe  ProbeConfig
	}{
		{"zero sigma", func(c *Config) { c.SigmaMultiplier = 0 }, ProbeConfig{FrequencyHz: testProbeHz}},
		{"capacity below target", func(c *Config) { c.ThresholdCapacity = 2 }, ProbeConfig{FrequencyHz: testProbeHz}},
		{"band wider than span", func(c *Config) { c.BandBins = c.HalfSpanBins + 1 }, ProbeConfig{FrequencyHz: testProbeHz}},
		{"probe above nyquist", func(c *Config) {}, ProbeConfig{FrequencyHz: testSampleRate}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			_, err := NewClassifier(testSampleRate, testBufferSize, tt.probe, cfg, logging.NewNopLogger())
			if err == nil {
				t.Fatal("expected configuration error")
			}
		})
	}
}
