package gesture

import (
	"fmt"
	"math"
	"sync/atomic"

	"gonum.org/v1/gonum/floats"

	"github.com/teaden/Audiophile/pkg/common"
	"github.com/teaden/Audiophile/pkg/logging"
)

// ratioFloor guards band-energy divisions against degenerate silence
const ratioFloor = 1e-12

// Result is the output of one classifier tick
type Result struct {
	State State `json:"state"`
	// ProbeLevelDB is the raw magnitude of the probe bin this tick
	ProbeLevelDB float64 `json:"probe_level_db"`
	// SubSpectrum is the bias-shifted probe-centered slice, for display
	SubSpectrum []float64 `json:"-"`
	// Ratio is the ratio-of-ratios statistic, zero until a baseline exists
	Ratio float64 `json:"ratio"`
}

// Classifier turns per-tick spectra into a three-state gesture signal by
// watching Doppler-style energy asymmetry around the probe tone. All state is
// owned by the instance and mutated only by Tick; SetProbe may be called from
// any goroutine and is observed atomically at the start of the next tick.
type Classifier struct {
	cfg        Config
	sampleRate float64
	bufferSize int
	bins       int
	logger     logging.Logger

	probe atomic.Pointer[ProbeConfig]

	state         State
	lastProbeFreq float64
	probeBin      int
	stabilizeLeft int

	baseline    rollingBaseline
	baselineSet bool
	baseLow     float64
	baseHigh    float64

	bias    float64
	biasSet bool

	thresholds *thresholdStats
}

// NewClassifier creates a classifier bound to a fixed sample rate and FFT
// size. The first tick always enters stabilization, so a fresh instance
// reports Unavailable before anything else.
func NewClassifier(sampleRate float64, bufferSize int, probe ProbeConfig, cfg Config, logger logging.Logger) (*Classifier, error) {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if sampleRate <= 0 {
		return nil, configErr(fmt.Sprintf("sample rate must be positive, got %v", sampleRate))
	}
	if bufferSize < 8 || bufferSize%2 != 0 {
		return nil, configErr(fmt.Sprintf("buffer size must be an even number >= 8, got %d", bufferSize))
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if probe.FrequencyHz <= 0 || probe.FrequencyHz >= sampleRate/2 {
		return nil, configErr(fmt.Sprintf("probe frequency %.1f Hz outside (0, %.1f)", probe.FrequencyHz, sampleRate/2))
	}

	c := &Classifier{
		cfg:        cfg,
		sampleRate: sampleRate,
		bufferSize: bufferSize,
		bins:       bufferSize / 2,
		state:      StateUnavailable,
		// NaN forces the probe-change path on the first tick
		lastProbeFreq: math.NaN(),
		thresholds:    newThresholdStats(cfg.ThresholdSamples, cfg.ThresholdCapacity, cfg.DeviationFloorPct),
		logger: logger.WithFields(logging.Fields{
			"component": "gesture_classifier",
		}),
	}
	c.probe.Store(&probe)
	return c, nil
}

// State returns the current gesture state
func (c *Classifier) State() State {
	return c.state
}

// Probe returns the probe configuration the next tick will observe
func (c *Classifier) Probe() ProbeConfig {
	return *c.probe.Load()
}

// SetProbe swaps the probe configuration. Safe to call concurrently with
// Tick; the change takes effect atomically at the start of the next tick. A
// frequency change invalidates the baseline and thresholds and forces
// re-stabilization.
func (c *Classifier) SetProbe(probe ProbeConfig) {
	c.probe.Store(&probe)
}

// Tick consumes one spectrum refresh and advances the state machine
func (c *Classifier) Tick(spectrum []float64) (*Result, error) {
	if len(spectrum) != c.bins {
		return nil, common.NewAnalysisError("gesture_classifier", common.ErrCodePrecondition,
			fmt.Sprintf("spectrum has %d bins, expected %d", len(spectrum), c.bins), nil)
	}

	probe := c.probe.Load()

	// probe-frequency change: drop everything and stabilize
	if probe.FrequencyHz != c.lastProbeFreq {
		c.beginStabilization(probe.FrequencyHz)
		return &Result{State: c.state}, nil
	}

	if c.stabilizeLeft > 0 {
		c.stabilizeLeft--
		if c.stabilizeLeft == 0 {
			c.baseline.reset()
			c.baselineSet = false
			c.thresholds.reset()
			c.biasSet = false
			c.state = StateCalibrating
			c.logger.Debug("stabilization complete, calibrating", logging.Fields{
				"probe_bin": c.probeBin,
			})
		}
		return &Result{State: c.state}, nil
	}

	res := &Result{}
	res.ProbeLevelDB = spectrum[c.probeBin]

	low, high := c.extractBands(spectrum, res)

	// no baseline yet: keep accumulating the quiet reference
	if !c.baselineSet {
		c.baseline.add(low, high)
		if c.baseline.full(c.cfg.BaselineTicks) {
			c.baseLow, c.baseHigh = c.baseline.collapse()
			c.baselineSet = true
			c.biasSet = false
			c.logger.Debug("baseline established", logging.Fields{
				"base_low":  c.baseLow,
				"base_high": c.baseHigh,
			})
		}
		c.state = StateCalibrating
		res.State = c.state
		return res, nil
	}

	r := c.ratioOfRatios(low, high)
	res.Ratio = r

	// threshold learning: still collecting ratio samples
	if !c.thresholds.ready() {
		c.thresholds.add(r)
		c.accumulateBaseline(low, high)
		if c.thresholds.ready() {
			c.state = StateNone
			lower, upper := c.thresholds.bounds(c.cfg.SigmaMultiplier)
			c.logger.Debug("thresholds learned, detection active", logging.Fields{
				"lower": lower,
				"upper": upper,
			})
		} else {
			c.state = StateCalibrating
		}
		res.State = c.state
		return res, nil
	}

	// detection
	lower, upper := c.thresholds.bounds(c.cfg.SigmaMultiplier)
	switch {
	case r > upper:
		c.state = StateToward
	case r < lower:
		c.state = StateAway
	default:
		c.state = StateNone
		// adapt only while quiescent so a real gesture cannot corrupt
		// the learned quiet statistics
		c.thresholds.add(r)
		c.accumulateBaseline(low, high)
	}

	res.State = c.state
	return res, nil
}

// beginStabilization records the new probe frequency, recomputes the nearest
// spectrum bin, and starts the cooldown countdown
func (c *Classifier) beginStabilization(freq float64) {
	c.lastProbeFreq = freq
	c.probeBin = clampInt(int(math.Round(freq*float64(c.bufferSize)/c.sampleRate)), 1, c.bins-2)
	c.stabilizeLeft = c.cfg.StabilizationTicks
	c.state = StateUnavailable
	c.logger.Debug("probe changed, stabilizing", logging.Fields{
		"probe_hz":  freq,
		"probe_bin": c.probeBin,
		"ticks":     c.stabilizeLeft,
	})
}

// extractBands slices the probe-centered sub-spectrum (clamped to valid
// bounds, DC excluded), applies the per-cycle positive bias, stores the
// shifted slice on the result, and returns the symmetric band averages.
func (c *Classifier) extractBands(spectrum []float64, res *Result) (low, high float64) {
	lo := clampInt(c.probeBin-c.cfg.HalfSpanBins, 1, c.bins-1)
	hi := clampInt(c.probeBin+c.cfg.HalfSpanBins, 1, c.bins-1)
	sub := spectrum[lo : hi+1]

	// the bias is fixed for the duration of one baseline-accumulation
	// cycle so its samples stay mutually comparable
	if !c.biasSet {
		if m := floats.Min(sub); m < 0 {
			c.bias = -m
		} else {
			c.bias = 0
		}
		c.biasSet = true
	}

	shifted := make([]float64, len(sub))
	for i, v := range sub {
		shifted[i] = v + c.bias
	}
	res.SubSpectrum = shifted

	center := c.probeBin - lo
	lowStart := clampInt(center-c.cfg.BandBins, 0, center)
	highEnd := clampInt(center+1+c.cfg.BandBins, center+1, len(shifted))

	low = mean(shifted[lowStart:center])
	high = mean(shifted[center+1 : highEnd])
	return low, high
}

// ratioOfRatios compares each band's current energy against its baseline and
// divides the two, cancelling noise common to both bands
func (c *Classifier) ratioOfRatios(low, high float64) float64 {
	return safeDiv(safeDiv(high, c.baseHigh), safeDiv(low, c.baseLow))
}

// accumulateBaseline keeps refreshing the quiet reference while no gesture is
// in progress; each full window replaces the baseline and starts a new bias
// cycle
func (c *Classifier) accumulateBaseline(low, high float64) {
	c.baseline.add(low, high)
	if c.baseline.full(c.cfg.BaselineTicks) {
		c.baseLow, c.baseHigh = c.baseline.collapse()
		c.biasSet = false
	}
}

func safeDiv(num, den float64) float64 {
	if den < ratioFloor {
		den = ratioFloor
	}
	if num < ratioFloor {
		num = ratioFloor
	}
	return num / den
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Sum(values) / float64(len(values))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
