package analyzer

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/teaden/Audiophile/pkg/audio"
	"github.com/teaden/Audiophile/pkg/common"
	"github.com/teaden/Audiophile/pkg/gesture"
	"github.com/teaden/Audiophile/pkg/logging"
	"github.com/teaden/Audiophile/pkg/spectral"
	"github.com/teaden/Audiophile/pkg/vowel"
)

// Options selects which analyses run per tick
type Options struct {
	SampleRate float64
	BufferSize int

	// EnablePeaks runs the peak finder and the vowel heuristic
	EnablePeaks     bool
	MinSeparationHz float64

	// EnableGesture runs the Doppler classifier against Probe
	EnableGesture bool
	Probe         gesture.ProbeConfig
	Gesture       gesture.Config
}

// Snapshot is the published result of one analysis tick. Consumers read the
// latest snapshot without coordinating with the tick loop.
type Snapshot struct {
	Timestamp time.Time                      `json:"timestamp"`
	TopPeaks  [2]spectral.FrequencyMagnitude `json:"top_peaks,omitempty"`
	Vowel     vowel.Label                    `json:"-"`
	Gesture   *gesture.Result                `json:"gesture,omitempty"`
}

// Analyzer owns the capture ring and the analysis pipeline. Feed is called
// from the audio device callback; Tick runs on the caller's schedule and
// publishes a Snapshot (latest wins).
type Analyzer struct {
	opts       Options
	ring       *audio.Ring
	source     *audio.SpectrumSource
	peaks      *spectral.PeakFinder
	classifier *gesture.Classifier
	logger     logging.Logger

	scratch  []float64
	snapshot atomic.Pointer[Snapshot]
}

// New builds the pipeline for the requested analyses
func New(opts Options, logger logging.Logger) (*Analyzer, error) {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if !opts.EnablePeaks && !opts.EnableGesture {
		return nil, common.NewAnalysisError("analyzer", common.ErrCodeConfiguration,
			"no analysis enabled", nil)
	}

	source, err := audio.NewSpectrumSource(opts.SampleRate, opts.BufferSize)
	if err != nil {
		return nil, err
	}
	ring, err := audio.NewRing(opts.BufferSize)
	if err != nil {
		return nil, err
	}

	a := &Analyzer{
		opts:    opts,
		ring:    ring,
		source:  source,
		scratch: make([]float64, opts.BufferSize),
		logger:  logger.WithFields(logging.Fields{"component": "analyzer"}),
	}

	if opts.EnablePeaks {
		a.peaks, err = spectral.NewPeakFinder(opts.SampleRate, opts.BufferSize, logger)
		if err != nil {
			return nil, err
		}
	}
	if opts.EnableGesture {
		a.classifier, err = gesture.NewClassifier(opts.SampleRate, opts.BufferSize, opts.Probe, opts.Gesture, logger)
		if err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Feed pushes a block of captured samples into the ring. Safe to call from
// the device callback; never blocks on analysis.
func (a *Analyzer) Feed(block []float32) {
	a.ring.Write(block)
}

// SetProbe forwards a probe change to the classifier, taking effect on the
// next tick
func (a *Analyzer) SetProbe(probe gesture.ProbeConfig) {
	if a.classifier != nil {
		a.classifier.SetProbe(probe)
	}
}

// Snapshot returns the most recently published result, or nil before the
// first successful tick
func (a *Analyzer) Snapshot() *Snapshot {
	return a.snapshot.Load()
}

// Tick drains the freshest sample window, runs the enabled analyses and
// publishes the snapshot. Returns a precondition error until the ring has
// accumulated a full window.
func (a *Analyzer) Tick() (*Snapshot, error) {
	if !a.ring.Latest(a.scratch, a.opts.BufferSize) {
		return nil, common.NewAnalysisError("analyzer", common.ErrCodePrecondition,
			fmt.Sprintf("only %d of %d samples buffered", a.ring.Len(), a.opts.BufferSize), nil)
	}

	spectrum, err := a.source.Compute(a.scratch)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Timestamp: time.Now()}

	if a.peaks != nil {
		top, err := a.peaks.FindTopPeaks(spectrum, a.opts.MinSeparationHz)
		if err != nil {
			return nil, err
		}
		snap.TopPeaks = top
		snap.Vowel = vowel.Classify(top)
	}

	if a.classifier != nil {
		res, err := a.classifier.Tick(spectrum)
		if err != nil {
			return nil, err
		}
		snap.Gesture = res
	}

	a.snapshot.Store(snap)
	return snap, nil
}
