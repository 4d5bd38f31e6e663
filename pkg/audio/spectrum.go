package audio

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/teaden/Audiophile/pkg/common"
)

// floorDB clamps log conversion of silent bins
const floorDB = -120.0

// SpectrumSource turns fixed-length time-domain sample windows into dB
// magnitude spectra. The Hann window is precomputed once; each Compute call
// is allocation-bound only by the FFT itself.
type SpectrumSource struct {
	sampleRate float64
	bufferSize int
	win        []float64
}

// NewSpectrumSource creates a source for a fixed sample rate and FFT size
func NewSpectrumSource(sampleRate float64, bufferSize int) (*SpectrumSource, error) {
	if sampleRate <= 0 {
		return nil, common.NewAnalysisError("spectrum_source", common.ErrCodeConfiguration,
			fmt.Sprintf("sample rate must be positive, got %v", sampleRate), nil)
	}
	if bufferSize < 8 || bufferSize%2 != 0 {
		return nil, common.NewAnalysisError("spectrum_source", common.ErrCodeConfiguration,
			fmt.Sprintf("buffer size must be an even number >= 8, got %d", bufferSize), nil)
	}
	return &SpectrumSource{
		sampleRate: sampleRate,
		bufferSize: bufferSize,
		win:        window.Hann(bufferSize),
	}, nil
}

// SampleRate returns the configured sample rate
func (s *SpectrumSource) SampleRate() float64 {
	return s.sampleRate
}

// Bins returns the number of magnitude bins Compute produces
func (s *SpectrumSource) Bins() int {
	return s.bufferSize / 2
}

// BinFrequency returns the center frequency of the given bin
func (s *SpectrumSource) BinFrequency(bin int) float64 {
	return float64(bin) * s.sampleRate / float64(s.bufferSize)
}

// Compute windows the samples, runs the FFT and returns per-bin magnitudes
// in dB, bin 0 being DC. Magnitudes are normalized to the window length and
// floored so silence stays finite.
func (s *SpectrumSource) Compute(samples []float64) ([]float64, error) {
	if len(samples) != s.bufferSize {
		return nil, common.NewAnalysisError("spectrum_source", common.ErrCodePrecondition,
			fmt.Sprintf("got %d samples, expected %d", len(samples), s.bufferSize), nil)
	}

	windowed := make([]float64, s.bufferSize)
	for i, v := range samples {
		windowed[i] = v * s.win[i]
	}

	coeffs := fft.FFTReal(windowed)

	spectrum := make([]float64, s.bufferSize/2)
	scale := 2.0 / float64(s.bufferSize)
	for i := range spectrum {
		mag := cmplx.Abs(coeffs[i]) * scale
		if mag <= 0 {
			spectrum[i] = floorDB
			continue
		}
		db := 20 * math.Log10(mag)
		if db < floorDB {
			db = floorDB
		}
		spectrum[i] = db
	}
	return spectrum, nil
}
