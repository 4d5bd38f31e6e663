package spectral

import (
	"errors"
	"math"
	"testing"

	"github.com/teaden/Audiophile/pkg/common"
	"github.com/teaden/Audiophile/pkg/logging"
)

const (
	testSampleRate = 2048.0
	testBufferSize = 2048 // 1024 bins, 1 Hz per bin
	testFloorDB    = -100.0
)

type gaussPeak struct {
	bin   int
	amp   float64 // dB above floor
	sigma float64 // bins
}

// gaussianSpectrum builds a flat dB floor with Gaussian-shaped peaks on top
func gaussianSpectrum(bins int, peaks ...gaussPeak) []float64 {
	spectrum := make([]float64, bins)
	for i := range spectrum {
		spectrum[i] = testFloorDB
		for _, p := range peaks {
			d := float64(i - p.bin)
			spectrum[i] += p.amp * math.Exp(-d*d/(2*p.sigma*p.sigma))
		}
	}
	return spectrum
}

func newTestFinder(t *testing.T) *PeakFinder {
	t.Helper()
	pf, err := NewPeakFinder(testSampleRate, testBufferSize, logging.NewNopLogger())
	if err != nil {
		t.Fatalf("NewPeakFinder: %v", err)
	}
	return pf
}

func TestFindTopPeaksSinglePeak(t *testing.T) {
	pf := newTestFinder(t)
	spectrum := gaussianSpectrum(testBufferSize/2, gaussPeak{bin: 300, amp: 40, sigma: 2})

	peaks, err := pf.FindTopPeaks(spectrum, 50)
	if err != nil {
		t.Fatalf("FindTopPeaks: %v", err)
	}

	if !peaks[0].Valid() {
		t.Fatal("expected a peak in slot 0")
	}
	if got, want := peaks[0].Frequency, 300.0; math.Abs(got-want) > pf.Resolution() {
		t.Errorf("slot 0 frequency = %.3f Hz, want within %.3f Hz of %.1f", got, pf.Resolution(), want)
	}
	if peaks[1].Valid() {
		t.Errorf("slot 1 = %+v, want sentinel", peaks[1])
	}
}

func TestFindTopPeaksTwoSeparatedPeaks(t *testing.T) {
	pf := newTestFinder(t)
	// separated by exactly the minimum separation (50 bins == 50 Hz)
	spectrum := gaussianSpectrum(testBufferSize/2,
		gaussPeak{bin: 300, amp: 40, sigma: 2},
		gaussPeak{bin: 350, amp: 30, sigma: 2},
	)

	peaks, err := pf.FindTopPeaks(spectrum, 50)
	if err != nil {
		t.Fatalf("FindTopPeaks: %v", err)
	}

	if !peaks[0].Valid() || !peaks[1].Valid() {
		t.Fatalf("expected two peaks, got %+v", peaks)
	}
	if math.Abs(peaks[0].Frequency-300) > pf.Resolution() {
		t.Errorf("slot 0 frequency = %.3f, want ~300", peaks[0].Frequency)
	}
	if math.Abs(peaks[1].Frequency-350) > pf.Resolution() {
		t.Errorf("slot 1 frequency = %.3f, want ~350", peaks[1].Frequency)
	}
	if peaks[0].Magnitude <= peaks[1].Magnitude {
		t.Errorf("peaks not ordered by magnitude: %+v", peaks)
	}
}

func TestFindTopPeaksSuppressesCloserThanSeparation(t *testing.T) {
	pf := newTestFinder(t)

	tests := []struct {
		name     string
		peaks    []gaussPeak
		wantFreq float64
	}{
		{
			name: "larger peak below",
			peaks: []gaussPeak{
				{bin: 300, amp: 40, sigma: 2},
				{bin: 320, amp: 30, sigma: 2},
			},
			wantFreq: 300,
		},
		{
			name: "larger peak above",
			peaks: []gaussPeak{
				{bin: 300, amp: 30, sigma: 2},
				{bin: 320, amp: 40, sigma: 2},
			},
			wantFreq: 320,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spectrum := gaussianSpectrum(testBufferSize/2, tt.peaks...)
			peaks, err := pf.FindTopPeaks(spectrum, 50)
			if err != nil {
				t.Fatalf("FindTopPeaks: %v", err)
			}
			if !peaks[0].Valid() {
				t.Fatal("expected a peak in slot 0")
			}
			if math.Abs(peaks[0].Frequency-tt.wantFreq) > pf.Resolution() {
				t.Errorf("slot 0 frequency = %.3f, want ~%.1f", peaks[0].Frequency, tt.wantFreq)
			}
			if peaks[1].Valid() {
				t.Errorf("slot 1 = %+v, want sentinel (smaller peak suppressed)", peaks[1])
			}
		})
	}
}

func TestInterpolateExactOnParabola(t *testing.T) {
	pf := newTestFinder(t)

	tests := []struct {
		name  string
		delta float64 // true sub-bin offset of the vertex
		apex  float64 // true vertex magnitude
		curve float64 // parabola curvature (negative opens downward)
	}{
		{"centered", 0.0, -20.0, -3.0},
		{"right of bin", 0.3, -12.5, -2.0},
		{"left of bin", -0.4, -35.0, -5.0},
	}

	const k = 400
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spectrum := make([]float64, testBufferSize/2)
			for i := range spectrum {
				d := float64(i-k) - tt.delta
				spectrum[i] = tt.apex + tt.curve*d*d
			}

			est := pf.interpolate(spectrum, k)
			wantFreq := (float64(k) + tt.delta) * pf.Resolution()
			if math.Abs(est.Frequency-wantFreq) > 1e-9 {
				t.Errorf("frequency = %.9f, want %.9f", est.Frequency, wantFreq)
			}
			if math.Abs(est.Magnitude-tt.apex) > 1e-9 {
				t.Errorf("magnitude = %.9f, want %.9f", est.Magnitude, tt.apex)
			}
		})
	}
}

func TestInterpolateFlatTopFallsBack(t *testing.T) {
	pf := newTestFinder(t)
	spectrum := make([]float64, testBufferSize/2)
	for i := range spectrum {
		spectrum[i] = -40.0 // perfectly flat: zero denominator
	}

	est := pf.interpolate(spectrum, 123)
	if got, want := est.Frequency, 123*pf.Resolution(); got != want {
		t.Errorf("frequency = %v, want raw bin center %v", got, want)
	}
	if est.Magnitude != -40.0 {
		t.Errorf("magnitude = %v, want raw bin magnitude -40", est.Magnitude)
	}
}

func TestFindTopPeaksSeparationTooSmall(t *testing.T) {
	pf := newTestFinder(t)
	spectrum := gaussianSpectrum(testBufferSize/2, gaussPeak{bin: 300, amp: 40, sigma: 2})

	// 2 Hz spans only 2 bins at this resolution
	_, err := pf.FindTopPeaks(spectrum, 2)
	if err == nil {
		t.Fatal("expected configuration error for tiny separation")
	}
	var analysisErr *common.AnalysisError
	if !errors.As(err, &analysisErr) || analysisErr.Code != common.ErrCodeConfiguration {
		t.Errorf("error = %v, want code %s", err, common.ErrCodeConfiguration)
	}
}

func TestFindTopPeaksWrongSpectrumLength(t *testing.T) {
	pf := newTestFinder(t)

	_, err := pf.FindTopPeaks(make([]float64, 100), 50)
	if err == nil {
		t.Fatal("expected precondition error for short spectrum")
	}
	var analysisErr *common.AnalysisError
	if !errors.As(err, &analysisErr) || analysisErr.Code != common.ErrCodePrecondition {
		t.Errorf("error = %v, want code %s", err, common.ErrCodePrecondition)
	}
}

func TestSentinel(t *testing.T) {
	s := Sentinel()
	if s.Valid() {
		t.Error("sentinel must not be valid")
	}
	if s.Frequency != -1 || !math.IsInf(s.Magnitude, -1) {
		t.Errorf("sentinel = %+v, want {-1, -Inf}", s)
	}
}
