package spectral

import (
	"fmt"
	"math"

	"github.com/teaden/Audiophile/pkg/common"
	"github.com/teaden/Audiophile/pkg/logging"
)

// topPeakCount is the number of ranked peaks reported per spectrum
const topPeakCount = 2

// PeakFinder locates the strongest, mutually separated peaks in a magnitude
// spectrum. One instance is bound to a fixed sample rate and FFT size; the
// spectra it scans must all have bufferSize/2 bins.
type PeakFinder struct {
	sampleRate float64
	bufferSize int
	logger     logging.Logger
}

// NewPeakFinder creates a peak finder for spectra of bufferSize/2 bins
func NewPeakFinder(sampleRate float64, bufferSize int, logger logging.Logger) (*PeakFinder, error) {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if sampleRate <= 0 {
		return nil, common.NewAnalysisError("peak_finder", common.ErrCodeConfiguration,
			fmt.Sprintf("sample rate must be positive, got %v", sampleRate), nil)
	}
	if bufferSize < 8 || bufferSize%2 != 0 {
		return nil, common.NewAnalysisError("peak_finder", common.ErrCodeConfiguration,
			fmt.Sprintf("buffer size must be an even number >= 8, got %d", bufferSize), nil)
	}

	return &PeakFinder{
		sampleRate: sampleRate,
		bufferSize: bufferSize,
		logger: logger.WithFields(logging.Fields{
			"component": "peak_finder",
		}),
	}, nil
}

// Resolution returns the frequency width of one spectrum bin in Hz
func (pf *PeakFinder) Resolution() float64 {
	return pf.sampleRate / float64(pf.bufferSize)
}

// FindTopPeaks scans the spectrum for the two strongest peaks separated by at
// least minSeparationHz, each refined by quadratic interpolation. Slot 0 holds
// the strongest peak; slots without a peak hold the sentinel. Bin 0 (DC) is
// excluded from the search.
func (pf *PeakFinder) FindTopPeaks(spectrum []float64, minSeparationHz float64) ([topPeakCount]FrequencyMagnitude, error) {
	peaks := [topPeakCount]FrequencyMagnitude{Sentinel(), Sentinel()}

	if len(spectrum) != pf.bufferSize/2 {
		return peaks, common.NewAnalysisError("peak_finder", common.ErrCodePrecondition,
			fmt.Sprintf("spectrum has %d bins, expected %d", len(spectrum), pf.bufferSize/2), nil)
	}

	windowBins := int(minSeparationHz * float64(pf.bufferSize) / pf.sampleRate)
	if windowBins < 3 {
		// interpolation needs one neighbor on each side of a window-local maximum
		return peaks, common.NewAnalysisError("peak_finder", common.ErrCodeConfiguration,
			fmt.Sprintf("minimum separation %.1f Hz spans %d bins, need at least 3", minSeparationHz, windowBins), nil)
	}

	seen := make(map[int]struct{})

	for i := 1; i+windowBins <= len(spectrum); i++ {
		p := windowMaxIndex(spectrum, i, windowBins)

		// reject maxima sitting on a window edge; they are artifacts of the
		// window position, not of the spectrum
		if p-1 < i || p+1 > i+windowBins-1 {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}

		est := pf.interpolate(spectrum, p)
		pf.insert(&peaks, est, minSeparationHz)
	}

	return peaks, nil
}

// windowMaxIndex returns the absolute index of the maximum bin in
// spectrum[start : start+width]
func windowMaxIndex(spectrum []float64, start, width int) int {
	maxIdx := start
	for j := start + 1; j < start+width; j++ {
		if spectrum[j] > spectrum[maxIdx] {
			maxIdx = j
		}
	}
	return maxIdx
}

// interpolate refines peak bin k with the three-point parabolic estimator.
// A flat top (zero denominator) falls back to the raw bin location.
func (pf *PeakFinder) interpolate(spectrum []float64, k int) FrequencyMagnitude {
	binRes := pf.Resolution()

	m0 := spectrum[k]
	mPrev := spectrum[k-1]
	mNext := spectrum[k+1]

	denom := mPrev - 2*m0 + mNext
	if denom == 0 {
		return FrequencyMagnitude{
			Frequency: float64(k) * binRes,
			Magnitude: m0,
		}
	}

	delta := 0.5 * (mPrev - mNext) / denom
	return FrequencyMagnitude{
		Frequency: (float64(k) + delta) * binRes,
		Magnitude: m0 - 0.25*(mPrev-mNext)*delta,
	}
}

// insert places a candidate into the ranked pair, enforcing mutual separation:
// a candidate within minSeparationHz of a stronger kept peak may only replace
// it, never occupy the other slot.
func (pf *PeakFinder) insert(peaks *[topPeakCount]FrequencyMagnitude, est FrequencyMagnitude, minSeparationHz float64) {
	if peaks[0].Valid() && math.Abs(est.Frequency-peaks[0].Frequency) < minSeparationHz {
		if est.Magnitude > peaks[0].Magnitude {
			peaks[0] = est
			// the replacement may have moved slot 0 too close to slot 1
			if peaks[1].Valid() && math.Abs(peaks[0].Frequency-peaks[1].Frequency) < minSeparationHz {
				peaks[1] = Sentinel()
			}
		}
		return
	}

	if est.Magnitude > peaks[0].Magnitude {
		peaks[1] = peaks[0]
		peaks[0] = est
		return
	}

	if peaks[1].Valid() && math.Abs(est.Frequency-peaks[1].Frequency) < minSeparationHz {
		if est.Magnitude > peaks[1].Magnitude {
			peaks[1] = est
		}
		return
	}

	if est.Magnitude > peaks[1].Magnitude {
		peaks[1] = est
	}
}
