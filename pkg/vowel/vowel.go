// Package vowel labels vowel-like sounds from the two dominant spectral
// peaks. Sung vowels place their strongest formants at near-integer frequency
// ratios, so a rounded-ratio lookup is enough to separate the two labels.
package vowel

import (
	"math"

	"github.com/teaden/Audiophile/pkg/spectral"
)

// Label is a coarse vowel classification
type Label int

const (
	LabelNone Label = iota
	LabelOoo
	LabelAah
)

func (l Label) String() string {
	switch l {
	case LabelOoo:
		return "ooo"
	case LabelAah:
		return "aah"
	default:
		return "none"
	}
}

// ratioTolerance absorbs the residual error left after rounding both
// frequencies to the nearest hundred Hz
const ratioTolerance = 0.25

// Classify maps the top two peaks to a vowel label. Frequencies are rounded
// to the nearest hundred Hz before the ratio check; a 3:1 ratio reads as
// "ooo" and a 5:1 or 7:1 ratio in either direction reads as "aah". Anything
// else, including a missing second peak, is unclassified.
func Classify(peaks [2]spectral.FrequencyMagnitude) Label {
	if !peaks[0].Valid() || !peaks[1].Valid() {
		return LabelNone
	}

	a := roundToHundred(peaks[0].Frequency)
	b := roundToHundred(peaks[1].Frequency)
	if a <= 0 || b <= 0 {
		return LabelNone
	}

	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	r := hi / lo

	switch {
	case near(r, 3):
		return LabelOoo
	case near(r, 5), near(r, 7):
		return LabelAah
	default:
		return LabelNone
	}
}

func roundToHundred(f float64) float64 {
	return math.Round(f/100) * 100
}

func near(r, target float64) bool {
	return math.Abs(r-target) < ratioTolerance
}
