package spectral

import "math"

// FrequencyMagnitude pairs an interpolated peak frequency with its magnitude.
// Peaks are produced in ranked pairs (primary, secondary); slots that never
// received a peak hold the sentinel value.
type FrequencyMagnitude struct {
	Frequency float64 `json:"frequency"` // Hz
	Magnitude float64 `json:"magnitude"` // dB
}

// Sentinel returns the "no peak found" value
func Sentinel() FrequencyMagnitude {
	return FrequencyMagnitude{Frequency: -1, Magnitude: math.Inf(-1)}
}

// Valid reports whether this slot holds a real peak rather than the sentinel
func (fm FrequencyMagnitude) Valid() bool {
	return fm.Frequency >= 0 && !math.IsInf(fm.Magnitude, -1)
}
