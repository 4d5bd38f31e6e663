package vowel

import (
	"testing"

	"github.com/teaden/Audiophile/pkg/spectral"
)

func peaks(f1, f2 float64) [2]spectral.FrequencyMagnitude {
	return [2]spectral.FrequencyMagnitude{
		{Frequency: f1, Magnitude: -10},
		{Frequency: f2, Magnitude: -20},
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		peaks [2]spectral.FrequencyMagnitude
		want  Label
	}{
		{"ooo 3 to 1", peaks(300, 900), LabelOoo},
		{"ooo reversed order", peaks(900, 300), LabelOoo},
		{"ooo off-grid frequencies", peaks(311.4, 887.9), LabelOoo},
		{"aah 5 to 1", peaks(200, 1000), LabelAah},
		{"aah 7 to 1", peaks(100, 700), LabelAah},
		{"aah reversed order", peaks(1000, 200), LabelAah},
		{"unison", peaks(400, 400), LabelNone},
		{"ratio 2", peaks(400, 800), LabelNone},
		{"ratio 4", peaks(200, 800), LabelNone},
		{"non-integer ratio", peaks(300, 1000), LabelNone},
		{"rounds to zero", peaks(40, 900), LabelNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.peaks); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyMissingSecondPeak(t *testing.T) {
	p := [2]spectral.FrequencyMagnitude{
		{Frequency: 300, Magnitude: -10},
		spectral.Sentinel(),
	}
	if got := Classify(p); got != LabelNone {
		t.Errorf("Classify() = %v, want none with a single peak", got)
	}
}

func TestLabelString(t *testing.T) {
	tests := []struct {
		label Label
		want  string
	}{
		{LabelNone, "none"},
		{LabelOoo, "ooo"},
		{LabelAah, "aah"},
	}
	for _, tt := range tests {
		if got := tt.label.String(); got != tt.want {
			t.Errorf("Label(%d).String() = %q, want %q", tt.label, got, tt.want)
		}
	}
}
