package gesture

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// thresholdStats keeps a bounded FIFO window of observed ratio-of-ratios
// samples and derives the detection thresholds from it
type thresholdStats struct {
	samples  []float64
	target   int
	capacity int
	floorPct float64

	mean    float64
	stdDev  float64
	learned bool
}

func newThresholdStats(target, capacity int, floorPct float64) *thresholdStats {
	return &thresholdStats{
		samples:  make([]float64, 0, capacity),
		target:   target,
		capacity: capacity,
		floorPct: floorPct,
	}
}

// add appends a ratio sample, evicting the oldest once capacity is reached,
// and refreshes the learned statistics once the target count is met
func (t *thresholdStats) add(r float64) {
	if len(t.samples) >= t.capacity {
		copy(t.samples, t.samples[1:])
		t.samples = t.samples[:len(t.samples)-1]
	}
	t.samples = append(t.samples, r)

	if len(t.samples) >= t.target {
		t.recompute()
	}
}

func (t *thresholdStats) recompute() {
	t.mean = stat.Mean(t.samples, nil)
	t.stdDev = stat.StdDev(t.samples, nil)

	// floor the deviation so near-constant samples do not produce
	// hair-trigger thresholds
	floor := t.floorPct * math.Abs(t.mean)
	if t.stdDev < floor {
		t.stdDev = floor
	}
	t.learned = true
}

// ready reports whether enough samples have been collected for detection
func (t *thresholdStats) ready() bool {
	return t.learned
}

// bounds returns the detection interval mean ± k·stddev
func (t *thresholdStats) bounds(k float64) (lower, upper float64) {
	return t.mean - k*t.stdDev, t.mean + k*t.stdDev
}

func (t *thresholdStats) size() int {
	return len(t.samples)
}

func (t *thresholdStats) reset() {
	t.samples = t.samples[:0]
	t.mean = 0
	t.stdDev = 0
	t.learned = false
}
