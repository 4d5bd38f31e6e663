package gesture

// rollingBaseline accumulates per-tick band averages and collapses them into
// the quiet reference energy split around the probe tone once full
type rollingBaseline struct {
	lowSum  float64
	highSum float64
	count   int
}

func (b *rollingBaseline) add(low, high float64) {
	b.lowSum += low
	b.highSum += high
	b.count++
}

func (b *rollingBaseline) full(window int) bool {
	return b.count >= window
}

// collapse averages the accumulated sums and resets the accumulator
func (b *rollingBaseline) collapse() (low, high float64) {
	n := float64(b.count)
	low = b.lowSum / n
	high = b.highSum / n
	b.reset()
	return low, high
}

func (b *rollingBaseline) reset() {
	b.lowSum = 0
	b.highSum = 0
	b.count = 0
}
