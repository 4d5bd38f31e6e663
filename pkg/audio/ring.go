package audio

import (
	"fmt"
	"sync"

	"github.com/teaden/Audiophile/pkg/common"
)

// Ring is a fixed-capacity circular sample buffer. The capture callback
// writes into it without ever blocking on the analysis side; the analyzer
// copies out the freshest window once per tick. Older samples are silently
// overwritten.
type Ring struct {
	mu      sync.Mutex
	samples []float64
	head    int
	filled  int
}

// NewRing creates a ring holding the most recent capacity samples
func NewRing(capacity int) (*Ring, error) {
	if capacity < 1 {
		return nil, common.NewAnalysisError("ring", common.ErrCodeConfiguration,
			fmt.Sprintf("ring capacity must be >= 1, got %d", capacity), nil)
	}
	return &Ring{samples: make([]float64, capacity)}, nil
}

// Capacity returns the fixed buffer size
func (r *Ring) Capacity() int {
	return len(r.samples)
}

// Write appends a block of captured samples, overwriting the oldest
func (r *Ring) Write(block []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range block {
		r.samples[r.head] = float64(s)
		r.head = (r.head + 1) % len(r.samples)
	}
	r.filled += len(block)
	if r.filled > len(r.samples) {
		r.filled = len(r.samples)
	}
}

// Len returns how many valid samples the ring currently holds
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filled
}

// Latest copies the freshest n samples into dst in chronological order and
// reports whether the ring held that many. dst must have length >= n.
func (r *Ring) Latest(dst []float64, n int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n > r.filled || n > len(dst) {
		return false
	}
	start := (r.head - n + len(r.samples)) % len(r.samples)
	for i := 0; i < n; i++ {
		dst[i] = r.samples[(start+i)%len(r.samples)]
	}
	return true
}
