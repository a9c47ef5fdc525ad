package metrics

import (
	"sort"
	"sync"
	"time"
)

// LatencyTracker keeps a bounded window of recent tick-to-process delays
// for the periodic log line. The prometheus histogram covers dashboards;
// this gives operators a number in the process log without scraping.
type LatencyTracker struct {
	mu      sync.Mutex
	samples []time.Duration
	next    int
	full    bool
}

// NewLatencyTracker keeps the last size samples.
func NewLatencyTracker(size int) *LatencyTracker {
	return &LatencyTracker{samples: make([]time.Duration, size)}
}

// Observe records one delay.
func (lt *LatencyTracker) Observe(d time.Duration) {
	lt.mu.Lock()
	lt.samples[lt.next] = d
	lt.next = (lt.next + 1) % len(lt.samples)
	if lt.next == 0 {
		lt.full = true
	}
	lt.mu.Unlock()
}

// Percentile returns the p-th percentile (0-100) of the window, or zero
// when empty.
func (lt *LatencyTracker) Percentile(p float64) time.Duration {
	lt.mu.Lock()
	n := lt.next
	if lt.full {
		n = len(lt.samples)
	}
	window := make([]time.Duration, n)
	copy(window, lt.samples[:n])
	lt.mu.Unlock()

	if n == 0 {
		return 0
	}
	sort.Slice(window, func(i, j int) bool { return window[i] < window[j] })
	idx := int(float64(n-1) * p / 100.0)
	return window[idx]
}
