package metrics

import (
	"sync"
	"time"
)

// Health is the mutable state behind /healthz.
type Health struct {
	mu            sync.RWMutex
	feedConnected bool
	lastTick      time.Time
	subscribers   int
	symbols       []string
	timeframes    []string
	startedAt     time.Time
}

// NewHealth records the process start.
func NewHealth(symbols, timeframes []string) *Health {
	return &Health{
		symbols:    symbols,
		timeframes: timeframes,
		startedAt:  time.Now(),
	}
}

// SetFeedConnected flips the upstream connection state.
func (h *Health) SetFeedConnected(up bool) {
	h.mu.Lock()
	h.feedConnected = up
	h.mu.Unlock()
}

// MarkTick records that a tick was just processed.
func (h *Health) MarkTick() {
	h.mu.Lock()
	h.lastTick = time.Now()
	h.mu.Unlock()
}

// SetSubscribers records the current subscriber count.
func (h *Health) SetSubscribers(n int) {
	h.mu.Lock()
	h.subscribers = n
	h.mu.Unlock()
}

// Report returns the /healthz payload.
func (h *Health) Report() map[string]any {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "ok"
	if !h.feedConnected {
		status = "degraded"
	}
	var lastTick string
	if !h.lastTick.IsZero() {
		lastTick = h.lastTick.UTC().Format(time.RFC3339)
	}
	return map[string]any{
		"status":         status,
		"feed_connected": h.feedConnected,
		"last_tick":      lastTick,
		"subscribers":    h.subscribers,
		"symbols":        h.symbols,
		"timeframes":     h.timeframes,
		"uptime_seconds": int(time.Since(h.startedAt).Seconds()),
	}
}
