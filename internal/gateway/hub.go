// Package gateway is the outbound websocket surface: a hub that fans
// snapshot payloads to connected clients, the per-connection client
// lifecycle, and the HTTP server that upgrades connections.
package gateway

import (
	"context"
	"log"
	"sync"

	"github.com/yomariano/futurezxyback/internal/model"
)

// Subscriber is one connected consumer. Send must be safe for concurrent
// use; a Send error marks the subscriber dead.
type Subscriber interface {
	ID() string
	Send(payload []byte) error
	Close() error
}

// Hub tracks subscribers and broadcasts every published payload to all of
// them. It also keeps the latest payload per series for replay to new
// subscribers and for the REST surface.
type Hub struct {
	mu     sync.RWMutex
	subs   map[Subscriber]struct{}
	latest map[model.SeriesKey][]byte

	// Optional instrumentation hooks.
	OnSendFailure     func(id string)
	OnSubscriberCount func(n int)
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subs:   make(map[Subscriber]struct{}),
		latest: make(map[model.SeriesKey][]byte),
	}
}

// Register adds a subscriber to the broadcast set.
func (h *Hub) Register(s Subscriber) {
	h.mu.Lock()
	h.subs[s] = struct{}{}
	n := len(h.subs)
	h.mu.Unlock()

	log.Printf("[hub] subscriber %s connected (%d total)", s.ID(), n)
	if h.OnSubscriberCount != nil {
		h.OnSubscriberCount(n)
	}
}

// Unregister removes a subscriber. Safe to call twice.
func (h *Hub) Unregister(s Subscriber) {
	h.mu.Lock()
	_, ok := h.subs[s]
	delete(h.subs, s)
	n := len(h.subs)
	h.mu.Unlock()
	if !ok {
		return
	}

	log.Printf("[hub] subscriber %s disconnected (%d total)", s.ID(), n)
	if h.OnSubscriberCount != nil {
		h.OnSubscriberCount(n)
	}
}

// Count returns the current subscriber count.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Publish records env as the latest payload for its series and sends it to
// every subscriber. A failed send removes and closes only that subscriber;
// the rest still receive the payload.
func (h *Hub) Publish(env model.Envelope) {
	h.mu.Lock()
	h.latest[env.Key] = env.Payload
	targets := make([]Subscriber, 0, len(h.subs))
	for s := range h.subs {
		targets = append(targets, s)
	}
	h.mu.Unlock()

	for _, s := range targets {
		if err := s.Send(env.Payload); err != nil {
			log.Printf("[hub] send to %s failed: %v", s.ID(), err)
			if h.OnSendFailure != nil {
				h.OnSendFailure(s.ID())
			}
			h.Unregister(s)
			_ = s.Close()
		}
	}
}

// Run drains the envelope stream into Publish until the channel closes or
// ctx is cancelled.
func (h *Hub) Run(ctx context.Context, in <-chan model.Envelope) {
	for {
		select {
		case <-ctx.Done():
			return
		case env, ok := <-in:
			if !ok {
				return
			}
			h.Publish(env)
		}
	}
}

// Latest returns the stored payloads for the given symbols, every timeframe
// included. An empty symbol list returns everything.
func (h *Hub) Latest(symbols []string) [][]byte {
	if len(symbols) == 0 {
		return h.LatestAll()
	}
	want := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		want[s] = struct{}{}
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([][]byte, 0, len(h.latest))
	for k, payload := range h.latest {
		if _, ok := want[k.Symbol]; ok {
			out = append(out, payload)
		}
	}
	return out
}

// LatestAll returns the stored payload for every series.
func (h *Hub) LatestAll() [][]byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([][]byte, 0, len(h.latest))
	for _, payload := range h.latest {
		out = append(out, payload)
	}
	return out
}

// CloseAll disconnects every subscriber. Used during shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	targets := make([]Subscriber, 0, len(h.subs))
	for s := range h.subs {
		targets = append(targets, s)
	}
	h.subs = make(map[Subscriber]struct{})
	h.mu.Unlock()

	for _, s := range targets {
		_ = s.Close()
	}
}
