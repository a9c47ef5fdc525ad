// Package bus fans one snapshot stream out to several consumers (the
// websocket hub, the optional redis mirror). Consumers are decoupled: a
// slow consumer drops its own copies and never blocks the producer or the
// other consumers.
package bus

import (
	"context"
	"log"

	"github.com/yomariano/futurezxyback/internal/model"
)

// FanOut replicates every envelope from its input to every subscriber
// channel. Subscribe must be called before Run.
type FanOut struct {
	bufSize int
	outputs []chan model.Envelope

	// OnDrop, when set, is called with the subscriber index each time a
	// full subscriber channel forces a drop.
	OnDrop func(i int)
}

// New creates a FanOut whose subscriber channels hold bufSize envelopes.
func New(bufSize int) *FanOut {
	return &FanOut{bufSize: bufSize}
}

// Subscribe registers a new consumer and returns its channel. Not safe to
// call after Run has started.
func (f *FanOut) Subscribe() <-chan model.Envelope {
	ch := make(chan model.Envelope, f.bufSize)
	f.outputs = append(f.outputs, ch)
	return ch
}

// Run copies input to every subscriber until the input closes or ctx is
// cancelled, then closes all subscriber channels.
func (f *FanOut) Run(ctx context.Context, input <-chan model.Envelope) {
	defer func() {
		for _, out := range f.outputs {
			close(out)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case env, ok := <-input:
			if !ok {
				return
			}
			for i, out := range f.outputs {
				select {
				case out <- env:
				default:
					log.Printf("[fanout] subscriber %d full, dropping %s", i, env.Key)
					if f.OnDrop != nil {
						f.OnDrop(i)
					}
				}
			}
		}
	}
}

// ChannelStats reports the fill level of each subscriber channel.
func (f *FanOut) ChannelStats() []int {
	stats := make([]int, len(f.outputs))
	for i, out := range f.outputs {
		stats[i] = len(out)
	}
	return stats
}
