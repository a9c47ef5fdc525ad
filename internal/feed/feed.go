// Package feed brings live ticks into the pipeline. A Source speaks one
// exchange protocol; the Runner wraps any Source with reconnect handling so
// a dropped upstream never kills the process.
package feed

import (
	"context"
	"log"
	"time"

	"github.com/jpillora/backoff"

	"github.com/yomariano/futurezxyback/internal/model"
)

// Source is one upstream tick provider. Run blocks until the connection
// fails or ctx is cancelled; it must push parsed ticks without blocking on
// a full channel (drop instead).
type Source interface {
	Name() string
	Run(ctx context.Context, ticks chan<- model.Tick) error
}

// Runner restarts a Source forever with a delay between attempts.
type Runner struct {
	src Source
	b   *backoff.Backoff

	// Optional instrumentation hooks.
	OnReconnect func()
	OnConnected func(connected bool)
}

// NewRunner builds a Runner. min and max bound the reconnect delay; equal
// values give a fixed delay.
func NewRunner(src Source, min, max time.Duration) *Runner {
	return &Runner{src: src, b: &backoff.Backoff{Min: min, Max: max, Jitter: false}}
}

// Run drives the source until ctx is cancelled.
func (r *Runner) Run(ctx context.Context, ticks chan<- model.Tick) {
	for {
		if r.OnConnected != nil {
			r.OnConnected(true)
		}
		err := r.src.Run(ctx, ticks)
		if r.OnConnected != nil {
			r.OnConnected(false)
		}
		if ctx.Err() != nil {
			log.Printf("[feed] %s stopped: %v", r.src.Name(), ctx.Err())
			return
		}

		delay := r.b.Duration()
		log.Printf("[feed] %s disconnected (%v), reconnecting in %s", r.src.Name(), err, delay)
		if r.OnReconnect != nil {
			r.OnReconnect()
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}
