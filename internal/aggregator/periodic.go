package aggregator

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/yomariano/futurezxyback/internal/model"
)

// Driver recomputes every series on a per-timeframe cadence so quiet markets
// still refresh their snapshots. Each timeframe ticks at its own bar
// duration, clamped to maxCadence so daily and weekly series are not silent
// for a whole bar.
type Driver struct {
	agg        *Aggregator
	timeframes []model.Timeframe
	maxCadence time.Duration
}

// NewDriver builds a periodic recompute driver over agg's store.
func NewDriver(agg *Aggregator, tfs []model.Timeframe, maxCadence time.Duration) *Driver {
	return &Driver{agg: agg, timeframes: tfs, maxCadence: maxCadence}
}

// Run starts one ticker goroutine per timeframe and blocks until ctx is
// cancelled.
func (d *Driver) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, tf := range d.timeframes {
		wg.Add(1)
		go func(tf model.Timeframe) {
			defer wg.Done()
			d.runTimeframe(ctx, tf)
		}(tf)
	}
	wg.Wait()
}

func (d *Driver) runTimeframe(ctx context.Context, tf model.Timeframe) {
	cadence := tf.Duration()
	if cadence > d.maxCadence {
		cadence = d.maxCadence
	}
	log.Printf("[periodic] %s recompute every %s", tf, cadence)

	ticker := time.NewTicker(cadence)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, key := range d.agg.store.Keys() {
				if key.Timeframe != tf {
					continue
				}
				d.agg.RecomputeKey(key)
			}
		}
	}
}
