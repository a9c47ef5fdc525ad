// Package aggregator folds the live tick stream into candle series and
// drives indicator recomputation. One incoming tick touches every configured
// timeframe for its symbol; each (symbol, timeframe) series recomputes and
// publishes atomically under its own lock.
package aggregator

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/yomariano/futurezxyback/internal/indicator"
	"github.com/yomariano/futurezxyback/internal/model"
	"github.com/yomariano/futurezxyback/internal/store"
)

// Aggregator consumes ticks and emits marshalled snapshot envelopes.
type Aggregator struct {
	store      *store.Store
	engine     *indicator.Engine
	out        chan<- model.Envelope
	timeframes []model.Timeframe
	pricePrec  int
	oscPrec    int

	// Optional instrumentation hooks.
	OnDroppedTick  func()
	OnSnapshot     func(key model.SeriesKey, fresh bool, dur time.Duration)
	OnInsufficient func(key model.SeriesKey)
	OnLatency      func(tickMs int64)
}

// New builds an Aggregator publishing envelopes to out.
func New(st *store.Store, eng *indicator.Engine, out chan<- model.Envelope, tfs []model.Timeframe, pricePrec, oscPrec int) *Aggregator {
	return &Aggregator{
		store:      st,
		engine:     eng,
		out:        out,
		timeframes: tfs,
		pricePrec:  pricePrec,
		oscPrec:    oscPrec,
	}
}

// Run consumes ticks until the channel closes or ctx is cancelled.
func (a *Aggregator) Run(ctx context.Context, ticks <-chan model.Tick) {
	log.Printf("[aggregator] started, %d timeframes per symbol", len(a.timeframes))
	for {
		select {
		case <-ctx.Done():
			log.Printf("[aggregator] stopped: %v", ctx.Err())
			return
		case t, ok := <-ticks:
			if !ok {
				log.Printf("[aggregator] tick channel closed")
				return
			}
			a.processTick(t)
			if a.OnLatency != nil {
				a.OnLatency(t.Timestamp)
			}
		}
	}
}

func (a *Aggregator) processTick(t model.Tick) {
	for _, tf := range a.timeframes {
		key := model.SeriesKey{Symbol: t.Symbol, Timeframe: tf}
		sr := a.store.Get(key)
		sr.Update(t.Timestamp, t.Price, func(view []model.Candle, fresh bool) {
			a.recompute(key, view, fresh)
		})
	}
}

// recompute runs the indicator engine over the series view and publishes
// the result. Called under the series lock so the published snapshot always
// matches a consistent series state.
func (a *Aggregator) recompute(key model.SeriesKey, view []model.Candle, fresh bool) {
	start := time.Now()
	snap, err := a.engine.Compute(key, view)
	if err != nil {
		if errors.Is(err, indicator.ErrInsufficientHistory) {
			if a.OnInsufficient != nil {
				a.OnInsufficient(key)
			}
			return
		}
		log.Printf("[aggregator] compute %s: %v", key, err)
		return
	}

	msg := model.NewMessage(snap, a.pricePrec, a.oscPrec)
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[aggregator] marshal %s: %v", key, err)
		return
	}

	select {
	case a.out <- model.Envelope{Key: key, Payload: payload}:
		if a.OnSnapshot != nil {
			a.OnSnapshot(key, fresh, time.Since(start))
		}
	default:
		log.Printf("[aggregator] output full, dropping snapshot %s", key)
		if a.OnDroppedTick != nil {
			a.OnDroppedTick()
		}
	}
}

// RecomputeAll recomputes and publishes every configured series from its
// current content. Used after seeding so subscribers get a baseline without
// waiting for live ticks, and by the periodic driver.
func (a *Aggregator) RecomputeAll(ctx context.Context) {
	for _, key := range a.store.Keys() {
		if ctx.Err() != nil {
			return
		}
		a.RecomputeKey(key)
	}
}

// RecomputeKey recomputes one series from its current content.
func (a *Aggregator) RecomputeKey(key model.SeriesKey) {
	sr := a.store.Get(key)
	sr.Read(func(view []model.Candle) {
		a.recompute(key, view, false)
	})
}
