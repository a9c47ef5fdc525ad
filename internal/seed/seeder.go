// Package seed loads historical candles into the store at startup so
// indicators that need deep history (the 200-bar SMA above all) are live
// from the first tick instead of hours later.
package seed

import (
	"context"
	"log"

	"github.com/yomariano/futurezxyback/internal/model"
	"github.com/yomariano/futurezxyback/internal/store"
)

// Seeder fetches the historical series for one (symbol, timeframe) pair.
type Seeder interface {
	Load(ctx context.Context, symbol string, tf model.Timeframe) ([]model.Candle, error)
}

// SeedAll loads every configured pair. A failed pair is logged and skipped;
// its series starts empty and fills from live ticks.
func SeedAll(ctx context.Context, s Seeder, st *store.Store, symbols []string, tfs []model.Timeframe) {
	for _, sym := range symbols {
		for _, tf := range tfs {
			if ctx.Err() != nil {
				return
			}
			candles, err := s.Load(ctx, sym, tf)
			if err != nil {
				log.Printf("[seed] %s %s: %v, starting empty", sym, tf, err)
				continue
			}
			key := model.SeriesKey{Symbol: sym, Timeframe: tf}
			st.Get(key).Seed(candles)
			log.Printf("[seed] %s loaded %d bars", key, len(candles))
		}
	}
}
