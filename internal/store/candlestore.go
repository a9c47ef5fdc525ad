// Package store owns the in-memory candle series, one per configured
// (symbol, timeframe) pair. A series is the unit of mutual exclusion: the
// whole align -> upsert -> recompute -> publish unit runs under the series
// lock, so different series proceed fully in parallel while a single series
// only ever has one writer.
package store

import (
	"sort"
	"sync"

	"github.com/yomariano/futurezxyback/internal/model"
)

// MaxBars caps every series; the oldest bar is dropped on overflow.
const MaxBars = 500

// Store holds every series. Series are created empty at startup for each
// configured key and live for the process lifetime.
type Store struct {
	mu     sync.RWMutex
	series map[model.SeriesKey]*Series
}

// New creates a Store with an empty series for every key.
func New(keys []model.SeriesKey) *Store {
	s := &Store{series: make(map[model.SeriesKey]*Series, len(keys))}
	for _, k := range keys {
		s.series[k] = &Series{key: k}
	}
	return s
}

// Get returns the series for key, creating it if the key was not configured
// at startup (ticks for unknown pairs still get a home).
func (s *Store) Get(key model.SeriesKey) *Series {
	s.mu.RLock()
	sr, ok := s.series[key]
	s.mu.RUnlock()
	if ok {
		return sr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sr, ok = s.series[key]; ok {
		return sr
	}
	sr = &Series{key: key}
	s.series[key] = sr
	return sr
}

// Keys returns every series key, sorted for deterministic iteration.
func (s *Store) Keys() []model.SeriesKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]model.SeriesKey, 0, len(s.series))
	for k := range s.series {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// Series is a bounded, newest-first candle sequence. OpenTime is strictly
// decreasing front-to-back with no duplicates. It is mutated only through
// Update and Seed; the slice never escapes the lock.
type Series struct {
	key     model.SeriesKey
	mu      sync.Mutex
	candles []model.Candle
}

// Key returns the series identity.
func (sr *Series) Key() model.SeriesKey { return sr.key }

// Len returns the current bar count.
func (sr *Series) Len() int {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	return len(sr.candles)
}

// Seed replaces the series content with an initial candle list (the
// historical seeder's output). Input order does not matter; duplicates by
// open time keep the first occurrence, and the result is capped at MaxBars.
func (sr *Series) Seed(candles []model.Candle) {
	sorted := make([]model.Candle, len(candles))
	copy(sorted, candles)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].OpenTime > sorted[j].OpenTime })

	deduped := sorted[:0]
	var prev int64
	for i, c := range sorted {
		if i > 0 && c.OpenTime == prev {
			continue
		}
		deduped = append(deduped, c)
		prev = c.OpenTime
	}
	if len(deduped) > MaxBars {
		deduped = deduped[:MaxBars]
	}

	sr.mu.Lock()
	sr.candles = deduped
	sr.mu.Unlock()
}

// Update applies one tick under the series lock and, still under the lock,
// invokes fn with a read view of the updated series. fresh is true when a
// new bar was opened. The view is only valid for the duration of fn and must
// not be retained.
func (sr *Series) Update(tickMs int64, price float64, fn func(view []model.Candle, fresh bool)) {
	openTime := sr.key.Timeframe.Align(tickMs)

	sr.mu.Lock()
	defer sr.mu.Unlock()

	fresh := sr.upsert(openTime, price)
	if fn != nil {
		fn(sr.candles, fresh)
	}
}

// Read invokes fn with a read view under the series lock. Used by the
// periodic recompute driver and the seeder's initial snapshot pass.
func (sr *Series) Read(fn func(view []model.Candle)) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	fn(sr.candles)
}

// upsert opens a new bar when the aligned open time is past the newest
// stored bar, otherwise merges the price into the current bar. This is the
// only mutation path for live data.
func (sr *Series) upsert(openTime int64, price float64) bool {
	if len(sr.candles) == 0 || sr.candles[0].OpenTime < openTime {
		if len(sr.candles) < MaxBars {
			sr.candles = append(sr.candles, model.Candle{})
		}
		copy(sr.candles[1:], sr.candles)
		sr.candles[0] = model.Candle{
			OpenTime: openTime,
			Open:     price,
			High:     price,
			Low:      price,
			Close:    price,
		}
		return true
	}

	cur := &sr.candles[0]
	cur.Close = price
	if price > cur.High {
		cur.High = price
	}
	if price < cur.Low {
		cur.Low = price
	}
	return false
}
