package aggregator

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yomariano/futurezxyback/internal/indicator"
	"github.com/yomariano/futurezxyback/internal/model"
	"github.com/yomariano/futurezxyback/internal/store"
)

// seedCandles builds n gently rising bars starting 2024-06-01 00:00 UTC.
func seedCandles(tf model.Timeframe, n int) []model.Candle {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	candles := make([]model.Candle, n)
	for i := 0; i < n; i++ {
		price := 20 + 0.01*float64(i)
		candles[i] = model.Candle{
			OpenTime: base + int64(i)*tf.BucketMs(),
			Open:     price, High: price + 0.05, Low: price - 0.05, Close: price,
		}
	}
	return candles
}

func TestProcessTickPublishesSnapshot(t *testing.T) {
	key := model.SeriesKey{Symbol: "INJ_USDT", Timeframe: model.TF1m}
	st := store.New([]model.SeriesKey{key})
	st.Get(key).Seed(seedCandles(key.Timeframe, 250))

	out := make(chan model.Envelope, 4)
	agg := New(st, indicator.NewEngine(), out, []model.Timeframe{model.TF1m}, 2, 6)

	newest := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).
		Add(249 * time.Minute).Add(30 * time.Second)
	agg.processTick(model.Tick{Symbol: "INJ_USDT", Timestamp: newest.UnixMilli(), Price: 23.5})

	var env model.Envelope
	select {
	case env = <-out:
	default:
		t.Fatal("no envelope published")
	}
	require.Equal(t, key, env.Key)

	var msg model.Message
	require.NoError(t, json.Unmarshal(env.Payload, &msg))
	assert.Equal(t, "indicators", msg.Type)
	assert.Equal(t, "INJ_USDT", msg.Symbol)
	assert.Equal(t, "1m", msg.Timeframe)
	assert.Equal(t, 23.5, msg.Price)
	assert.True(t, msg.Signals.PriceAboveSMA50)
	assert.Greater(t, msg.SMA200, 0.0)

	// The published numbers must match an independent computation over the
	// final series state.
	var want model.Snapshot
	st.Get(key).Read(func(view []model.Candle) {
		var err error
		want, err = indicator.NewEngine().Compute(key, view)
		require.NoError(t, err)
	})
	assert.InDelta(t, want.WaveTrend.WT1, msg.WT1, 1e-6)
	assert.InDelta(t, want.WaveTrend.WT2, msg.WT2, 1e-6)
	assert.InDelta(t, model.Round(want.RSI, 2), msg.RSI, 1e-9)
}

func TestProcessTickFansAcrossTimeframes(t *testing.T) {
	tfs := []model.Timeframe{model.TF1m, model.TF5m, model.TF15m}
	keys := make([]model.SeriesKey, len(tfs))
	for i, tf := range tfs {
		keys[i] = model.SeriesKey{Symbol: "INJ_USDT", Timeframe: tf}
	}
	st := store.New(keys)
	for _, key := range keys {
		st.Get(key).Seed(seedCandles(key.Timeframe, 60))
	}

	out := make(chan model.Envelope, 8)
	agg := New(st, indicator.NewEngine(), out, tfs, 2, 6)
	agg.processTick(model.Tick{
		Symbol:    "INJ_USDT",
		Timestamp: time.Date(2024, 6, 2, 12, 0, 10, 0, time.UTC).UnixMilli(),
		Price:     25,
	})

	seen := map[model.Timeframe]bool{}
	for len(out) > 0 {
		env := <-out
		seen[env.Key.Timeframe] = true
	}
	for _, tf := range tfs {
		assert.Truef(t, seen[tf], "no snapshot for %s", tf)
	}
}

func TestProcessTickSkipsShortSeries(t *testing.T) {
	key := model.SeriesKey{Symbol: "INJ_USDT", Timeframe: model.TF1h}
	st := store.New([]model.SeriesKey{key})
	out := make(chan model.Envelope, 1)

	agg := New(st, indicator.NewEngine(), out, []model.Timeframe{model.TF1h}, 2, 6)
	var insufficient int
	agg.OnInsufficient = func(model.SeriesKey) { insufficient++ }

	agg.processTick(model.Tick{Symbol: "INJ_USDT", Timestamp: time.Now().UnixMilli(), Price: 10})

	assert.Equal(t, 1, insufficient)
	assert.Empty(t, out)
	assert.Equal(t, 1, st.Get(key).Len(), "tick must still open a bar")
}

func TestRecomputePublishIsNonBlocking(t *testing.T) {
	key := model.SeriesKey{Symbol: "INJ_USDT", Timeframe: model.TF1m}
	st := store.New([]model.SeriesKey{key})
	st.Get(key).Seed(seedCandles(key.Timeframe, 100))
	out := make(chan model.Envelope) // no buffer, nobody reading

	agg := New(st, indicator.NewEngine(), out, []model.Timeframe{model.TF1m}, 2, 6)
	var drops int
	agg.OnDroppedTick = func() { drops++ }

	done := make(chan struct{})
	go func() {
		agg.processTick(model.Tick{Symbol: "INJ_USDT", Timestamp: time.Now().UnixMilli(), Price: 21})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("processTick blocked on a full output")
	}
	assert.Equal(t, 1, drops)
}

func TestRecomputeAllEmitsBaseline(t *testing.T) {
	key := model.SeriesKey{Symbol: "INJ_USDT", Timeframe: model.TF1m}
	st := store.New([]model.SeriesKey{key})
	st.Get(key).Seed(seedCandles(key.Timeframe, 250))
	out := make(chan model.Envelope, 4)

	agg := New(st, indicator.NewEngine(), out, []model.Timeframe{model.TF1m}, 2, 6)
	agg.RecomputeAll(context.Background())

	require.Len(t, out, 1)
	env := <-out
	assert.Equal(t, key, env.Key)
}
