package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewMessage(t *testing.T) {
	snap := Snapshot{
		Key:      SeriesKey{Symbol: "INJ_USDT", Timeframe: TF5m},
		OpenTime: time.Date(2024, 3, 1, 12, 5, 0, 0, time.UTC).UnixMilli(),
		Price:    24.123456,
		WaveTrend: WaveTrend{
			WT1:        61.1234567,
			WT2:        58.7654321,
			Overbought: true, OverboughtStrong: true,
			CrossOver: true,
		},
		RSI:      71.456,
		RSIValid: true,
		Trend: TrendContext{
			SMA50: 23.5, SMA200: 21.0,
			DistToSMA50: 2.6530, DistToSMA200: 14.8736,
			PriceAboveSMA50: true, PriceAboveSMA200: true, SMA50AboveSMA200: true,
		},
		TrendValid: true,
	}

	msg := NewMessage(snap, 2, 6)
	if msg.Type != "indicators" {
		t.Fatalf("type = %q", msg.Type)
	}
	if msg.Timestamp != "2024-03-01T12:05:00Z" {
		t.Fatalf("timestamp = %q", msg.Timestamp)
	}
	if msg.Price != 24.12 {
		t.Fatalf("price = %v", msg.Price)
	}
	if msg.WT1 != 61.123457 {
		t.Fatalf("wt1 = %v", msg.WT1)
	}
	if msg.RSI != 71.46 {
		t.Fatalf("rsi = %v", msg.RSI)
	}
	if !msg.Signals.Overbought || !msg.Signals.CrossOver {
		t.Fatal("signal flags lost in flattening")
	}
	if msg.Distances.DistanceToSMA50 != 2.65 {
		t.Fatalf("dist50 = %v", msg.Distances.DistanceToSMA50)
	}
}

func TestMessageWireKeys(t *testing.T) {
	data, err := json.Marshal(NewMessage(Snapshot{Key: SeriesKey{Symbol: "X", Timeframe: TF1m}}, 2, 6))
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"type", "symbol", "timeframe", "timestamp", "price", "wt1", "wt2", "rsi", "sma50", "sma200", "signals", "distances"} {
		if _, ok := m[key]; !ok {
			t.Errorf("missing top-level key %q", key)
		}
	}
	signals, ok := m["signals"].(map[string]any)
	if !ok {
		t.Fatal("signals is not an object")
	}
	for _, key := range []string{"cross_over", "cross_under", "overbought", "oversold",
		"price_above_sma50", "price_above_sma200", "sma50_above_sma200",
		"bullish_divergence", "hidden_bullish_divergence", "bearish_divergence", "hidden_bearish_divergence"} {
		if _, ok := signals[key]; !ok {
			t.Errorf("missing signal key %q", key)
		}
	}
}

func TestRound(t *testing.T) {
	if got := Round(1.23456, 2); got != 1.23 {
		t.Fatalf("Round(1.23456, 2) = %v", got)
	}
	if got := Round(-1.25, 1); got != -1.3 {
		t.Fatalf("Round(-1.25, 1) = %v", got)
	}
}
