package model

import (
	"math"
	"time"
)

// Signals is the boolean block of the broadcast message.
type Signals struct {
	CrossOver               bool `json:"cross_over"`
	CrossUnder              bool `json:"cross_under"`
	Overbought              bool `json:"overbought"`
	Oversold                bool `json:"oversold"`
	PriceAboveSMA50         bool `json:"price_above_sma50"`
	PriceAboveSMA200        bool `json:"price_above_sma200"`
	SMA50AboveSMA200        bool `json:"sma50_above_sma200"`
	BullishDivergence       bool `json:"bullish_divergence"`
	HiddenBullishDivergence bool `json:"hidden_bullish_divergence"`
	BearishDivergence       bool `json:"bearish_divergence"`
	HiddenBearishDivergence bool `json:"hidden_bearish_divergence"`
}

// Distances carries the signed percentage distances to each SMA.
type Distances struct {
	DistanceToSMA50  float64 `json:"distance_to_sma50"`
	DistanceToSMA200 float64 `json:"distance_to_sma200"`
}

// Message is the outbound broadcast payload, one per recomputation.
// Numeric fields are rounded before transmission: price, RSI, SMAs and
// distances to pricePrec decimals, oscillator values to oscPrec decimals.
type Message struct {
	Type      string    `json:"type"`
	Symbol    string    `json:"symbol"`
	Timeframe string    `json:"timeframe"`
	Timestamp string    `json:"timestamp"`
	Price     float64   `json:"price"`
	WT1       float64   `json:"wt1"`
	WT2       float64   `json:"wt2"`
	RSI       float64   `json:"rsi"`
	SMA50     float64   `json:"sma50"`
	SMA200    float64   `json:"sma200"`
	Signals   Signals   `json:"signals"`
	Distances Distances `json:"distances"`
}

// NewMessage flattens a snapshot into the wire shape. Invalid RSI/trend
// modules publish as zeros with their signal booleans false (neutral
// defaults per the snapshot contract). The published overbought/oversold
// booleans use the level-2 thresholds, which the strong level-1 flags imply.
func NewMessage(s Snapshot, pricePrec, oscPrec int) Message {
	return Message{
		Type:      "indicators",
		Symbol:    s.Key.Symbol,
		Timeframe: string(s.Key.Timeframe),
		Timestamp: time.UnixMilli(s.OpenTime).UTC().Format(time.RFC3339),
		Price:     Round(s.Price, pricePrec),
		WT1:       Round(s.WaveTrend.WT1, oscPrec),
		WT2:       Round(s.WaveTrend.WT2, oscPrec),
		RSI:       Round(s.RSI, pricePrec),
		SMA50:     Round(s.Trend.SMA50, pricePrec),
		SMA200:    Round(s.Trend.SMA200, pricePrec),
		Signals: Signals{
			CrossOver:               s.WaveTrend.CrossOver,
			CrossUnder:              s.WaveTrend.CrossUnder,
			Overbought:              s.WaveTrend.Overbought,
			Oversold:                s.WaveTrend.Oversold,
			PriceAboveSMA50:         s.Trend.PriceAboveSMA50,
			PriceAboveSMA200:        s.Trend.PriceAboveSMA200,
			SMA50AboveSMA200:        s.Trend.SMA50AboveSMA200,
			BullishDivergence:       s.Divergences.Bullish,
			HiddenBullishDivergence: s.Divergences.HiddenBullish,
			BearishDivergence:       s.Divergences.Bearish,
			HiddenBearishDivergence: s.Divergences.HiddenBearish,
		},
		Distances: Distances{
			DistanceToSMA50:  Round(s.Trend.DistToSMA50, pricePrec),
			DistanceToSMA200: Round(s.Trend.DistToSMA200, pricePrec),
		},
	}
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
