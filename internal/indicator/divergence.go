package indicator

import "github.com/yomariano/futurezxyback/internal/model"

const (
	DefaultLookbackLeft  = 5
	DefaultLookbackRight = 5

	// Below this many bars the detector reports nothing at all.
	minDivergenceBars = 20
)

// ComputeDivergences scans the series for RSI pivots and compares each pivot
// with the previous pivot of the same kind:
//
//	regular bullish: price lower low, RSI higher low (at pivot lows)
//	hidden bullish:  price higher low, RSI lower low
//	regular bearish: price higher high, RSI lower high (at pivot highs)
//	hidden bearish:  price lower high, RSI higher high
//
// A bar at chronological position p is a pivot low/high when its RSI is the
// minimum/maximum of the window [p-left, p+right]. Flags report presence
// anywhere in the evaluated range, not only the most recent occurrence.
// Fewer than 20 bars returns all flags false. period is the RSI period the
// pivot series is computed with.
func ComputeDivergences(candles []model.Candle, period, left, right int) model.Divergences {
	var out model.Divergences
	n := len(candles)
	if n < minDivergenceBars {
		return out
	}

	// Chronological views of the newest-first series.
	lows := make([]float64, n)
	highs := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		c := candles[n-1-i]
		lows[i] = c.Low
		highs[i] = c.High
		closes[i] = c.Close
	}

	rsi, valid := rsiSeries(closes, period)

	prevLow, prevHigh := -1, -1
	for p := left; p <= n-1-right; p++ {
		if !windowValid(valid, p-left, p+right) {
			continue
		}
		if isWindowMin(rsi, p, left, right) {
			if prevLow >= 0 {
				if lows[p] < lows[prevLow] && rsi[p] > rsi[prevLow] {
					out.Bullish = true
				}
				if lows[p] > lows[prevLow] && rsi[p] < rsi[prevLow] {
					out.HiddenBullish = true
				}
			}
			prevLow = p
		}
		if isWindowMax(rsi, p, left, right) {
			if prevHigh >= 0 {
				if highs[p] > highs[prevHigh] && rsi[p] < rsi[prevHigh] {
					out.Bearish = true
				}
				if highs[p] < highs[prevHigh] && rsi[p] > rsi[prevHigh] {
					out.HiddenBearish = true
				}
			}
			prevHigh = p
		}
	}
	return out
}

func windowValid(valid []bool, from, to int) bool {
	for i := from; i <= to; i++ {
		if !valid[i] {
			return false
		}
	}
	return true
}

func isWindowMin(rsi []float64, p, left, right int) bool {
	for i := p - left; i <= p+right; i++ {
		if rsi[i] < rsi[p] {
			return false
		}
	}
	return true
}

func isWindowMax(rsi []float64, p, left, right int) bool {
	for i := p - left; i <= p+right; i++ {
		if rsi[i] > rsi[p] {
			return false
		}
	}
	return true
}
