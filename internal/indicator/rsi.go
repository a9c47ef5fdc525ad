package indicator

import "github.com/yomariano/futurezxyback/internal/model"

// DefaultRSIPeriod is Wilder's classic 14.
const DefaultRSIPeriod = 14

// ComputeRSI returns Wilder's smoothed RSI at the newest bar. The first
// value is seeded from a simple average of the first period gains/losses;
// later bars use the period-weighted recursion. Needs period+1 bars, else
// ErrInsufficientHistory.
func ComputeRSI(candles []model.Candle, period int) (float64, error) {
	if len(candles) < period+1 {
		return 0, ErrInsufficientHistory
	}

	closes := closesChrono(candles)
	p := float64(period)

	var avgGain, avgLoss float64
	for i := 1; i < len(closes); i++ {
		gain, loss := delta(closes[i], closes[i-1])
		if i <= period {
			avgGain += gain
			avgLoss += loss
			if i == period {
				avgGain /= p
				avgLoss /= p
			}
			continue
		}
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
	}

	rsi := rsiFromAverages(avgGain, avgLoss)
	if !finite(rsi) {
		return 0, ErrComputation
	}
	return rsi, nil
}

// rsiSeries computes per-bar RSI values over chronological closes for the
// divergence detector. Unlike ComputeRSI it defines a warm-up value from the
// second bar onward (simple averages of the deltas seen so far, switching to
// the Wilder recursion once the seed window completes), so that short series
// are still evaluable at their pivots. Index 0 has no delta; valid[0] is
// false.
func rsiSeries(closes []float64, period int) (values []float64, valid []bool) {
	n := len(closes)
	values = make([]float64, n)
	valid = make([]bool, n)
	if n < 2 {
		return values, valid
	}

	p := float64(period)
	var sumGain, sumLoss, avgGain, avgLoss float64
	for i := 1; i < n; i++ {
		gain, loss := delta(closes[i], closes[i-1])
		if i <= period {
			sumGain += gain
			sumLoss += loss
			avgGain = sumGain / float64(i)
			avgLoss = sumLoss / float64(i)
			if i == period {
				// Wilder seed: simple average over the full window.
				avgGain = sumGain / p
				avgLoss = sumLoss / p
			}
		} else {
			avgGain = (avgGain*(p-1) + gain) / p
			avgLoss = (avgLoss*(p-1) + loss) / p
		}
		values[i] = rsiFromAverages(avgGain, avgLoss)
		valid[i] = true
	}
	return values, valid
}

func delta(cur, prev float64) (gain, loss float64) {
	d := cur - prev
	if d > 0 {
		return d, 0
	}
	return 0, -d
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
