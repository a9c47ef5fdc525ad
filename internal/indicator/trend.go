package indicator

import "github.com/yomariano/futurezxyback/internal/model"

const (
	DefaultShortSMA = 50
	DefaultLongSMA  = 200

	// Percentage bands around an SMA. Touch is the tight band used for
	// cross-in-progress detection, near is the wide approach band.
	touchBandPct = 0.1
	nearBandPct  = 3.0
)

// ComputeTrend evaluates the moving-average context at the newest bar: the
// short and long SMAs over closes, which side of each the price sits on, and
// the touch/near proximity flags. Needs at least long bars, else
// ErrInsufficientHistory.
//
// Touch direction comes from where the previous bar's close sat relative to
// the previous bar's SMA, so a bar landing inside the band still reports
// which side it arrived from. Near direction uses the current side.
func ComputeTrend(candles []model.Candle, short, long int) (model.TrendContext, error) {
	n := len(candles)
	if n < long {
		return model.TrendContext{}, ErrInsufficientHistory
	}

	// Series is newest-first, so the newest window is a prefix.
	sma50 := smaFront(candles, 0, short)
	sma200 := smaFront(candles, 0, long)
	if sma50 == 0 || sma200 == 0 {
		return model.TrendContext{}, ErrComputation
	}

	price := candles[0].Close
	tc := model.TrendContext{
		SMA50:  sma50,
		SMA200: sma200,

		DistToSMA50:  (price - sma50) / sma50 * 100.0,
		DistToSMA200: (price - sma200) / sma200 * 100.0,

		PriceAboveSMA50:  price > sma50,
		PriceAboveSMA200: price > sma200,
		SMA50AboveSMA200: sma50 > sma200,
	}
	if !finite(tc.DistToSMA50) || !finite(tc.DistToSMA200) {
		return model.TrendContext{}, ErrComputation
	}

	if abs(tc.DistToSMA50) <= nearBandPct {
		tc.NearSMA50FromAbove = tc.PriceAboveSMA50
		tc.NearSMA50FromBelow = !tc.PriceAboveSMA50
	}
	if abs(tc.DistToSMA200) <= nearBandPct {
		tc.NearSMA200FromAbove = tc.PriceAboveSMA200
		tc.NearSMA200FromBelow = !tc.PriceAboveSMA200
	}

	// Touch needs a previous bar to know the approach side.
	if n < long+1 {
		return tc, nil
	}
	prevPrice := candles[1].Close
	prevAbove50 := prevPrice > smaFront(candles, 1, short)
	prevAbove200 := prevPrice > smaFront(candles, 1, long)

	if abs(tc.DistToSMA50) <= touchBandPct {
		tc.TouchSMA50FromAbove = prevAbove50
		tc.TouchSMA50FromBelow = !prevAbove50
	}
	if abs(tc.DistToSMA200) <= touchBandPct {
		tc.TouchSMA200FromAbove = prevAbove200
		tc.TouchSMA200FromBelow = !prevAbove200
	}
	return tc, nil
}

// smaFront averages length closes starting at offset in a newest-first
// series. Callers guarantee offset+length <= len(candles).
func smaFront(candles []model.Candle, offset, length int) float64 {
	var sum float64
	for i := offset; i < offset+length; i++ {
		sum += candles[i].Close
	}
	return sum / float64(length)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
