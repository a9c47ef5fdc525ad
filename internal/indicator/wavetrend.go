package indicator

import (
	"math"

	"github.com/yomariano/futurezxyback/internal/model"
)

// WaveTrend parameters and thresholds. Level 1 is the stronger threshold;
// callers reporting a single state check level 1 first.
const (
	DefaultChannelLen = 10 // n1, smoothing span for esa and d
	DefaultAverageLen = 21 // n2, smoothing span for wt1

	OverboughtLevel1 = 60.0
	OverboughtLevel2 = 53.0
	OversoldLevel1   = -60.0
	OversoldLevel2   = -53.0

	wt2Window = 4

	// Replaces a zero deviation before division.
	deviationEpsilon = 1e-5
)

// ComputeWaveTrend evaluates the oscillator over the series and returns the
// values at the newest bar. The series must hold at least max(n1, n2, 4)
// bars, else ErrInsufficientHistory.
//
// The walk is chronological: ap = hlc3 per bar, esa = EMA(ap, n1),
// d = EMA(|ap-esa|, n1), ci = (ap-esa)/(0.015*d), wt1 = EMA(ci, n2),
// wt2 = SMA(wt1, 4). Crossovers compare the newest bar against the previous
// one.
func ComputeWaveTrend(candles []model.Candle, n1, n2 int) (model.WaveTrend, error) {
	need := n1
	if n2 > need {
		need = n2
	}
	if wt2Window > need {
		need = wt2Window
	}
	n := len(candles)
	if n < need {
		return model.WaveTrend{}, ErrInsufficientHistory
	}

	alpha1 := 2.0 / (float64(n1) + 1.0)
	alpha2 := 2.0 / (float64(n2) + 1.0)

	wt1 := make([]float64, n)
	var esa, d, lastAP, lastCI float64
	for i := 0; i < n; i++ {
		c := candles[n-1-i]
		ap := (c.High + c.Low + c.Close) / 3.0
		if i == 0 {
			esa = ap
		} else {
			esa = alpha1*ap + (1.0-alpha1)*esa
		}

		dev := math.Abs(ap - esa)
		if i == 0 {
			d = dev
		} else {
			d = alpha1*dev + (1.0-alpha1)*d
		}

		div := d
		if div == 0 {
			div = deviationEpsilon
		}
		ci := (ap - esa) / (0.015 * div)

		if i == 0 {
			wt1[i] = ci
		} else {
			wt1[i] = alpha2*ci + (1.0-alpha2)*wt1[i-1]
		}

		lastAP, lastCI = ap, ci
	}

	wt2At := func(i int) float64 {
		return (wt1[i] + wt1[i-1] + wt1[i-2] + wt1[i-3]) / float64(wt2Window)
	}

	cur := n - 1
	curWT1 := wt1[cur]
	curWT2 := wt2At(cur)

	wt := model.WaveTrend{
		AP:  lastAP,
		ESA: esa,
		D:   d,
		CI:  lastCI,
		WT1: curWT1,
		WT2: curWT2,

		OverboughtStrong: curWT1 >= OverboughtLevel1,
		Overbought:       curWT1 >= OverboughtLevel2,
		OversoldStrong:   curWT1 <= OversoldLevel1,
		Oversold:         curWT1 <= OversoldLevel2,
	}

	// Cross detection needs a previous bar with a defined wt2.
	if prev := cur - 1; prev >= wt2Window-1 {
		prevWT1 := wt1[prev]
		prevWT2 := wt2At(prev)
		wt.CrossOver = curWT1 > curWT2 && prevWT1 <= prevWT2
		wt.CrossUnder = curWT1 < curWT2 && prevWT1 >= prevWT2
	}

	if !finite(wt.WT1) || !finite(wt.WT2) {
		return model.WaveTrend{}, ErrComputation
	}
	return wt, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
