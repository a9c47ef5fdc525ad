package model

// WaveTrend holds the oscillator values evaluated at the newest bar of a
// series, plus the threshold and crossover flags derived from them.
// Level-1 thresholds (60/-60) are the stronger, more extreme levels; a bar
// that clears level 1 also clears level 2 numerically.
type WaveTrend struct {
	AP  float64
	ESA float64
	D   float64
	CI  float64
	WT1 float64
	WT2 float64

	OverboughtStrong bool // wt1 >= 60
	Overbought       bool // wt1 >= 53
	OversoldStrong   bool // wt1 <= -60
	Oversold         bool // wt1 <= -53

	CrossOver  bool // wt1 crossed above wt2 on this bar
	CrossUnder bool // wt1 crossed below wt2 on this bar
}

// Divergences reports whether any evaluated pivot pair in the series shows
// the given price/RSI disagreement. Presence, not count.
type Divergences struct {
	Bullish       bool
	HiddenBullish bool
	Bearish       bool
	HiddenBearish bool
}

// TrendContext carries the SMA trend module: the averages, the relation
// booleans, proximity flags, and signed percentage distances from the
// current close to each average.
type TrendContext struct {
	SMA50  float64
	SMA200 float64

	DistToSMA50  float64 // (close - sma50) / sma50 * 100
	DistToSMA200 float64

	PriceAboveSMA50  bool
	PriceAboveSMA200 bool
	SMA50AboveSMA200 bool

	// Touch fires inside a 0.1% band; direction comes from the previous
	// bar's side of the average (a cross in progress).
	TouchSMA50FromAbove  bool
	TouchSMA50FromBelow  bool
	TouchSMA200FromAbove bool
	TouchSMA200FromBelow bool

	// Near uses a wider 3% band; direction comes from the current bar's side.
	NearSMA50FromAbove  bool
	NearSMA50FromBelow  bool
	NearSMA200FromAbove bool
	NearSMA200FromBelow bool
}

// Snapshot is the complete indicator state derived from one series, attached
// to its newest bar. It is recomputed in full on every mutation; fields are
// never patched individually across unrelated computations.
//
// RSIValid and TrendValid report whether those modules had enough history.
// When false the corresponding values are neutral defaults, not computed
// zeros, and must not feed decision logic.
type Snapshot struct {
	Key      SeriesKey
	OpenTime int64
	Price    float64

	WaveTrend WaveTrend

	RSI      float64
	RSIValid bool

	Divergences Divergences

	Trend      TrendContext
	TrendValid bool
}
