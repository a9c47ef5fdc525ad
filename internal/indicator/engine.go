package indicator

import (
	"errors"
	"fmt"
	"log"

	"github.com/yomariano/futurezxyback/internal/model"
)

// Engine bundles the indicator parameters so the aggregator carries one
// value instead of seven numbers. Zero values are not usable; construct
// with NewEngine and override fields as needed.
type Engine struct {
	ChannelLen    int
	AverageLen    int
	RSIPeriod     int
	LookbackLeft  int
	LookbackRight int
	ShortSMA      int
	LongSMA       int
}

// NewEngine returns an Engine with the standard parameters.
func NewEngine() *Engine {
	return &Engine{
		ChannelLen:    DefaultChannelLen,
		AverageLen:    DefaultAverageLen,
		RSIPeriod:     DefaultRSIPeriod,
		LookbackLeft:  DefaultLookbackLeft,
		LookbackRight: DefaultLookbackRight,
		ShortSMA:      DefaultShortSMA,
		LongSMA:       DefaultLongSMA,
	}
}

// Compute derives the full snapshot for a series. WaveTrend is the gating
// module: if it cannot be computed the whole snapshot fails. RSI and trend
// degrade independently to neutral defaults with their Valid flag false,
// and divergences degrade to all-false, so a young series still publishes
// its oscillator state.
func (e *Engine) Compute(key model.SeriesKey, candles []model.Candle) (model.Snapshot, error) {
	if len(candles) == 0 {
		return model.Snapshot{}, ErrInsufficientHistory
	}

	wt, err := ComputeWaveTrend(candles, e.ChannelLen, e.AverageLen)
	if err != nil {
		if errors.Is(err, ErrInsufficientHistory) {
			return model.Snapshot{}, err
		}
		return model.Snapshot{}, fmt.Errorf("wavetrend %s: %w", key, err)
	}

	s := model.Snapshot{
		Key:       key,
		OpenTime:  candles[0].OpenTime,
		Price:     candles[0].Close,
		WaveTrend: wt,
	}

	if rsi, err := ComputeRSI(candles, e.RSIPeriod); err == nil {
		s.RSI = rsi
		s.RSIValid = true
	} else if !errors.Is(err, ErrInsufficientHistory) {
		log.Printf("[indicator] rsi %s: %v, omitting from snapshot", key, err)
	}

	s.Divergences = ComputeDivergences(candles, e.RSIPeriod, e.LookbackLeft, e.LookbackRight)

	if tc, err := ComputeTrend(candles, e.ShortSMA, e.LongSMA); err == nil {
		s.Trend = tc
		s.TrendValid = true
	} else if !errors.Is(err, ErrInsufficientHistory) {
		log.Printf("[indicator] trend %s: %v, omitting from snapshot", key, err)
	}

	return s, nil
}
