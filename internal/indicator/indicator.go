// Package indicator computes technical-analysis signals over candle series.
//
// Every entry point takes a series in the store's newest-first order and
// evaluates it chronologically. Computations are pure functions of the
// series; "not enough bars" is an explicit ErrInsufficientHistory result,
// never a silently-returned zero.
package indicator

import (
	"errors"

	"github.com/yomariano/futurezxyback/internal/model"
)

// ErrInsufficientHistory reports that a computation needs more bars than the
// series holds. Callers substitute a neutral default; they must not read a
// zero result as a computed value.
var ErrInsufficientHistory = errors.New("indicator: insufficient history")

// ErrComputation reports a numeric failure (NaN/Inf) inside an indicator.
// The failing module's contribution is dropped; the rest of the snapshot
// still publishes.
var ErrComputation = errors.New("indicator: computation produced non-finite value")

// closesChrono extracts close prices oldest-to-newest from a newest-first
// series.
func closesChrono(candles []model.Candle) []float64 {
	n := len(candles)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = candles[n-1-i].Close
	}
	return out
}
