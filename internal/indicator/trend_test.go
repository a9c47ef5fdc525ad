package indicator

import (
	"errors"
	"math"
	"testing"
)

func TestTrendInsufficientHistory(t *testing.T) {
	closes := make([]float64, DefaultLongSMA-1)
	for i := range closes {
		closes[i] = 100
	}
	_, err := ComputeTrend(bars(closes), DefaultShortSMA, DefaultLongSMA)
	if !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("err = %v", err)
	}
}

func TestTrendRisingSeries(t *testing.T) {
	closes := make([]float64, 250)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	tc, err := ComputeTrend(bars(closes), DefaultShortSMA, DefaultLongSMA)
	if err != nil {
		t.Fatal(err)
	}

	// Newest 50 closes are 300..349, newest 200 are 150..349.
	if math.Abs(tc.SMA50-324.5) > 1e-9 {
		t.Fatalf("sma50 = %v, want 324.5", tc.SMA50)
	}
	if math.Abs(tc.SMA200-249.5) > 1e-9 {
		t.Fatalf("sma200 = %v, want 249.5", tc.SMA200)
	}
	if !tc.PriceAboveSMA50 || !tc.PriceAboveSMA200 || !tc.SMA50AboveSMA200 {
		t.Fatalf("relation flags wrong: %+v", tc)
	}
	if tc.DistToSMA50 <= 0 || tc.DistToSMA200 <= tc.DistToSMA50 {
		t.Fatalf("distances wrong: %v / %v", tc.DistToSMA50, tc.DistToSMA200)
	}
	// Price sits ~7.5% over the short average, outside both bands.
	if tc.NearSMA50FromAbove || tc.TouchSMA50FromAbove {
		t.Fatalf("proximity flags on a runaway series: %+v", tc)
	}
}

func TestTrendTouchDirectionUsesPreviousBar(t *testing.T) {
	// Flat history, previous bar above the average, newest bar back inside
	// the tight band: a touch arriving from above.
	closes := make([]float64, 250)
	for i := range closes {
		closes[i] = 100
	}
	closes[248] = 104
	closes[249] = 100.15

	tc, err := ComputeTrend(bars(closes), DefaultShortSMA, DefaultLongSMA)
	if err != nil {
		t.Fatal(err)
	}
	if !tc.TouchSMA50FromAbove {
		t.Fatalf("touch from above missed: dist=%v %+v", tc.DistToSMA50, tc)
	}
	if tc.TouchSMA50FromBelow {
		t.Fatal("both touch directions set")
	}
	if !tc.NearSMA50FromAbove {
		t.Fatal("a touch is also near")
	}
}

func TestTrendNearFromBelow(t *testing.T) {
	// Flat history with the newest bar 2% under the averages: inside the
	// wide band, outside the tight one.
	closes := make([]float64, 250)
	for i := range closes {
		closes[i] = 100
	}
	closes[249] = 98

	tc, err := ComputeTrend(bars(closes), DefaultShortSMA, DefaultLongSMA)
	if err != nil {
		t.Fatal(err)
	}
	if !tc.NearSMA50FromBelow || !tc.NearSMA200FromBelow {
		t.Fatalf("near-from-below missed: %+v", tc)
	}
	if tc.TouchSMA50FromBelow || tc.TouchSMA200FromBelow {
		t.Fatalf("2%% away flagged as touch: %+v", tc)
	}
	if tc.DistToSMA50 >= 0 {
		t.Fatalf("dist = %v, want negative", tc.DistToSMA50)
	}
}
