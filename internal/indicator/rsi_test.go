package indicator

import (
	"errors"
	"testing"
)

func TestRSIInsufficientHistory(t *testing.T) {
	closes := make([]float64, DefaultRSIPeriod)
	for i := range closes {
		closes[i] = float64(i)
	}
	_, err := ComputeRSI(bars(closes), DefaultRSIPeriod)
	if !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("err = %v", err)
	}
}

func TestRSIAllGainsIsHundred(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	rsi, err := ComputeRSI(bars(closes), DefaultRSIPeriod)
	if err != nil {
		t.Fatal(err)
	}
	if rsi != 100 {
		t.Fatalf("rsi = %v, want 100", rsi)
	}
}

func TestRSIAllLossesIsZero(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 - float64(i)
	}
	rsi, err := ComputeRSI(bars(closes), DefaultRSIPeriod)
	if err != nil {
		t.Fatal(err)
	}
	if rsi != 0 {
		t.Fatalf("rsi = %v, want 0", rsi)
	}
}

func TestRSIBounded(t *testing.T) {
	closes := []float64{
		44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10, 45.42,
		45.84, 46.08, 45.89, 46.03, 45.61, 46.28, 46.28, 46.00,
		46.03, 46.41, 46.22, 45.64, 46.21, 46.25, 45.71, 46.45,
	}
	rsi, err := ComputeRSI(bars(closes), DefaultRSIPeriod)
	if err != nil {
		t.Fatal(err)
	}
	if rsi <= 0 || rsi >= 100 {
		t.Fatalf("rsi = %v, out of (0, 100)", rsi)
	}
	// Mostly-rising series should sit in the upper half.
	if rsi < 50 {
		t.Fatalf("rsi = %v for a rising series", rsi)
	}
}

func TestRSISeriesWarmup(t *testing.T) {
	closes := []float64{10, 11, 12, 11, 13}
	values, valid := rsiSeries(closes, DefaultRSIPeriod)
	if valid[0] {
		t.Fatal("index 0 has no delta, must be invalid")
	}
	for i := 1; i < len(closes); i++ {
		if !valid[i] {
			t.Fatalf("index %d invalid", i)
		}
		if values[i] < 0 || values[i] > 100 {
			t.Fatalf("rsi[%d] = %v out of range", i, values[i])
		}
	}
	// First two bars are pure gains.
	if values[1] != 100 || values[2] != 100 {
		t.Fatalf("gain-only warmup = %v, %v, want 100", values[1], values[2])
	}
	// The bar-3 loss must pull the value off the ceiling.
	if values[3] >= 100 {
		t.Fatalf("rsi[3] = %v, want < 100", values[3])
	}
}
