package model

import (
	"fmt"
	"time"
)

// Timeframe is a bar duration. The string form is the wire form used in
// broadcast messages and configuration.
type Timeframe string

const (
	TF1m  Timeframe = "1m"
	TF5m  Timeframe = "5m"
	TF15m Timeframe = "15m"
	TF1h  Timeframe = "1h"
	TF4h  Timeframe = "4h"
	TF1d  Timeframe = "1d"
	TF1w  Timeframe = "1w"
)

const (
	minuteMs = 60_000
	dayMs    = 86_400_000
)

var bucketMs = map[Timeframe]int64{
	TF1m:  minuteMs,
	TF5m:  5 * minuteMs,
	TF15m: 15 * minuteMs,
	TF1h:  60 * minuteMs,
	TF4h:  240 * minuteMs,
	TF1d:  dayMs,
	TF1w:  7 * dayMs,
}

// Timeframes lists every supported timeframe in ascending bucket order.
var Timeframes = []Timeframe{TF1m, TF5m, TF15m, TF1h, TF4h, TF1d, TF1w}

// ParseTimeframe validates a timeframe string.
func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(s)
	if _, ok := bucketMs[tf]; !ok {
		return "", fmt.Errorf("unknown timeframe %q", s)
	}
	return tf, nil
}

// BucketMs returns the bucket duration in milliseconds.
func (tf Timeframe) BucketMs() int64 {
	return bucketMs[tf]
}

// Duration returns the bucket duration.
func (tf Timeframe) Duration() time.Duration {
	return time.Duration(tf.BucketMs()) * time.Millisecond
}

// Align floors a millisecond timestamp to the start of the bucket that
// contains it, in UTC calendar semantics. The 4h bucket lands on hours that
// are multiples of 4 and the 1d bucket on UTC midnight (both fall out of
// epoch arithmetic because the epoch is UTC midnight). The 1w bucket floors
// to the most recent Monday 00:00 UTC.
func (tf Timeframe) Align(tsMs int64) int64 {
	if tf == TF1w {
		d := floorDiv(tsMs, dayMs)
		// The epoch day is a Thursday; shift so Monday maps to 0.
		dow := floorMod(d+3, 7)
		return (d - dow) * dayMs
	}
	return tsMs - floorMod(tsMs, tf.BucketMs())
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	r := a % b
	if r < 0 {
		r += b
	}
	return r
}
