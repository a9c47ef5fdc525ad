package model

import "encoding/json"

// Candle is one OHLC bar. OpenTime is milliseconds since epoch, floored to
// the timeframe boundary. Invariant: Low <= min(Open,Close) and
// max(Open,Close) <= High.
type Candle struct {
	OpenTime int64   `json:"open_time"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Volume   float64 `json:"volume"`
}

// JSON returns the JSON-encoded candle (ignoring errors for hot-path usage).
func (c *Candle) JSON() []byte {
	b, _ := json.Marshal(c)
	return b
}

// SeriesKey identifies one candle series.
type SeriesKey struct {
	Symbol    string
	Timeframe Timeframe
}

// String returns "symbol:timeframe", the key format used in logs and
// mirror channel names.
func (k SeriesKey) String() string {
	return k.Symbol + ":" + string(k.Timeframe)
}

// Envelope pairs an encoded broadcast message with the series it belongs to.
type Envelope struct {
	Key     SeriesKey
	Payload []byte
}
