package model

// Tick is a single decoded price update from the upstream feed.
// Timestamp is milliseconds since epoch as delivered by the exchange.
type Tick struct {
	Symbol    string  `json:"symbol"`
	Timestamp int64   `json:"timestamp"`
	Price     float64 `json:"price"`
}
