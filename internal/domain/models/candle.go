package models

import "time"

// Candle represents one OHLC record of a price history window.
// Histories are ordered ascending by Bucket.
type Candle struct {
	Bucket time.Time
	Symbol string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}
