package types

import "time"

// PriceBar is a single daily price observation for one instrument.
type PriceBar struct {
	Time   time.Time
	Ticker string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries is an ordered-by-date sequence of observations for one
// instrument. The dates present are the provider's trading calendar; no
// fixed-calendar gaps are assumed.
type PriceSeries []PriceBar

// Sorted reports whether the series is strictly ascending by time.
func (s PriceSeries) Sorted() bool {
	for i := 1; i < len(s); i++ {
		if !s[i-1].Time.Before(s[i].Time) {
			return false
		}
	}

	return true
}

// Closes returns the close prices in series order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, bar := range s {
		closes[i] = bar.Close
	}

	return closes
}
