package model

import "time"

// OHLCV represents a single daily candlestick bar as returned by a history source.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PricePoint is one daily close.
type PricePoint struct {
	Date  time.Time
	Close float64
}

// PriceSeries holds the chronological daily closes for one symbol.
type PriceSeries struct {
	Symbol string
	Points []PricePoint
}

// NewPriceSeries builds a series from bars that are already in chronological order.
func NewPriceSeries(symbol string, bars []OHLCV) PriceSeries {
	points := make([]PricePoint, len(bars))
	for i, b := range bars {
		points[i] = PricePoint{Date: b.Time, Close: b.Close}
	}
	return PriceSeries{Symbol: symbol, Points: points}
}

// Len returns the number of observations.
func (s PriceSeries) Len() int { return len(s.Points) }

// Closes returns a copy of the close prices.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}
