package models

import (
	"math"
	"time"
)

// Quote sources.
const (
	SourcePolygon  = "polygon"
	SourceFallback = "fallback"
)

// Quote is a current price snapshot for an underlying.
type Quote struct {
	Ticker    string    `json:"ticker"`
	Price     float64   `json:"price"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Open      float64   `json:"open"`
	Volume    float64   `json:"volume"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}

// Usable reports whether the quote can be priced against.
func (q *Quote) Usable() bool {
	return q != nil && q.Price > 0 && !math.IsInf(q.Price, 1)
}
