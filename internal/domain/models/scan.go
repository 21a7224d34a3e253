package models

import "time"

// ScanParams are the inputs of one strategy scan.
// MinDTE and MaxDTE are accepted and carried but no calculation consults them yet.
type ScanParams struct {
	Ticker        string
	RiskProfile   string
	MinDTE        int
	MaxDTE        int
	MaxStrategies int
}

// ScanResult holds the quote used for pricing (nil when none was available)
// and the ranked recommendations.
type ScanResult struct {
	Ticker     string
	Quote      *Quote
	Strategies []Recommendation
}

// ScanEvent is the summary of a scan published to the event bus and archived.
type ScanEvent struct {
	EventID       string    `json:"event_id"`
	Ticker        string    `json:"ticker"`
	RiskProfile   string    `json:"risk_profile"`
	MinDTE        int       `json:"min_dte"`
	MaxDTE        int       `json:"max_dte"`
	MaxStrategies int       `json:"max_strategies"`
	Price         float64   `json:"price"`
	QuoteSource   string    `json:"quote_source"`
	Count         int       `json:"count"`
	TopStrategy   string    `json:"top_strategy"`
	TopConfidence float64   `json:"top_confidence"`
	Timestamp     time.Time `json:"timestamp"`
}
