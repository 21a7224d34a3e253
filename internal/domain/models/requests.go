package models

import (
	"strings"

	"OptionStrat/pkg/util"
)

// Requests for strategy HTTP endpoints. Defined in domain for reuse by the REST and websocket handlers.

const (
	DefaultMinDTE = 30
	DefaultMaxDTE = 45
)

// ScanRequest is the body of POST /api/scan. An empty RiskProfile or a zero
// MaxStrategies is filled from the service configuration. MinDTE and MaxDTE
// are pointers so an explicit 0 is rejected instead of defaulted.
type ScanRequest struct {
	Ticker        string `json:"ticker" validate:"required,min=1,max=10"`
	RiskProfile   string `json:"risk_profile"`
	MinDTE        *int   `json:"min_dte" default:"30" validate:"required,gte=1,lte=365"`
	MaxDTE        *int   `json:"max_dte" default:"45" validate:"required,gte=1,lte=365"`
	MaxStrategies int    `json:"max_strategies" validate:"omitempty,gte=1,lte=20"`
}

// Normalize trims and uppercases the ticker.
func (r *ScanRequest) Normalize() {
	r.Ticker = util.NormalizeTicker(r.Ticker)
	r.RiskProfile = strings.TrimSpace(r.RiskProfile)
}

// Params converts the request into engine inputs.
func (r *ScanRequest) Params() ScanParams {
	return ScanParams{
		Ticker:        r.Ticker,
		RiskProfile:   r.RiskProfile,
		MinDTE:        intOr(r.MinDTE, DefaultMinDTE),
		MaxDTE:        intOr(r.MaxDTE, DefaultMaxDTE),
		MaxStrategies: r.MaxStrategies,
	}
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

type QuoteRequest struct {
	Ticker string `param:"ticker" validate:"required,min=1,max=10"`
}

func (r *QuoteRequest) Normalize() {
	r.Ticker = util.NormalizeTicker(r.Ticker)
}

// HistoryRequest filters archived scans. From and To accept RFC3339 or unix
// seconds; empty values select the last 24 hours.
type HistoryRequest struct {
	Ticker string `query:"ticker" validate:"omitempty,max=10"`
	From   string `query:"from"`
	To     string `query:"to"`
	Limit  int    `query:"limit" default:"100" validate:"gte=1,lte=1000"`
}

func (r *HistoryRequest) Normalize() {
	r.Ticker = util.NormalizeTicker(r.Ticker)
}

type StrategyDetailRequest struct {
	ID string `param:"id" validate:"required"`
}
