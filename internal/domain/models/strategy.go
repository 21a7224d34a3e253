package models

import "math"

// StrategyType is the market-direction bias of a template.
type StrategyType string

const (
	Bullish    StrategyType = "bullish"
	Bearish    StrategyType = "bearish"
	Neutral    StrategyType = "neutral"
	Volatility StrategyType = "volatility"
)

// Complexity grades how hard a strategy is to manage.
type Complexity string

const (
	Beginner     Complexity = "beginner"
	Intermediate Complexity = "intermediate"
	Advanced     Complexity = "advanced"
)

// ConfidenceRange bounds the base confidence draw (0-100, inclusive).
type ConfidenceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// StrategyTemplate is a named, fixed options-trading pattern.
type StrategyTemplate struct {
	Name       string          `json:"name"`
	Type       StrategyType    `json:"type"`
	Complexity Complexity      `json:"complexity"`
	Confidence ConfidenceRange `json:"confidence_range"`
}

// Amount is a monetary figure that may be unbounded (unlimited profit or risk).
type Amount struct {
	value     float64
	unbounded bool
}

// Bounded returns a finite amount.
func Bounded(v float64) Amount { return Amount{value: v} }

// Unbounded returns an amount with no finite limit.
func Unbounded() Amount { return Amount{unbounded: true} }

func (a Amount) IsUnbounded() bool { return a.unbounded }

// Value returns the finite amount; zero for unbounded amounts.
func (a Amount) Value() float64 {
	if a.unbounded {
		return 0
	}
	return a.value
}

// UnboundedEstimate is the finite stand-in shown for unlimited P&L: two lots of the underlying.
func UnboundedEstimate(price float64) float64 {
	return price * 2 * 100
}

// Display converts the amount to a finite figure for output.
func (a Amount) Display(price float64) float64 {
	if a.unbounded {
		return UnboundedEstimate(price)
	}
	return a.value
}

// LossDisplay is Display normalized to a non-positive figure.
func (a Amount) LossDisplay(price float64) float64 {
	return -math.Abs(a.Display(price))
}

// Recommendation is one evaluated template for a ticker.
type Recommendation struct {
	ID                  string
	Name                string
	Type                StrategyType
	Complexity          Complexity
	ConfidenceScore     float64
	MaxProfit           Amount
	MaxLoss             Amount
	CapitalRequired     float64
	ProbabilityOfProfit float64
	Description         string
	Ticker              string
	CurrentPrice        float64
}

// MaxProfitValue is the display profit (>= 0).
func (r Recommendation) MaxProfitValue() float64 {
	return math.Abs(r.MaxProfit.Display(r.CurrentPrice))
}

// MaxLossValue is the display loss (<= 0).
func (r Recommendation) MaxLossValue() float64 {
	return r.MaxLoss.LossDisplay(r.CurrentPrice)
}
