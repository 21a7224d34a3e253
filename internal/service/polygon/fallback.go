package polygon

import (
	"time"

	"OptionStrat/internal/domain/models"
)

// DefaultFallbackPrice is used for tickers missing from the table.
const DefaultFallbackPrice = 150.0

var fallbackPrices = map[string]float64{
	"AAPL":  175.50,
	"MSFT":  378.25,
	"GOOGL": 142.75,
	"TSLA":  248.90,
	"SPY":   443.20,
	"QQQ":   376.85,
	"IWM":   192.30,
	"NVDA":  498.75,
}

// Fallback builds the deterministic demo quote for ticker.
// Output depends only on ticker, apart from the timestamp.
func Fallback(ticker string, at time.Time) *models.Quote {
	base, ok := fallbackPrices[ticker]
	if !ok {
		base = DefaultFallbackPrice
	}
	return &models.Quote{
		Ticker:    ticker,
		Price:     base,
		High:      base * 1.02,
		Low:       base * 0.98,
		Open:      base * 1.001,
		Volume:    1_000_000,
		Timestamp: at,
		Source:    models.SourceFallback,
	}
}
