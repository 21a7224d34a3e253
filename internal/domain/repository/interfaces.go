package repository

import (
	"context"
	"time"

	"OptionStrat/internal/domain/models"
)

// QuoteSource resolves a ticker to a current price quote.
type QuoteSource interface {
	Quote(ctx context.Context, ticker string) (*models.Quote, error)
}

// ScanPublisher emits scan summaries to the event bus.
type ScanPublisher interface {
	Publish(ctx context.Context, e *models.ScanEvent) error
	Close() error
}

// ScanStore archives scan summaries.
type ScanStore interface {
	Store(ctx context.Context, e *models.ScanEvent) error
	Query(ctx context.Context, ticker string, from, to time.Time, limit int) ([]*models.ScanEvent, error)
	Health(ctx context.Context) error
	Close() error
}

type Metrics interface {
	RecordScan(profile, outcome string, strategies int)
	RecordQuote(source string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
