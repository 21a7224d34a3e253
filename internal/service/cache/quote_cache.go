package cache

import (
	"context"
	"encoding/json"
	"time"

	"OptionStrat/internal/domain/models"
	drepo "OptionStrat/internal/domain/repository"
	"OptionStrat/pkg/logger"
)

// QuoteCache decorates a QuoteSource with a TTL cache keyed by ticker.
// Only live provider quotes are stored so a recovered provider is picked up
// as soon as the fallback would otherwise have been served.
type QuoteCache struct {
	next  drepo.QuoteSource
	store BytesCache
	ttl   time.Duration
	log   *logger.Logger
}

func NewQuoteCache(next drepo.QuoteSource, store BytesCache, ttl time.Duration, l *logger.Logger) *QuoteCache {
	if l == nil {
		l = logger.Nop()
	}
	return &QuoteCache{next: next, store: store, ttl: ttl, log: l}
}

func quoteKey(ticker string) string { return "quote:" + ticker }

func (c *QuoteCache) Quote(ctx context.Context, ticker string) (*models.Quote, error) {
	key := quoteKey(ticker)
	if b, ok, err := c.store.GetBytes(ctx, key); err != nil {
		c.log.Warn("quote cache read failed", logger.String("ticker", ticker), logger.Error(err))
	} else if ok {
		var q models.Quote
		if err := json.Unmarshal(b, &q); err == nil {
			return &q, nil
		}
	}

	q, err := c.next.Quote(ctx, ticker)
	if err != nil || !q.Usable() || q.Source != models.SourcePolygon {
		return q, err
	}

	if b, err := json.Marshal(q); err == nil {
		if err := c.store.SetBytes(ctx, key, b, c.ttl); err != nil {
			c.log.Warn("quote cache write failed", logger.String("ticker", ticker), logger.Error(err))
		}
	}
	return q, nil
}

var _ drepo.QuoteSource = (*QuoteCache)(nil)
