package usecase

import (
	"context"
	"errors"
	"time"

	"OptionStrat/internal/domain/models"
	domrepo "OptionStrat/internal/domain/repository"
	domsvc "OptionStrat/internal/domain/service"
	"OptionStrat/internal/services/strategy"
	"OptionStrat/pkg/logger"

	"github.com/google/uuid"
)

// Scan outcomes recorded in metrics.
const (
	OutcomeOK           = "ok"
	OutcomeNoQuote      = "no_quote"
	OutcomeNoStrategies = "no_strategies"
)

var (
	ErrStrategyNotFound = errors.New("strategy not found")
	ErrQuoteNotFound    = errors.New("stock data not found")
	ErrHistoryDisabled  = errors.New("scan history is not enabled")
)

// StrategyDetail describes one catalog template for a ticker, priced at the
// current quote when one is available.
type StrategyDetail struct {
	ID           string                  `json:"id"`
	Ticker       string                  `json:"ticker"`
	Template     models.StrategyTemplate `json:"template"`
	CurrentPrice float64                 `json:"currentPrice,omitempty"`
	Metrics      *models.Recommendation  `json:"-"`
}

// ScanService is the application entry point for strategy scans.
type ScanService struct {
	scanner   domsvc.Scanner
	catalog   domsvc.Catalog
	quotes    domrepo.QuoteSource
	publisher domrepo.ScanPublisher
	history   domrepo.ScanStore
	metrics   domrepo.Metrics
	log       *logger.Logger

	defaultProfile string
	newID          func() string
	now            func() time.Time
}

// ScanServiceOption configures ScanService.
type ScanServiceOption func(*ScanService)

// WithPublisher sets the scan event publisher.
func WithPublisher(p domrepo.ScanPublisher) ScanServiceOption {
	return func(s *ScanService) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithHistory enables scan history queries.
func WithHistory(h domrepo.ScanStore) ScanServiceOption {
	return func(s *ScanService) { s.history = h }
}

// WithDefaultRiskProfile sets the profile used when a request names none.
func WithDefaultRiskProfile(p string) ScanServiceOption {
	return func(s *ScanService) {
		if p != "" {
			s.defaultProfile = p
		}
	}
}

func NewScanService(
	scanner domsvc.Scanner,
	catalog domsvc.Catalog,
	quotes domrepo.QuoteSource,
	metrics domrepo.Metrics,
	l *logger.Logger,
	opts ...ScanServiceOption,
) *ScanService {
	s := &ScanService{
		scanner:        scanner,
		catalog:        catalog,
		quotes:         quotes,
		publisher:      noopPublisher{},
		metrics:        metrics,
		log:            l,
		defaultProfile: strategy.ModerateAggressive,
		newID:          uuid.NewString,
		now:            func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultRiskProfile returns the profile applied to requests without one.
func (s *ScanService) DefaultRiskProfile() string { return s.defaultProfile }

// Scan runs the engine, records the outcome and publishes a scan event.
func (s *ScanService) Scan(ctx context.Context, p models.ScanParams) models.ScanResult {
	if p.RiskProfile == "" {
		p.RiskProfile = s.defaultProfile
	}

	start := time.Now()
	res := s.scanner.Scan(ctx, p)
	s.metrics.RecordLatency("scan", time.Since(start).Seconds())

	outcome := OutcomeOK
	switch {
	case res.Quote == nil:
		outcome = OutcomeNoQuote
	case len(res.Strategies) == 0:
		outcome = OutcomeNoStrategies
	}
	s.metrics.RecordScan(strategy.ProfileLabel(p.RiskProfile), outcome, len(res.Strategies))

	s.log.Info("strategy scan",
		logger.String("ticker", p.Ticker),
		logger.String("risk_profile", p.RiskProfile),
		logger.String("outcome", outcome),
		logger.Int("strategies", len(res.Strategies)),
	)

	if res.Quote != nil {
		s.publish(ctx, p, res)
	}
	return res
}

func (s *ScanService) publish(ctx context.Context, p models.ScanParams, res models.ScanResult) {
	e := &models.ScanEvent{
		EventID:       s.newID(),
		Ticker:        res.Ticker,
		RiskProfile:   p.RiskProfile,
		MinDTE:        p.MinDTE,
		MaxDTE:        p.MaxDTE,
		MaxStrategies: p.MaxStrategies,
		Price:         res.Quote.Price,
		QuoteSource:   res.Quote.Source,
		Count:         len(res.Strategies),
		Timestamp:     s.now(),
	}
	if len(res.Strategies) > 0 {
		e.TopStrategy = res.Strategies[0].Name
		e.TopConfidence = res.Strategies[0].ConfidenceScore
	}

	if err := s.publisher.Publish(ctx, e); err != nil {
		s.metrics.RecordError("scan_publish")
		s.log.Warn("scan event publish failed",
			logger.String("ticker", e.Ticker),
			logger.String("event_id", e.EventID),
			logger.Error(err),
		)
	}
}

// Quote returns a usable quote for ticker or ErrQuoteNotFound.
func (s *ScanService) Quote(ctx context.Context, ticker string) (*models.Quote, error) {
	q, err := s.quotes.Quote(ctx, ticker)
	if err != nil {
		s.log.Warn("quote lookup failed", logger.String("ticker", ticker), logger.Error(err))
		return nil, ErrQuoteNotFound
	}
	if !q.Usable() {
		return nil, ErrQuoteNotFound
	}
	return q, nil
}

// Strategies returns the template catalog in ranking order.
func (s *ScanService) Strategies() []models.StrategyTemplate {
	return s.catalog.Templates()
}

// StrategyDetail resolves a recommendation id of the form <template_slug>_<TICKER>.
func (s *ScanService) StrategyDetail(ctx context.Context, id string) (*StrategyDetail, error) {
	slug, ticker, ok := strategy.ParseRecommendationID(id)
	if !ok {
		return nil, ErrStrategyNotFound
	}
	t, ok := s.catalog.Lookup(slug)
	if !ok {
		return nil, ErrStrategyNotFound
	}

	d := &StrategyDetail{
		ID:       strategy.RecommendationID(t.Name, ticker),
		Ticker:   ticker,
		Template: t,
	}

	q, err := s.Quote(ctx, ticker)
	if err != nil {
		return d, nil
	}
	m := strategy.Compute(t.Name, q.Price)
	d.CurrentPrice = q.Price
	d.Metrics = &models.Recommendation{
		ID:              d.ID,
		Name:            t.Name,
		Type:            t.Type,
		Complexity:      t.Complexity,
		MaxProfit:       m.MaxProfit,
		MaxLoss:         m.MaxLoss,
		CapitalRequired: m.CapitalRequired,
		Description:     m.Description,
		Ticker:          ticker,
		CurrentPrice:    q.Price,
	}
	return d, nil
}

// History returns archived scan events, newest first.
func (s *ScanService) History(ctx context.Context, ticker string, from, to time.Time, limit int) ([]*models.ScanEvent, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	return s.history.Query(ctx, ticker, from, to, limit)
}

// HistoryHealth pings the scan archive. It returns ErrHistoryDisabled when
// no archive is configured.
func (s *ScanService) HistoryHealth(ctx context.Context) error {
	if s.history == nil {
		return ErrHistoryDisabled
	}
	return s.history.Health(ctx)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, *models.ScanEvent) error { return nil }
func (noopPublisher) Close() error                                    { return nil }
