package strategy

import (
	"context"
	"fmt"
	"sort"

	"OptionStrat/internal/domain/models"
	domrepo "OptionStrat/internal/domain/repository"
	domsvc "OptionStrat/internal/domain/service"
	xlogger "OptionStrat/pkg/logger"
)

// Engine generates and ranks strategy recommendations for a ticker.
type Engine struct {
	quotes  domrepo.QuoteSource
	catalog *Catalog
	scorer  *Scorer
	logger  *xlogger.Logger
}

// Option configures Engine.
type Option func(*Engine)

// WithRandomSource pins the generator used for confidence draws.
func WithRandomSource(rnd RandomSource) Option {
	return func(e *Engine) {
		e.scorer = NewScorer(rnd)
	}
}

// WithCatalog replaces the built-in catalog.
func WithCatalog(c *Catalog) Option {
	return func(e *Engine) {
		if c != nil {
			e.catalog = c
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *xlogger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine pricing against quotes.
func NewEngine(quotes domrepo.QuoteSource, opts ...Option) *Engine {
	e := &Engine{
		quotes:  quotes,
		catalog: DefaultCatalog(),
		scorer:  NewScorer(nil),
		logger:  xlogger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the engine's template catalog.
func (e *Engine) Catalog() *Catalog { return e.catalog }

// Scan ranks up to p.MaxStrategies templates for p.Ticker.
//
// A missing quote yields an empty result. Faults raised while evaluating
// are logged and also yield no strategies; Scan never panics or errors.
func (e *Engine) Scan(ctx context.Context, p models.ScanParams) (res models.ScanResult) {
	res.Ticker = p.Ticker
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("strategy scan failed",
				xlogger.String("ticker", p.Ticker),
				xlogger.String("operation", "scan"),
				xlogger.Error(fmt.Errorf("panic: %v", r)),
			)
			res.Strategies = nil
		}
	}()

	q, err := e.quotes.Quote(ctx, p.Ticker)
	if err != nil {
		e.logger.Warn("quote unavailable",
			xlogger.String("ticker", p.Ticker),
			xlogger.String("operation", "quote"),
			xlogger.Error(err),
		)
		return res
	}
	if !q.Usable() {
		e.logger.Warn("quote not usable", xlogger.String("ticker", p.Ticker))
		return res
	}
	res.Quote = q

	e.logger.Debug("scanning strategies",
		xlogger.String("ticker", p.Ticker),
		xlogger.String("risk_profile", p.RiskProfile),
		xlogger.Int("min_dte", p.MinDTE),
		xlogger.Int("max_dte", p.MaxDTE),
		xlogger.Int("max_strategies", p.MaxStrategies),
		xlogger.Float64("price", q.Price),
	)

	templates := e.catalog.Head(p.MaxStrategies)
	recs := make([]models.Recommendation, 0, len(templates))
	for _, t := range templates {
		recs = append(recs, e.evaluate(t, q.Price, p.Ticker, p.RiskProfile))
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].ConfidenceScore > recs[j].ConfidenceScore
	})
	if p.MaxStrategies >= 0 && len(recs) > p.MaxStrategies {
		recs = recs[:p.MaxStrategies]
	}
	res.Strategies = recs
	return res
}

func (e *Engine) evaluate(t models.StrategyTemplate, price float64, ticker, profile string) models.Recommendation {
	if !Known(t.Name) {
		e.logger.Warn("no formula for template, using default",
			xlogger.String("template", t.Name),
			xlogger.String("default", BullPutSpread),
		)
	}
	confidence := e.scorer.Score(t, profile)
	m := Compute(t.Name, price)
	return models.Recommendation{
		ID:                  RecommendationID(t.Name, ticker),
		Name:                t.Name,
		Type:                t.Type,
		Complexity:          t.Complexity,
		ConfidenceScore:     confidence,
		MaxProfit:           m.MaxProfit,
		MaxLoss:             m.MaxLoss,
		CapitalRequired:     m.CapitalRequired,
		ProbabilityOfProfit: confidence / 100.0,
		Description:         m.Description,
		Ticker:              ticker,
		CurrentPrice:        price,
	}
}

var _ domsvc.Scanner = (*Engine)(nil)
