package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"OptionStrat/internal/domain/models"
	"OptionStrat/internal/services/strategy"
	"OptionStrat/pkg/logger"
	pmetrics "OptionStrat/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeQuotes map[string]*models.Quote

func (f fakeQuotes) Quote(_ context.Context, ticker string) (*models.Quote, error) {
	q, ok := f[ticker]
	if !ok {
		return nil, errors.New("unknown ticker")
	}
	return q, nil
}

type recMetrics struct {
	mu       sync.Mutex
	scans    map[string]int
	errors   map[string]int
	latency  map[string]int
	lastSize int
}

func newRecMetrics() *recMetrics {
	return &recMetrics{scans: map[string]int{}, errors: map[string]int{}, latency: map[string]int{}}
}

func (m *recMetrics) RecordScan(profile, outcome string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scans[profile+"/"+outcome]++
	m.lastSize = n
}
func (m *recMetrics) RecordQuote(string) {}
func (m *recMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}
func (m *recMetrics) RecordLatency(op string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latency[op]++
}

type recPublisher struct {
	events []*models.ScanEvent
	err    error
}

func (p *recPublisher) Publish(_ context.Context, e *models.ScanEvent) error {
	p.events = append(p.events, e)
	return p.err
}
func (p *recPublisher) Close() error { return nil }

type memStore struct {
	stored []*models.ScanEvent
	err    error
}

func (s *memStore) Store(_ context.Context, e *models.ScanEvent) error {
	if s.err != nil {
		return s.err
	}
	s.stored = append(s.stored, e)
	return nil
}
func (s *memStore) Query(_ context.Context, ticker string, _, _ time.Time, limit int) ([]*models.ScanEvent, error) {
	var out []*models.ScanEvent
	for _, e := range s.stored {
		if ticker == "" || e.Ticker == ticker {
			out = append(out, e)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
func (s *memStore) Health(context.Context) error { return nil }
func (s *memStore) Close() error                 { return nil }

var aapl = &models.Quote{Ticker: "AAPL", Price: 175.5, Source: models.SourceFallback}

func newService(t *testing.T, pub *recPublisher, m *recMetrics, opts ...ScanServiceOption) *ScanService {
	t.Helper()
	quotes := fakeQuotes{"AAPL": aapl, "ZERO": {Ticker: "ZERO", Price: 0}}
	engine := strategy.NewEngine(quotes, strategy.WithRandomSource(strategy.FixedSource(0.5)))
	opts = append(opts, WithPublisher(pub))
	s := NewScanService(engine, engine.Catalog(), quotes, m, logger.Nop(), opts...)
	s.newID = func() string { return "evt-1" }
	s.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }
	return s
}

func TestScanPublishesEvent(t *testing.T) {
	pub, m := &recPublisher{}, newRecMetrics()
	s := newService(t, pub, m)

	res := s.Scan(context.Background(), models.ScanParams{Ticker: "AAPL", MinDTE: 30, MaxDTE: 45, MaxStrategies: 5})
	if len(res.Strategies) != 5 || res.Quote == nil {
		t.Fatalf("result = %+v", res)
	}
	if m.scans["moderate_aggressive/ok"] != 1 || m.lastSize != 5 || m.latency["scan"] != 1 {
		t.Fatalf("metrics = %+v", m)
	}
	if len(pub.events) != 1 {
		t.Fatalf("events = %d", len(pub.events))
	}
	e := pub.events[0]
	if e.EventID != "evt-1" || e.Ticker != "AAPL" || e.Count != 5 || e.Price != 175.5 || e.QuoteSource != models.SourceFallback {
		t.Fatalf("event = %+v", e)
	}
	if e.TopStrategy != res.Strategies[0].Name || e.TopConfidence != res.Strategies[0].ConfidenceScore {
		t.Fatalf("top strategy = %s %v", e.TopStrategy, e.TopConfidence)
	}
	if e.RiskProfile != strategy.ModerateAggressive {
		t.Fatalf("risk profile = %q", e.RiskProfile)
	}
}

func TestScanNoQuoteSkipsPublish(t *testing.T) {
	pub, m := &recPublisher{}, newRecMetrics()
	s := newService(t, pub, m)

	for _, ticker := range []string{"NOPE", "ZERO"} {
		res := s.Scan(context.Background(), models.ScanParams{Ticker: ticker, RiskProfile: "conservative", MaxStrategies: 3})
		if res.Quote != nil || len(res.Strategies) != 0 {
			t.Fatalf("%s: result = %+v", ticker, res)
		}
	}
	if m.scans["conservative/no_quote"] != 2 || len(pub.events) != 0 {
		t.Fatalf("metrics = %+v events = %d", m.scans, len(pub.events))
	}
}

func TestScanPublishFailureIsNotFatal(t *testing.T) {
	pub, m := &recPublisher{err: errors.New("broker down")}, newRecMetrics()
	s := newService(t, pub, m)

	res := s.Scan(context.Background(), models.ScanParams{Ticker: "AAPL", MaxStrategies: 2})
	if len(res.Strategies) != 2 {
		t.Fatalf("strategies = %d", len(res.Strategies))
	}
	if m.errors["scan_publish"] != 1 {
		t.Fatalf("errors = %+v", m.errors)
	}
}

func TestScanDefaultRiskProfileOption(t *testing.T) {
	pub, m := &recPublisher{}, newRecMetrics()
	s := newService(t, pub, m, WithDefaultRiskProfile(strategy.Conservative))
	s.Scan(context.Background(), models.ScanParams{Ticker: "AAPL", MaxStrategies: 1})
	if m.scans["conservative/ok"] != 1 {
		t.Fatalf("scans = %+v", m.scans)
	}
}

func TestQuote(t *testing.T) {
	s := newService(t, &recPublisher{}, newRecMetrics())
	if q, err := s.Quote(context.Background(), "AAPL"); err != nil || q.Price != 175.5 {
		t.Fatalf("quote = %+v err = %v", q, err)
	}
	for _, ticker := range []string{"NOPE", "ZERO"} {
		if _, err := s.Quote(context.Background(), ticker); !errors.Is(err, ErrQuoteNotFound) {
			t.Fatalf("%s: err = %v", ticker, err)
		}
	}
}

func TestStrategyDetail(t *testing.T) {
	s := newService(t, &recPublisher{}, newRecMetrics())

	d, err := s.StrategyDetail(context.Background(), "bull_put_spread_AAPL")
	if err != nil {
		t.Fatal(err)
	}
	if d.Template.Name != strategy.BullPutSpread || d.Ticker != "AAPL" || d.CurrentPrice != 175.5 {
		t.Fatalf("detail = %+v", d)
	}
	if d.Metrics == nil || d.Metrics.MaxProfitValue() != 877.5 {
		t.Fatalf("metrics = %+v", d.Metrics)
	}

	d, err = s.StrategyDetail(context.Background(), "iron_condor_NOPE")
	if err != nil || d.Metrics != nil || d.Template.Name != strategy.IronCondor {
		t.Fatalf("detail without quote = %+v err = %v", d, err)
	}

	for _, id := range []string{"", "unknown_AAPL", "bull_put_spread_", "nounderscore"} {
		if _, err := s.StrategyDetail(context.Background(), id); !errors.Is(err, ErrStrategyNotFound) {
			t.Fatalf("%q: err = %v", id, err)
		}
	}
}

func TestHistory(t *testing.T) {
	s := newService(t, &recPublisher{}, newRecMetrics())
	if _, err := s.History(context.Background(), "", time.Time{}, time.Now(), 10); !errors.Is(err, ErrHistoryDisabled) {
		t.Fatalf("err = %v", err)
	}

	store := &memStore{stored: []*models.ScanEvent{{EventID: "1", Ticker: "AAPL"}, {EventID: "2", Ticker: "SPY"}}}
	s = newService(t, &recPublisher{}, newRecMetrics(), WithHistory(store))
	got, err := s.History(context.Background(), "SPY", time.Time{}, time.Now(), 10)
	if err != nil || len(got) != 1 || got[0].EventID != "2" {
		t.Fatalf("history = %v err = %v", got, err)
	}
}

func TestScanEventsHandler(t *testing.T) {
	store, m := &memStore{}, newRecMetrics()
	h := NewScanEventsHandler("optionstrat.scans", store, m)
	if h.Topic() != "optionstrat.scans" {
		t.Fatalf("topic = %s", h.Topic())
	}

	b, _ := json.Marshal(models.ScanEvent{EventID: "e1", Ticker: "AAPL", Count: 8, Timestamp: time.Now()})
	if err := h.Handle(context.Background(), b); err != nil {
		t.Fatal(err)
	}
	if len(store.stored) != 1 || store.stored[0].Count != 8 {
		t.Fatalf("stored = %+v", store.stored)
	}

	if err := h.Handle(context.Background(), []byte("{")); err == nil || m.errors["consumer_unmarshal"] != 1 {
		t.Fatalf("bad json err = %v", err)
	}
	if err := h.Handle(context.Background(), []byte(`{"ticker":"AAPL"}`)); err == nil || m.errors["consumer_invalid"] != 1 {
		t.Fatalf("missing id err = %v", err)
	}

	store.err = errors.New("clickhouse down")
	if err := h.Handle(context.Background(), b); err == nil || m.errors["consumer_store"] != 1 {
		t.Fatalf("store err = %v", err)
	}
}

func TestScanProfileLabelsAreBounded(t *testing.T) {
	reg := prometheus.NewRegistry()
	quotes := fakeQuotes{"AAPL": aapl}
	engine := strategy.NewEngine(quotes, strategy.WithRandomSource(strategy.FixedSource(0.5)))
	s := NewScanService(engine, engine.Catalog(), quotes, pmetrics.NewWithRegisterer(reg), logger.Nop())

	for i := 0; i < 50; i++ {
		s.Scan(context.Background(), models.ScanParams{Ticker: "AAPL", RiskProfile: fmt.Sprintf("p%d", i), MaxStrategies: 3})
	}
	s.Scan(context.Background(), models.ScanParams{Ticker: "AAPL", RiskProfile: strategy.Conservative, MaxStrategies: 3})

	n, err := testutil.GatherAndCount(reg, "optionstrat_scans_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 2 {
		t.Fatalf("optionstrat_scans_total series = %d, want 2", n)
	}
	n, err = testutil.GatherAndCount(reg, "optionstrat_scan_strategies")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 2 {
		t.Fatalf("optionstrat_scan_strategies series = %d, want 2", n)
	}
}
