package strategy

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"OptionStrat/internal/domain/models"
)

type stubQuotes struct {
	quote *models.Quote
	err   error
	panic bool
	calls int
}

func (s *stubQuotes) Quote(_ context.Context, ticker string) (*models.Quote, error) {
	s.calls++
	if s.panic {
		panic("provider exploded")
	}
	if s.err != nil {
		return nil, s.err
	}
	if s.quote == nil {
		return nil, nil
	}
	q := *s.quote
	q.Ticker = ticker
	return &q, nil
}

func aaplQuote() *models.Quote {
	return &models.Quote{Ticker: "AAPL", Price: 175.50, Timestamp: time.Now(), Source: models.SourceFallback}
}

func params(ticker string, max int) models.ScanParams {
	return models.ScanParams{Ticker: ticker, RiskProfile: ModerateAggressive, MinDTE: 30, MaxDTE: 45, MaxStrategies: max}
}

func TestScanAAPLBullPutSpread(t *testing.T) {
	e := NewEngine(&stubQuotes{quote: aaplQuote()}, WithRandomSource(NewSeededSource(1)))
	res := e.Scan(context.Background(), params("AAPL", 10))

	if res.Quote == nil || res.Quote.Price != 175.50 {
		t.Fatalf("quote = %+v", res.Quote)
	}
	if len(res.Strategies) != 8 {
		t.Fatalf("len = %d, want 8", len(res.Strategies))
	}

	var found bool
	for _, r := range res.Strategies {
		if math.Abs(r.ProbabilityOfProfit-r.ConfidenceScore/100) > 1e-12 {
			t.Fatalf("%s: pop %v != confidence/100 (%v)", r.Name, r.ProbabilityOfProfit, r.ConfidenceScore)
		}
		if r.Ticker != "AAPL" || r.CurrentPrice != 175.50 {
			t.Fatalf("%s: context not echoed: %+v", r.Name, r)
		}
		if r.ID != bullPutSpreadID("AAPL") {
			continue
		}
		found = true
		if r.MaxProfitValue() != 877.5 || r.MaxLossValue() != -175.5 || r.CapitalRequired != 175.5 {
			t.Fatalf("bull put metrics = %v/%v/%v", r.MaxProfitValue(), r.MaxLossValue(), r.CapitalRequired)
		}
		if r.Type != models.Bullish || r.Complexity != models.Intermediate {
			t.Fatalf("template fields not copied: %+v", r)
		}
	}
	if !found {
		t.Fatalf("bull_put_spread_AAPL missing")
	}
}

func bullPutSpreadID(ticker string) string { return RecommendationID(BullPutSpread, ticker) }

func TestScanSortedAndCapped(t *testing.T) {
	e := NewEngine(&stubQuotes{quote: aaplQuote()}, WithRandomSource(NewSeededSource(2024)))
	for max := 1; max <= 20; max++ {
		res := e.Scan(context.Background(), params("AAPL", max))
		want := max
		if want > 8 {
			want = 8
		}
		if len(res.Strategies) != want {
			t.Fatalf("max=%d: len = %d, want %d", max, len(res.Strategies), want)
		}
		for i := 1; i < len(res.Strategies); i++ {
			if res.Strategies[i].ConfidenceScore > res.Strategies[i-1].ConfidenceScore {
				t.Fatalf("max=%d: not sorted at %d", max, i)
			}
		}
	}
}

func TestScanMaxThreeTakesCatalogHead(t *testing.T) {
	e := NewEngine(&stubQuotes{quote: aaplQuote()}, WithRandomSource(NewSeededSource(5)))
	res := e.Scan(context.Background(), params("AAPL", 3))
	if len(res.Strategies) != 3 {
		t.Fatalf("len = %d, want 3", len(res.Strategies))
	}
	allowed := map[string]bool{BullPutSpread: true, IronCondor: true, CashSecuredPut: true}
	for _, r := range res.Strategies {
		if !allowed[r.Name] {
			t.Fatalf("unexpected template %q outside the first three", r.Name)
		}
	}
}

func TestScanTiesKeepCatalogOrder(t *testing.T) {
	same := models.ConfidenceRange{Min: 60, Max: 60}
	cat := NewCatalog([]models.StrategyTemplate{
		{Name: CoveredCall, Type: models.Bullish, Complexity: models.Beginner, Confidence: same},
		{Name: IronCondor, Type: models.Neutral, Complexity: models.Advanced, Confidence: same},
		{Name: BearPutSpread, Type: models.Bearish, Complexity: models.Intermediate, Confidence: same},
		{Name: LongStraddle, Type: models.Volatility, Complexity: models.Intermediate, Confidence: same},
	})
	e := NewEngine(&stubQuotes{quote: aaplQuote()}, WithCatalog(cat), WithRandomSource(FixedSource(0.3)))
	res := e.Scan(context.Background(), params("AAPL", 3))

	want := []string{CoveredCall, IronCondor, BearPutSpread}
	if len(res.Strategies) != len(want) {
		t.Fatalf("len = %d", len(res.Strategies))
	}
	for i, name := range want {
		if res.Strategies[i].Name != name {
			t.Fatalf("strategies[%d] = %q, want %q", i, res.Strategies[i].Name, name)
		}
	}
}

func TestScanUnknownTemplateUsesDefaultFormula(t *testing.T) {
	cat := NewCatalog([]models.StrategyTemplate{
		{Name: "Jade Lizard", Type: models.Neutral, Complexity: models.Advanced, Confidence: models.ConfidenceRange{Min: 50, Max: 60}},
	})
	e := NewEngine(&stubQuotes{quote: aaplQuote()}, WithCatalog(cat))
	res := e.Scan(context.Background(), params("AAPL", 5))
	if len(res.Strategies) != 1 {
		t.Fatalf("len = %d", len(res.Strategies))
	}
	r := res.Strategies[0]
	if r.ID != "jade_lizard_AAPL" || r.MaxProfitValue() != 877.5 {
		t.Fatalf("unexpected recommendation %+v", r)
	}
}

func TestScanQuoteFailureIsEmpty(t *testing.T) {
	cases := map[string]*stubQuotes{
		"error":     {err: errors.New("network down")},
		"nil quote": {},
		"zero":      {quote: &models.Quote{Price: 0}},
		"panic":     {panic: true},
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			res := NewEngine(src).Scan(context.Background(), params("ZZZZ", 10))
			if len(res.Strategies) != 0 {
				t.Fatalf("expected no strategies, got %d", len(res.Strategies))
			}
			if res.Quote != nil {
				t.Fatalf("expected no quote, got %+v", res.Quote)
			}
			if res.Ticker != "ZZZZ" {
				t.Fatalf("ticker = %q", res.Ticker)
			}
		})
	}
}

func TestScanZeroMaxStrategies(t *testing.T) {
	res := NewEngine(&stubQuotes{quote: aaplQuote()}).Scan(context.Background(), params("AAPL", 0))
	if len(res.Strategies) != 0 || res.Quote == nil {
		t.Fatalf("expected quote with no strategies, got %+v", res)
	}
}

func TestScanDTEBoundsDoNotChangeOutput(t *testing.T) {
	a := NewEngine(&stubQuotes{quote: aaplQuote()}, WithRandomSource(NewSeededSource(3)))
	b := NewEngine(&stubQuotes{quote: aaplQuote()}, WithRandomSource(NewSeededSource(3)))

	pa := params("AAPL", 8)
	pb := params("AAPL", 8)
	pb.MinDTE, pb.MaxDTE = 1, 365

	ra, rb := a.Scan(context.Background(), pa), b.Scan(context.Background(), pb)
	for i := range ra.Strategies {
		if ra.Strategies[i].ID != rb.Strategies[i].ID || ra.Strategies[i].ConfidenceScore != rb.Strategies[i].ConfidenceScore {
			t.Fatalf("dte bounds changed result at %d", i)
		}
	}
}
