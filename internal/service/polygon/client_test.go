package polygon

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"OptionStrat/internal/domain/models"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

type countingMetrics struct {
	fallback, polygon, errors atomic.Int32
}

func (m *countingMetrics) RecordScan(string, string, int) {}
func (m *countingMetrics) RecordQuote(source string) {
	if source == models.SourceFallback {
		m.fallback.Add(1)
	} else {
		m.polygon.Add(1)
	}
}
func (m *countingMetrics) RecordError(string)            { m.errors.Add(1) }
func (m *countingMetrics) RecordLatency(string, float64) {}

func TestFallbackUnknownTicker(t *testing.T) {
	q := Fallback("ZZZZ", time.Now())
	if q.Price != 150.0 || !near(q.High, 153.0) || !near(q.Low, 147.0) || !near(q.Open, 150.15) {
		t.Fatalf("fallback = %+v", q)
	}
	if q.Volume != 1_000_000 || q.Source != models.SourceFallback || q.Ticker != "ZZZZ" {
		t.Fatalf("fallback = %+v", q)
	}
}

func TestFallbackKnownTickers(t *testing.T) {
	for ticker, price := range fallbackPrices {
		if q := Fallback(ticker, time.Now()); q.Price != price {
			t.Fatalf("%s price = %v, want %v", ticker, q.Price, price)
		}
	}
}

func TestFallbackDeterministic(t *testing.T) {
	a := Fallback("QQQ", time.Unix(1, 0))
	b := Fallback("QQQ", time.Unix(2, 0))
	b.Timestamp = a.Timestamp
	if *a != *b {
		t.Fatalf("fallback differs: %+v vs %+v", a, b)
	}
}

func TestQuoteParsesPrevAggregate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/aggs/ticker/AAPL/prev" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("apikey") != "k" || r.URL.Query().Get("adjusted") != "true" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"status":"OK","resultsCount":1,"results":[{"c":189.5,"h":191,"l":187.25,"o":188,"v":51234567}]}`))
	}))
	defer srv.Close()

	m := &countingMetrics{}
	c := New("k", srv.URL, time.Second, WithMetrics(m))
	q, err := c.Quote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if q.Price != 189.5 || q.High != 191 || q.Low != 187.25 || q.Open != 188 || q.Volume != 51234567 {
		t.Fatalf("quote = %+v", q)
	}
	if q.Source != models.SourcePolygon || m.polygon.Load() != 1 {
		t.Fatalf("source = %s, polygon count = %d", q.Source, m.polygon.Load())
	}
}

func TestQuoteFallsBack(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"bad status": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":"ERROR","resultsCount":0}`))
		},
		"no results": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":"OK","resultsCount":0,"results":[]}`))
		},
		"bad json": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":`))
		},
	}
	for name, h := range cases {
		srv := httptest.NewServer(h)
		m := &countingMetrics{}
		c := New("k", srv.URL, time.Second, WithMetrics(m))
		q, err := c.Quote(context.Background(), "MSFT")
		srv.Close()
		if err != nil {
			t.Fatalf("%s: error %v", name, err)
		}
		if q.Price != 378.25 || q.Source != models.SourceFallback {
			t.Fatalf("%s: quote = %+v", name, q)
		}
		if m.fallback.Load() != 1 || m.errors.Load() != 1 {
			t.Fatalf("%s: metrics fallback=%d errors=%d", name, m.fallback.Load(), m.errors.Load())
		}
	}
}

func TestQuoteUnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	q, err := New("k", url, 200*time.Millisecond).Quote(context.Background(), "ZZZZ")
	if err != nil || q.Price != DefaultFallbackPrice {
		t.Fatalf("quote = %+v err = %v", q, err)
	}
}

func TestQuoteWithoutKeySkipsNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits.Add(1) }))
	defer srv.Close()

	q, _ := New("", srv.URL, time.Second).Quote(context.Background(), "TSLA")
	if hits.Load() != 0 {
		t.Fatal("request sent without api key")
	}
	if q.Price != 248.90 {
		t.Fatalf("quote = %+v", q)
	}
}
