package polygon

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"OptionStrat/internal/domain/models"
	drepo "OptionStrat/internal/domain/repository"
	xhttp "OptionStrat/pkg/http"
	"OptionStrat/pkg/logger"
	"OptionStrat/pkg/metrics"
)

const DefaultBaseURL = "https://api.polygon.io"

var (
	errBadStatus = errors.New("polygon: status not OK")
	errNoResults = errors.New("polygon: no results")
)

// Client implements QuoteSource backed by Polygon previous-day aggregates.
// Every failure degrades to the deterministic fallback quote.
type Client struct {
	apiKey  string
	baseURL string
	http    *xhttp.Client
	log     *logger.Logger
	metrics drepo.Metrics
	now     func() time.Time
}

// Option configures Client.
type Option func(*Client)

// WithHTTPClient overrides the transport client.
func WithHTTPClient(c *xhttp.Client) Option { return func(p *Client) { p.http = c } }

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option { return func(p *Client) { p.log = l } }

// WithMetrics sets the metrics sink.
func WithMetrics(m drepo.Metrics) Option { return func(p *Client) { p.metrics = m } }

// New creates a Polygon quote source.
func New(apiKey, baseURL string, timeout time.Duration, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
		log:     logger.Nop(),
		metrics: metrics.Nop{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type aggResult struct {
	C float64 `json:"c"`
	H float64 `json:"h"`
	L float64 `json:"l"`
	O float64 `json:"o"`
	V float64 `json:"v"`
}

type prevResponse struct {
	Status       string      `json:"status"`
	ResultsCount int         `json:"resultsCount"`
	Results      []aggResult `json:"results"`
}

// Quote returns the previous close for ticker, or the fallback quote. The error is always nil.
func (c *Client) Quote(ctx context.Context, ticker string) (*models.Quote, error) {
	start := time.Now()
	defer func() { c.metrics.RecordLatency("polygon_quote", time.Since(start).Seconds()) }()

	if c.apiKey == "" {
		c.log.Debug("polygon: no api key, using fallback", logger.String("ticker", ticker))
		return c.fallback(ticker), nil
	}

	q, err := c.fetch(ctx, ticker)
	if err != nil {
		c.log.Warn("polygon: request failed, using fallback",
			logger.String("ticker", ticker),
			logger.Error(err),
		)
		c.metrics.RecordError("polygon")
		return c.fallback(ticker), nil
	}

	c.metrics.RecordQuote(models.SourcePolygon)
	return q, nil
}

func (c *Client) fetch(ctx context.Context, ticker string) (*models.Quote, error) {
	var resp prevResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/v2/aggs/ticker/%s/prev", c.baseURL, url.PathEscape(ticker)),
		QueryParams: map[string][]string{
			"adjusted": {"true"},
			"apikey":   {c.apiKey},
		},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Status != "OK" {
		return nil, fmt.Errorf("%w: %q", errBadStatus, resp.Status)
	}
	if resp.ResultsCount <= 0 || len(resp.Results) == 0 {
		return nil, errNoResults
	}

	r := resp.Results[0]
	return &models.Quote{
		Ticker:    ticker,
		Price:     r.C,
		High:      r.H,
		Low:       r.L,
		Open:      r.O,
		Volume:    r.V,
		Timestamp: c.now(),
		Source:    models.SourcePolygon,
	}, nil
}

func (c *Client) fallback(ticker string) *models.Quote {
	c.metrics.RecordQuote(models.SourceFallback)
	return Fallback(ticker, c.now())
}

var _ drepo.QuoteSource = (*Client)(nil)
