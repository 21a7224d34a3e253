package api

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"OptionStrat/internal/domain/models"
	"OptionStrat/internal/service/metrics"
	"OptionStrat/internal/usecase"
	xhttp "OptionStrat/pkg/http"
	xlogger "OptionStrat/pkg/logger"
	"OptionStrat/pkg/util"

	"github.com/labstack/echo/v4"
)

// Version is reported by the health endpoints.
const Version = "1.0.0"

const healthTimeout = 2 * time.Second

// StrategyEchoHandler serves the strategy scanner over HTTP.
type StrategyEchoHandler struct {
	logger        *xlogger.Logger
	svc           *usecase.ScanService
	defaultMax    int
	historyWindow time.Duration
}

func NewStrategyEchoHandler(logger *xlogger.Logger, svc *usecase.ScanService, defaultMax int) *StrategyEchoHandler {
	metrics.Register()
	if logger == nil {
		logger = xlogger.Nop()
	}
	if defaultMax <= 0 {
		defaultMax = 10
	}
	return &StrategyEchoHandler{logger: logger, svc: svc, defaultMax: defaultMax, historyWindow: 24 * time.Hour}
}

func (h *StrategyEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	g := e.Group("/api")
	g.GET("/health", h.Health)
	g.POST("/scan", h.Scan)
	g.GET("/quote/:ticker", h.Quote)
	g.GET("/strategies", h.Strategies)
	g.GET("/strategy/:id", h.StrategyDetail)
	g.POST("/export", h.Export)
	g.GET("/scans", h.History)
	g.GET("/ws/scan", h.ScanStream)
}

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Health reports liveness. With history enabled it also pings the archive
// and reports "degraded" when it is unreachable; the status code stays 200.
func (h *StrategyEchoHandler) Health(c echo.Context) error {
	resp := healthResponse{Status: "healthy", Timestamp: xhttp.Now(), Version: Version}

	ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
	defer cancel()
	switch err := h.svc.HistoryHealth(ctx); {
	case errors.Is(err, usecase.ErrHistoryDisabled):
	case err != nil:
		h.logger.Warn("scan archive health check failed", xlogger.Error(err))
		resp.Status = "degraded"
		resp.Checks = map[string]string{"clickhouse": "unavailable"}
	default:
		resp.Checks = map[string]string{"clickhouse": "ok"}
	}
	return xhttp.SuccessResponse(c, resp)
}

// StrategyJSON is the wire form of one recommendation. Unbounded legs are
// reported as the price*2*100 estimate plus an explicit flag.
type StrategyJSON struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Type                string  `json:"type"`
	Complexity          string  `json:"complexity"`
	Confidence          float64 `json:"confidence"`
	MaxProfit           float64 `json:"maxProfit"`
	MaxLoss             float64 `json:"maxLoss"`
	CapitalRequired     float64 `json:"capitalRequired"`
	ProbabilityOfProfit float64 `json:"probabilityOfProfit"`
	Description         string  `json:"description"`
	CurrentPrice        float64 `json:"currentPrice"`
	Ticker              string  `json:"ticker"`
	ProfitUnbounded     bool    `json:"profitUnbounded"`
	LossUnbounded       bool    `json:"lossUnbounded"`
}

func toStrategyJSON(r models.Recommendation) StrategyJSON {
	return StrategyJSON{
		ID:                  r.ID,
		Name:                r.Name,
		Type:                string(r.Type),
		Complexity:          string(r.Complexity),
		Confidence:          r.ConfidenceScore,
		MaxProfit:           r.MaxProfitValue(),
		MaxLoss:             r.MaxLossValue(),
		CapitalRequired:     r.CapitalRequired,
		ProbabilityOfProfit: r.ProbabilityOfProfit,
		Description:         r.Description,
		CurrentPrice:        r.CurrentPrice,
		Ticker:              r.Ticker,
		ProfitUnbounded:     r.MaxProfit.IsUnbounded(),
		LossUnbounded:       r.MaxLoss.IsUnbounded(),
	}
}

// ScanResponse is the body of a scan reply.
type ScanResponse struct {
	Success      bool           `json:"success"`
	Strategies   []StrategyJSON `json:"strategies"`
	CurrentPrice float64        `json:"currentPrice"`
	Ticker       string         `json:"ticker"`
	Error        string         `json:"error,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}

func (h *StrategyEchoHandler) Scan(c echo.Context) error {
	start := time.Now()
	defer h.observe("scan", start)

	req := &models.ScanRequest{}
	if err := xhttp.ReadAndValidateRequest(c, req); err != nil {
		metrics.EndpointErrors.WithLabelValues("scan").Inc()
		return err
	}
	resp, err := h.scan(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return xhttp.SuccessResponse(c, resp)
}

// scan runs a validated request. A missing quote is a 404; an empty ranking
// is a successful reply with success=false.
func (h *StrategyEchoHandler) scan(ctx context.Context, req *models.ScanRequest) (*ScanResponse, error) {
	if req.Ticker == "" {
		return nil, xhttp.BadRequestError("Ticker is required")
	}
	p := req.Params()
	if p.MaxStrategies == 0 {
		p.MaxStrategies = h.defaultMax
	}

	res := h.svc.Scan(ctx, p)
	if res.Quote == nil {
		return nil, xhttp.NotFoundErrorf("Stock data not found for %s", req.Ticker)
	}

	resp := &ScanResponse{
		Success:      true,
		Strategies:   make([]StrategyJSON, 0, len(res.Strategies)),
		CurrentPrice: res.Quote.Price,
		Ticker:       req.Ticker,
		Timestamp:    xhttp.Now(),
	}
	for _, r := range res.Strategies {
		resp.Strategies = append(resp.Strategies, toStrategyJSON(r))
	}
	if len(resp.Strategies) == 0 {
		resp.Success = false
		resp.Error = "No viable strategies found"
	}
	return resp, nil
}

func (h *StrategyEchoHandler) Quote(c echo.Context) error {
	start := time.Now()
	defer h.observe("quote", start)

	req := &models.QuoteRequest{}
	if err := xhttp.ReadAndValidateRequest(c, req); err != nil {
		return err
	}
	q, err := h.svc.Quote(c.Request().Context(), req.Ticker)
	if err != nil {
		metrics.EndpointErrors.WithLabelValues("quote").Inc()
		return xhttp.NotFoundErrorf("Stock data not found for %s", req.Ticker)
	}
	return xhttp.DataResponse(c, q)
}

func (h *StrategyEchoHandler) Strategies(c echo.Context) error {
	templates := h.svc.Strategies()
	return xhttp.ListResponse(c, templates, int64(len(templates)))
}

type strategyDetailJSON struct {
	ID           string                  `json:"id"`
	Ticker       string                  `json:"ticker"`
	Template     models.StrategyTemplate `json:"template"`
	CurrentPrice float64                 `json:"currentPrice,omitempty"`
	Metrics      *StrategyJSON           `json:"metrics,omitempty"`
}

type strategyDetailResponse struct {
	Success   bool               `json:"success"`
	Strategy  strategyDetailJSON `json:"strategy"`
	Timestamp time.Time          `json:"timestamp"`
}

func (h *StrategyEchoHandler) StrategyDetail(c echo.Context) error {
	req := &models.StrategyDetailRequest{}
	if err := xhttp.ReadAndValidateRequest(c, req); err != nil {
		return err
	}
	d, err := h.svc.StrategyDetail(c.Request().Context(), req.ID)
	if errors.Is(err, usecase.ErrStrategyNotFound) {
		return xhttp.NotFoundErrorf("Strategy %s not found", req.ID)
	}
	if err != nil {
		return err
	}
	out := strategyDetailJSON{
		ID:           d.ID,
		Ticker:       d.Ticker,
		Template:     d.Template,
		CurrentPrice: d.CurrentPrice,
	}
	if d.Metrics != nil {
		m := toStrategyJSON(*d.Metrics)
		out.Metrics = &m
	}
	return xhttp.SuccessResponse(c, strategyDetailResponse{Success: true, Strategy: out, Timestamp: xhttp.Now()})
}

type exportResponse struct {
	Strategies  []map[string]interface{} `json:"strategies"`
	GeneratedAt time.Time                `json:"generated_at"`
	TotalCount  int                      `json:"total_count"`
}

// Export echoes the posted strategies back as a downloadable JSON document.
func (h *StrategyEchoHandler) Export(c echo.Context) error {
	var items []map[string]interface{}
	if err := json.NewDecoder(c.Request().Body).Decode(&items); err != nil {
		return xhttp.BadRequestError("Request body must be a JSON array of strategies")
	}
	if items == nil {
		items = []map[string]interface{}{}
	}
	return xhttp.AttachmentResponse(c, "strategies.json", exportResponse{
		Strategies:  items,
		GeneratedAt: xhttp.Now(),
		TotalCount:  len(items),
	})
}

// History lists archived scan events, newest first.
func (h *StrategyEchoHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if err := xhttp.ReadAndValidateRequest(c, req); err != nil {
		return err
	}
	to := xhttp.Now()
	if req.To != "" {
		t, ok := util.ParseTime(req.To)
		if !ok {
			return xhttp.BadRequestError("to must be RFC3339 or unix seconds")
		}
		to = t
	}
	from := to.Add(-h.historyWindow)
	if req.From != "" {
		t, ok := util.ParseTime(req.From)
		if !ok {
			return xhttp.BadRequestError("from must be RFC3339 or unix seconds")
		}
		from = t
	}
	if from.After(to) {
		return xhttp.BadRequestError("from must not be after to")
	}

	events, err := h.svc.History(c.Request().Context(), req.Ticker, from, to, req.Limit)
	if errors.Is(err, usecase.ErrHistoryDisabled) {
		return xhttp.ServiceUnavailableError("Scan history is not enabled")
	}
	if err != nil {
		h.logger.Error("scan history query failed", xlogger.Error(err))
		metrics.EndpointErrors.WithLabelValues("history").Inc()
		return xhttp.InternalError("Scan history unavailable").WithError(err)
	}
	if events == nil {
		events = []*models.ScanEvent{}
	}
	return xhttp.ListResponse(c, events, int64(len(events)))
}

func (h *StrategyEchoHandler) observe(endpoint string, start time.Time) {
	metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

var _ xhttp.Handler = (*StrategyEchoHandler)(nil)
