package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"OptionStrat/internal/service/ratelimit"
	"OptionStrat/pkg/config"
	"OptionStrat/pkg/logger"

	"github.com/labstack/echo/v4"
)

type pingRoutes struct{}

func (pingRoutes) RegisterRoutes(e *echo.Echo) {
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })
}

type closeRecorder struct {
	closed *[]string
	name   string
	err    error
}

func (c closeRecorder) Close() error {
	*c.closed = append(*c.closed, c.name)
	return c.err
}

type countSweeper struct{ n int }

func (s *countSweeper) Sweep() { s.n++ }

func get(a *App, path string) int {
	rec := httptest.NewRecorder()
	a.Server().Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec.Code
}

func TestServerHonoursConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Metrics.Enabled = false

	a := New(cfg, logger.Nop(), pingRoutes{})
	if code := get(a, "/ping"); code != http.StatusOK {
		t.Fatalf("ping = %d", code)
	}
	if code := get(a, "/metrics"); code != http.StatusNotFound {
		t.Fatalf("metrics should be disabled, got %d", code)
	}
	if a.Server() != a.Server() {
		t.Fatalf("server should be built once")
	}
}

func TestServerRateLimited(t *testing.T) {
	a := New(config.Default(), logger.Nop(), pingRoutes{})
	a.SetRateLimiter(ratelimit.New(1, 1, 0))

	if code := get(a, "/ping"); code != http.StatusOK {
		t.Fatalf("first = %d", code)
	}
	if code := get(a, "/ping"); code != http.StatusTooManyRequests {
		t.Fatalf("second = %d", code)
	}
}

func TestShutdownClosesInOrder(t *testing.T) {
	var closed []string
	a := New(config.Default(), logger.Nop(), pingRoutes{})
	a.Server()
	a.AddCloser("publisher", closeRecorder{closed: &closed, name: "publisher", err: errors.New("flush failed")})
	a.AddCloser("cache", closeRecorder{closed: &closed, name: "cache"})
	a.AddCloser("nil", nil)

	if err := a.shutdown(t.Context()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if len(closed) != 2 || closed[0] != "publisher" || closed[1] != "cache" {
		t.Fatalf("closed = %v", closed)
	}
	select {
	case <-a.stop:
	default:
		t.Fatalf("stop channel should be closed")
	}
}

func TestSweepersRegistered(t *testing.T) {
	a := New(config.Default(), nil, pingRoutes{})
	s := &countSweeper{}
	a.AddSweeper(s)
	if len(a.sweepers) != 1 {
		t.Fatalf("sweepers = %d", len(a.sweepers))
	}
}
