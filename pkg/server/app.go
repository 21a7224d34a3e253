package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"OptionStrat/internal/service/ratelimit"
	"OptionStrat/pkg/config"
	xhttp "OptionStrat/pkg/http"
	pkgkafka "OptionStrat/pkg/kafka"
	applogger "OptionStrat/pkg/logger"
)

const sweepInterval = time.Minute

// Sweeper drops expired entries from an in-process store.
type Sweeper interface {
	Sweep()
}

// App encapsulates the application lifecycle.
type App struct {
	cfg         *config.Config
	log         *applogger.Logger
	httpHandler xhttp.Handler
	httpServer  *xhttp.Server
	limiter     *ratelimit.Limiter
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	sweepers    []Sweeper
	closers     []namedCloser
	stop        chan struct{}
}

type namedCloser struct {
	name string
	c    io.Closer
}

// New creates an App serving handler.
func New(cfg *config.Config, l *applogger.Logger, handler xhttp.Handler) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{
		cfg:         cfg,
		log:         l,
		httpHandler: handler,
		stop:        make(chan struct{}),
	}
}

// SetRateLimiter enables per-client rate limiting.
func (a *App) SetRateLimiter(l *ratelimit.Limiter) { a.limiter = l }

// SetConsumer attaches a Kafka consumer started with the app.
func (a *App) SetConsumer(c *pkgkafka.Consumer, h pkgkafka.MessageHandler) {
	a.consumer = c
	a.kh = h
}

// AddSweeper registers a store swept periodically while the app runs.
func (a *App) AddSweeper(s Sweeper) { a.sweepers = append(a.sweepers, s) }

// AddCloser registers a resource closed on shutdown, in registration order.
func (a *App) AddCloser(name string, c io.Closer) {
	if c != nil {
		a.closers = append(a.closers, namedCloser{name: name, c: c})
	}
}

// Server builds the HTTP server from configuration. It is created on first
// use so tests can reach the echo instance without starting a listener.
func (a *App) Server() *xhttp.Server {
	if a.httpServer != nil {
		return a.httpServer
	}
	opts := []xhttp.ServerOption{
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(a.cfg.Server.CORS),
		xhttp.WithCORSOrigins(a.cfg.Server.CORSOrigins, a.cfg.Server.CORSAllowCredentials),
		xhttp.WithLogger(a.log),
	}
	if a.cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(a.cfg.Metrics.Path, a.cfg.Metrics.SlowThreshold))
	} else {
		opts = append(opts, xhttp.WithMetrics("", 0))
	}
	if a.limiter != nil {
		opts = append(opts, xhttp.WithRateLimiter(a.limiter))
	}
	a.httpServer = xhttp.NewServer(a.httpHandler, opts...)
	return a.httpServer
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := a.Server()

	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		if err := a.consumer.Start(); err != nil {
			a.log.Error("kafka consumer start error", applogger.Error(err))
			return err
		}
		a.log.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	if a.limiter != nil {
		go a.limiter.Run(sweepInterval, a.stop)
	}
	if len(a.sweepers) > 0 {
		go a.sweep()
	}

	if err := srv.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

func (a *App) sweep() {
	t := time.NewTicker(sweepInterval)
	defer t.Stop()
	for {
		select {
		case <-a.stop:
			return
		case <-t.C:
			for _, s := range a.sweepers {
				s.Sweep()
			}
		}
	}
}

// shutdown stops intake first, then drains the consumer and closes clients.
func (a *App) shutdown(ctx context.Context) error {
	a.log.Info("shutting down...")
	close(a.stop)

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			a.log.Error("http shutdown error", applogger.Error(err))
		}
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	for _, nc := range a.closers {
		if err := nc.c.Close(); err != nil {
			a.log.Warn("close error", applogger.String("resource", nc.name), applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
