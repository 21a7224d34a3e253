package di

import (
	"context"
	"fmt"
	"time"

	"OptionStrat/internal/domain/repository"
	"OptionStrat/internal/handler/api"
	internalrepo "OptionStrat/internal/repository"
	"OptionStrat/internal/service/cache"
	"OptionStrat/internal/service/polygon"
	"OptionStrat/internal/service/ratelimit"
	"OptionStrat/internal/services/strategy"
	"OptionStrat/internal/usecase"
	pkgch "OptionStrat/pkg/clickhouse"
	"OptionStrat/pkg/config"
	pkgkafka "OptionStrat/pkg/kafka"
	"OptionStrat/pkg/logger"
	"OptionStrat/pkg/metrics"
	"OptionStrat/pkg/server"

	"github.com/segmentio/kafka-go"
)

const (
	scanEventsTable = "scan_events"
	startupTimeout  = 10 * time.Second
)

// ProvideLogger creates the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(logger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCacheStore creates the quote cache backend, or nil when caching is off.
func ProvideCacheStore(cfg *config.Config) (cache.BytesCache, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	if cfg.Cache.Backend != "redis" {
		return cache.NewTTLCache(), nil
	}

	rc := cache.NewRedisCache(cache.RedisConfig{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Prefix:   cfg.Cache.Redis.Prefix,
	})
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("quote cache: %w", err)
	}
	return rc, nil
}

// ProvidePolygonClient creates the market data client.
func ProvidePolygonClient(cfg *config.Config, m repository.Metrics, l *logger.Logger) *polygon.Client {
	return polygon.New(
		cfg.Polygon.APIKey,
		cfg.Polygon.BaseURL,
		cfg.Polygon.Timeout,
		polygon.WithLogger(l),
		polygon.WithMetrics(m),
	)
}

// ProvideQuoteSource wraps the market data client with the cache when one is configured.
func ProvideQuoteSource(cfg *config.Config, client *polygon.Client, store cache.BytesCache, l *logger.Logger) repository.QuoteSource {
	if store == nil {
		return client
	}
	return cache.NewQuoteCache(client, store, cfg.Cache.TTL, l)
}

// ProvideEngine creates the strategy engine. A non-zero engine.seed makes
// confidence scores reproducible.
func ProvideEngine(cfg *config.Config, quotes repository.QuoteSource, l *logger.Logger) *strategy.Engine {
	opts := []strategy.Option{strategy.WithLogger(l)}
	if cfg.Engine.Seed != 0 {
		opts = append(opts, strategy.WithRandomSource(strategy.NewSeededSource(cfg.Engine.Seed)))
	}
	return strategy.NewEngine(quotes, opts...)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is off.
func ProvideKafkaProducer(cfg *config.Config, l *logger.Logger) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithProducerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideScanPublisher publishes scan events to Kafka when a producer exists.
func ProvideScanPublisher(cfg *config.Config, producer *pkgkafka.Producer) repository.ScanPublisher {
	if producer == nil {
		return internalrepo.NoopPublisher{}
	}
	return internalrepo.NewKafkaScanPublisher(producer, cfg.Kafka.Topic)
}

// ProvideClickHouseClient connects to ClickHouse and creates the scan archive
// table, or returns nil when ClickHouse is off.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	client, err := pkgch.NewClient(ctx,
		pkgch.WithAddress(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	stmts := append([]string{"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database},
		internalrepo.ScanEventsSchema(scanTable(cfg))...)
	if err := client.InitSchema(ctx, stmts); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

func scanTable(cfg *config.Config) string {
	return cfg.ClickHouse.Database + "." + scanEventsTable
}

// ProvideScanStore archives scans in ClickHouse, or returns nil without a client.
func ProvideScanStore(cfg *config.Config, ch *pkgch.Client) repository.ScanStore {
	if ch == nil {
		return nil
	}
	return internalrepo.NewClickHouseScanStore(ch.DB(), scanTable(cfg))
}

// ProvideScanService creates the scan use case.
func ProvideScanService(
	cfg *config.Config,
	engine *strategy.Engine,
	quotes repository.QuoteSource,
	pub repository.ScanPublisher,
	store repository.ScanStore,
	m repository.Metrics,
	l *logger.Logger,
) *usecase.ScanService {
	opts := []usecase.ScanServiceOption{
		usecase.WithPublisher(pub),
		usecase.WithDefaultRiskProfile(cfg.Engine.DefaultRiskProfile),
	}
	if store != nil {
		opts = append(opts, usecase.WithHistory(store))
	}
	return usecase.NewScanService(engine, engine.Catalog(), quotes, m, l, opts...)
}

// ProvideStrategyHandler creates the HTTP handler.
func ProvideStrategyHandler(cfg *config.Config, l *logger.Logger, svc *usecase.ScanService) *api.StrategyEchoHandler {
	return api.NewStrategyEchoHandler(l, svc, cfg.Engine.DefaultMaxStrategies)
}

// ProvideRateLimiter creates the per-client limiter, or nil when disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst, 0)
}

// ProvideScanEventsHandler archives consumed scan events, or returns nil without a store.
func ProvideScanEventsHandler(cfg *config.Config, store repository.ScanStore, m repository.Metrics) *usecase.ScanEventsHandler {
	if store == nil {
		return nil
	}
	return usecase.NewScanEventsHandler(cfg.Kafka.Topic, store, m)
}

// ProvideKafkaConsumer creates the archiving consumer, or nil when it is off.
func ProvideKafkaConsumer(cfg *config.Config, m repository.Metrics, l *logger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || !cfg.Kafka.Consumer.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.SetHook(consumerHook(m, l))
	return consumer, nil
}

func consumerHook(m repository.Metrics, l *logger.Logger) pkgkafka.ConsumerHook {
	return pkgkafka.HookFuncs{
		After: func(_ context.Context, topic string, _ kafka.Message, err error) {
			if err != nil {
				m.RecordError("consumer_handle")
			}
		},
		Dead: func(_ context.Context, topic string, km kafka.Message, err error) {
			m.RecordError("consumer_dead_letter")
			l.Warn("scan event dead-lettered",
				logger.String("topic", topic),
				logger.Int("partition", km.Partition),
				logger.Any("offset", km.Offset),
				logger.Error(err),
			)
		},
	}
}

// ProvideApp assembles the application server.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	h *api.StrategyEchoHandler,
	limiter *ratelimit.Limiter,
	store cache.BytesCache,
	pub repository.ScanPublisher,
	ch *pkgch.Client,
	consumer *pkgkafka.Consumer,
	kh *usecase.ScanEventsHandler,
) *server.App {
	app := server.New(cfg, l, h)
	if limiter != nil {
		app.SetRateLimiter(limiter)
	}
	if consumer != nil && kh != nil {
		app.SetConsumer(consumer, kh)
	}
	if ttl, ok := store.(*cache.TTLCache); ok {
		app.AddSweeper(ttl)
	}

	// Closers run after the consumer has drained.
	app.AddCloser("scan publisher", pub)
	if store != nil {
		app.AddCloser("quote cache", store)
	}
	if ch != nil {
		app.AddCloser("clickhouse", ch)
	}
	return app
}
