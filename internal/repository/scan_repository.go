package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"OptionStrat/internal/domain/models"
	"OptionStrat/internal/domain/repository"
	pkgkafka "OptionStrat/pkg/kafka"
)

const scanColumns = "event_id, ts, ticker, risk_profile, min_dte, max_dte, max_strategies, price, quote_source, strategy_count, top_strategy, top_confidence"

// ScanEventsSchema returns the DDL for the scan archive table.
func ScanEventsSchema(table string) []string {
	return []string{fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	event_id String,
	ts DateTime64(3, 'UTC'),
	ticker LowCardinality(String),
	risk_profile LowCardinality(String),
	min_dte UInt16,
	max_dte UInt16,
	max_strategies UInt8,
	price Float64,
	quote_source LowCardinality(String),
	strategy_count UInt8,
	top_strategy LowCardinality(String),
	top_confidence Float64
) ENGINE = ReplacingMergeTree
ORDER BY (ticker, ts, event_id)`, table)}
}

// ClickHouseScanStore implements ScanStore for ClickHouse.
type ClickHouseScanStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseScanStore creates the scan archive.
func NewClickHouseScanStore(db *sql.DB, table string) *ClickHouseScanStore {
	return &ClickHouseScanStore{db: db, table: table}
}

func (s *ClickHouseScanStore) Store(ctx context.Context, e *models.ScanEvent) error {
	return s.StoreBatch(ctx, []*models.ScanEvent{e})
}

// StoreBatch inserts events with multi-row VALUES, skipping incomplete ones.
func (s *ClickHouseScanStore) StoreBatch(ctx context.Context, events []*models.ScanEvent) error {
	const chunkSize = 1000
	for start := 0; start < len(events); start += chunkSize {
		end := min(start+chunkSize, len(events))
		q, args := insertStatement(s.table, events[start:end])
		if q == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert scan events: %w", err)
		}
	}
	return nil
}

func insertStatement(table string, events []*models.ScanEvent) (string, []interface{}) {
	values := make([]string, 0, len(events))
	args := make([]interface{}, 0, len(events)*12)
	for _, e := range events {
		if e == nil || e.EventID == "" || e.Ticker == "" {
			continue
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			e.EventID,
			e.Timestamp.UTC(),
			e.Ticker,
			e.RiskProfile,
			e.MinDTE,
			e.MaxDTE,
			e.MaxStrategies,
			e.Price,
			e.QuoteSource,
			e.Count,
			e.TopStrategy,
			e.TopConfidence,
		)
	}
	if len(values) == 0 {
		return "", nil
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", table, scanColumns, strings.Join(values, ",")), args
}

// Query returns the newest events for ticker in [from, to]. An empty ticker matches all.
func (s *ClickHouseScanStore) Query(ctx context.Context, ticker string, from, to time.Time, limit int) ([]*models.ScanEvent, error) {
	where := "ts >= ? AND ts <= ?"
	args := []interface{}{from.UTC(), to.UTC()}
	if ticker != "" {
		where = "ticker = ? AND " + where
		args = append([]interface{}{ticker}, args...)
	}
	args = append(args, limit)

	q := fmt.Sprintf("SELECT %s FROM %s FINAL WHERE %s ORDER BY ts DESC LIMIT ?", scanColumns, s.table, where)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query scan events: %w", err)
	}
	defer rows.Close()

	var out []*models.ScanEvent
	for rows.Next() {
		var (
			e                         models.ScanEvent
			minDTE, maxDTE            uint16
			maxStrategies, stratCount uint8
		)
		if err := rows.Scan(
			&e.EventID, &e.Timestamp, &e.Ticker, &e.RiskProfile,
			&minDTE, &maxDTE, &maxStrategies,
			&e.Price, &e.QuoteSource, &stratCount,
			&e.TopStrategy, &e.TopConfidence,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		e.MinDTE, e.MaxDTE = int(minDTE), int(maxDTE)
		e.MaxStrategies, e.Count = int(maxStrategies), int(stratCount)
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (s *ClickHouseScanStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close is a no-op; the pool belongs to pkg/clickhouse.Client.
func (s *ClickHouseScanStore) Close() error { return nil }

// KafkaScanPublisher implements ScanPublisher for Kafka.
type KafkaScanPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaScanPublisher creates a Kafka publisher keyed by ticker.
func NewKafkaScanPublisher(producer *pkgkafka.Producer, topic string) *KafkaScanPublisher {
	return &KafkaScanPublisher{producer: producer, topic: topic}
}

func (p *KafkaScanPublisher) Publish(ctx context.Context, e *models.ScanEvent) error {
	return p.producer.Publish(ctx, p.topic, pkgkafka.Message{
		Key:     []byte(e.Ticker),
		Value:   e,
		Headers: map[string]string{"event_id": e.EventID},
	})
}

func (p *KafkaScanPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NoopPublisher drops events. Used when the event bus is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *models.ScanEvent) error { return nil }
func (NoopPublisher) Close() error                                    { return nil }

var (
	_ repository.ScanStore     = (*ClickHouseScanStore)(nil)
	_ repository.ScanPublisher = (*KafkaScanPublisher)(nil)
	_ repository.ScanPublisher = NoopPublisher{}
)
