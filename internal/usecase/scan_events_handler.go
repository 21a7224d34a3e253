package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"OptionStrat/internal/domain/models"
	domrepo "OptionStrat/internal/domain/repository"
	pkgkafka "OptionStrat/pkg/kafka"
)

// ScanEventsHandler consumes scan events from Kafka and archives them.
type ScanEventsHandler struct {
	topic   string
	store   domrepo.ScanStore
	metrics domrepo.Metrics
}

func NewScanEventsHandler(topic string, store domrepo.ScanStore, metrics domrepo.Metrics) *ScanEventsHandler {
	return &ScanEventsHandler{topic: topic, store: store, metrics: metrics}
}

func (h *ScanEventsHandler) Topic() string { return h.topic }

func (h *ScanEventsHandler) Handle(ctx context.Context, b []byte) error {
	var e models.ScanEvent
	if err := json.Unmarshal(b, &e); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return fmt.Errorf("decode scan event: %w", err)
	}
	if e.EventID == "" || e.Ticker == "" {
		h.metrics.RecordError("consumer_invalid")
		return fmt.Errorf("scan event missing id or ticker")
	}
	if !e.Timestamp.IsZero() {
		h.metrics.RecordLatency("scan_event_e2e", time.Since(e.Timestamp).Seconds())
	}

	start := time.Now()
	err := h.store.Store(ctx, &e)
	h.metrics.RecordLatency("scan_event_insert", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*ScanEventsHandler)(nil)
