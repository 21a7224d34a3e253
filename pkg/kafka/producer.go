package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"OptionStrat/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// Message is one record to publish. Value is JSON encoded unless it is
// already []byte or string.
type Message struct {
	Key     []byte
	Value   interface{}
	Headers map[string]string
}

// Producer wraps Kafka writer.
type Producer struct {
	writer *kafka.Writer
}

// NewProducer creates a new Kafka producer.
func NewProducer(opts ...ProducerOption) (*Producer, error) {
	cfg := &ProducerConfig{
		RequiredAcks: -1,
		Compression:  "gzip",
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
		BatchSize:    100,
		BatchBytes:   1048576,
		BatchTimeout: time.Second,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:  parseCompression(cfg.Compression),
		MaxAttempts:  cfg.MaxAttempts,
		WriteTimeout: cfg.WriteTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		BatchSize:    cfg.BatchSize,
		BatchBytes:   int64(cfg.BatchBytes),
		BatchTimeout: cfg.BatchTimeout,
		Async:        cfg.Async,
	}
	if cfg.Async {
		writer.Completion = func(msgs []kafka.Message, err error) {
			if err != nil {
				log.Error("kafka producer: async write failed",
					logger.Int("messages", len(msgs)),
					logger.Error(err),
				)
			}
		}
	}

	initMetrics()
	return &Producer{writer: writer}, nil
}

// Publish sends messages to topic.
func (p *Producer) Publish(ctx context.Context, topic string, messages ...Message) error {
	if len(messages) == 0 {
		return nil
	}

	start := time.Now()
	msgs := make([]kafka.Message, 0, len(messages))
	var total int64
	for _, m := range messages {
		km, err := encode(topic, m)
		if err != nil {
			return err
		}
		msgs = append(msgs, km)
		total += int64(len(km.Value))
	}

	err := p.writer.WriteMessages(ctx, msgs...)
	observePublish(topic, total, len(msgs), time.Since(start), err)
	if err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

// Close flushes pending writes and closes the producer.
func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

func encode(topic string, m Message) (kafka.Message, error) {
	var v []byte
	switch val := m.Value.(type) {
	case []byte:
		v = val
	case string:
		v = []byte(val)
	default:
		var err error
		v, err = json.Marshal(val)
		if err != nil {
			return kafka.Message{}, fmt.Errorf("marshal value: %w", err)
		}
	}

	km := kafka.Message{
		Topic: topic,
		Key:   m.Key,
		Value: v,
		Time:  time.Now(),
	}
	for k, hv := range m.Headers {
		km.Headers = append(km.Headers, kafka.Header{Key: k, Value: []byte(hv)})
	}
	return km, nil
}

func parseCompression(s string) kafka.Compression {
	switch s {
	case "snappy":
		return kafka.Snappy
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return kafka.Gzip
	}
}
