package kafka

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricsOnce sync.Once
	registerer  prometheus.Registerer = prometheus.DefaultRegisterer

	producerMsgsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "optionstrat_kafka_producer_messages_total",
			Help: "Total messages published to Kafka",
		},
		[]string{"topic", "result"},
	)
	producerBytesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "optionstrat_kafka_producer_bytes_total",
			Help: "Total payload bytes published",
		},
		[]string{"topic"},
	)
	producerLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "optionstrat_kafka_producer_publish_seconds",
			Help:    "Publish latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"topic"},
	)
	consumerQueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "optionstrat_kafka_consumer_queue_depth",
			Help: "Number of messages waiting in consumer queue",
		},
		[]string{"topic"},
	)
	consumerHandled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "optionstrat_kafka_consumer_messages_total",
			Help: "Messages handled by result (ok, dlq, dropped)",
		},
		[]string{"topic", "result"},
	)
	consumerLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "optionstrat_kafka_consumer_handle_seconds",
			Help:    "Handling time per message",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"topic"},
	)
)

// SetMetricsRegisterer overrides where Kafka metrics are registered. It must
// be called before the first producer or consumer is created.
func SetMetricsRegisterer(reg prometheus.Registerer) { registerer = reg }

func initMetrics() {
	metricsOnce.Do(func() {
		registerer.MustRegister(
			producerMsgsTotal, producerBytesTotal, producerLatency,
			consumerQueueDepth, consumerHandled, consumerLatency,
		)
	})
}

func observePublish(topic string, bytes int64, count int, dur time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	producerMsgsTotal.WithLabelValues(topic, result).Add(float64(count))
	producerBytesTotal.WithLabelValues(topic).Add(float64(bytes))
	producerLatency.WithLabelValues(topic).Observe(dur.Seconds())
}
