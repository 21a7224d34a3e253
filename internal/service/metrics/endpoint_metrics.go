package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	EndpointLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "optionstrat",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of strategy API endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	EndpointErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "optionstrat",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by strategy API endpoint",
		},
		[]string{"endpoint"},
	)

	WebsocketSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "optionstrat",
			Subsystem: "api",
			Name:      "websocket_sessions",
			Help:      "Open websocket scan sessions",
		},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(EndpointLatency, EndpointErrors, WebsocketSessions)
	})
}
