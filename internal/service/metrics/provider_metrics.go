package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fxpulse",
			Subsystem: "provider",
			Name:      "latency_seconds",
			Help:      "Latency of chat completion calls",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		},
		[]string{"operation"},
	)

	ProviderErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fxpulse",
			Subsystem: "provider",
			Name:      "errors_total",
			Help:      "Chat completion failures by operation and reason",
		},
		[]string{"operation", "reason"},
	)

	NotificationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fxpulse",
			Subsystem: "notifier",
			Name:      "latency_seconds",
			Help:      "Latency of outbound chat messages",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"channel"},
	)
)

// Register adds the collectors to the default registry once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(ProviderLatency, ProviderErrors, NotificationLatency)
	})
}
