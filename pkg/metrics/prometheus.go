package metrics

import (
	"FxPulse/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	signalsTotal  *prometheus.CounterVec
	rejections    *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	notifications *prometheus.CounterVec
	batchSize     prometheus.Histogram
	latency       *prometheus.HistogramVec
}

// New creates a recorder on the default registry. Call it once per process.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates a recorder on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		signalsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxpulse_signals_total",
				Help: "Signals persisted, by pair and action",
			},
			[]string{"pair", "action"},
		),
		rejections: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxpulse_signal_rejections_total",
				Help: "Generation requests that ended without a signal",
			},
			[]string{"kind"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		notifications: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxpulse_notifications_total",
				Help: "Outbound notifications by result",
			},
			[]string{"result"},
		),
		batchSize: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fxpulse_batch_pairs",
				Help:    "Pairs attempted per batch run",
				Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
			},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fxpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordSignal counts a persisted signal.
func (r *Recorder) RecordSignal(pair string, action models.Action) {
	r.signalsTotal.WithLabelValues(pair, string(action)).Inc()
}

// RecordRejection counts a generation that was declined.
func (r *Recorder) RecordRejection(kind models.RejectionKind) {
	r.rejections.WithLabelValues(string(kind)).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordNotification counts a notification attempt by result.
func (r *Recorder) RecordNotification(result string) {
	r.notifications.WithLabelValues(result).Inc()
}

// RecordBatch observes how many pairs a batch run attempted.
func (r *Recorder) RecordBatch(size int) {
	r.batchSize.Observe(float64(size))
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordSignal(string, models.Action)   {}
func (Nop) RecordRejection(models.RejectionKind) {}
func (Nop) RecordError(string)                   {}
func (Nop) RecordLatency(string, float64)        {}
func (Nop) RecordNotification(string)            {}
func (Nop) RecordBatch(int)                      {}
