package metrics

import (
	"time"

	"github.com/mattn/go-colorable"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	SweepTimeout  = "timeout"
	SweepEviction = "eviction"
)

// PrometheusMetricsWrapper is a simple wrapper around several Prometheus metrics.
//
// A nil *PrometheusMetricsWrapper is valid; every recording method is then a no-op.
type PrometheusMetricsWrapper struct {
	logger *zap.Logger

	// ExecutionEventsTotal counts the lifecycle events emitted by the execution monitor, by event kind
	// (started, progress, completed, stopped, timeout).
	ExecutionEventsTotal *prometheus.CounterVec

	// ExecutionDurationSeconds observes how long executions ran, by their final status.
	ExecutionDurationSeconds *prometheus.HistogramVec

	NotificationsPublishedTotal       *prometheus.CounterVec
	NotificationDeliveryFailuresTotal *prometheus.CounterVec

	// ConnectedSubscribers is the number of currently-open WebSocket connections.
	ConnectedSubscribers prometheus.Gauge

	// SweepDurationSeconds observes how long each periodic sweep of the health scanner took.
	SweepDurationSeconds *prometheus.HistogramVec
}

// NewPrometheusMetricsWrapper creates and registers all the metrics encapsulated by the
// PrometheusMetricsWrapper struct with the given registerer (or the default registerer, if nil).
func NewPrometheusMetricsWrapper(registerer prometheus.Registerer, atom *zap.AtomicLevel) (*PrometheusMetricsWrapper, []error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	metricsWrapper := &PrometheusMetricsWrapper{
		// Counter metrics.
		ExecutionEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "test_platform",
			Subsystem: "execution_monitor",
			Name:      "execution_events_total",
		}, []string{"event"}),
		NotificationsPublishedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "test_platform",
			Subsystem: "notifications",
			Name:      "published_total",
		}, []string{"channel"}),
		NotificationDeliveryFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "test_platform",
			Subsystem: "notifications",
			Name:      "delivery_failures_total",
		}, []string{"channel"}),

		// Histogram metrics.
		ExecutionDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "test_platform",
			Subsystem: "execution_monitor",
			Name:      "execution_duration_seconds",
			Buckets: []float64{1, 10, 30, 60 /* 1 min */, 300 /* 5 min */, 600 /* 10 min */, 1800 /* 30 min */, 3600, /* 1hr */
				7200 /* 2 hr */, 21600 /* 6 hr */, 43200 /* 12 hr */, 86400 /* 24 hr */},
		}, []string{"status"}),
		SweepDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "test_platform",
			Subsystem: "execution_monitor",
			Name:      "sweep_duration_seconds",
			Buckets:   []float64{1e-5, 1e-4, 1e-3, 1e-2, 0.1, 0.5, 1, 5},
		}, []string{"sweep"}),

		// Gauge metrics.
		ConnectedSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "test_platform",
			Subsystem: "notifications",
			Name:      "connected_subscribers",
			Help:      "Number of open WebSocket connections",
		}),
	}

	zapConfig := zap.NewDevelopmentEncoderConfig()
	zapConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(zapConfig), zapcore.AddSync(colorable.NewColorableStdout()), atom)
	logger := zap.New(core, zap.Development())
	if logger == nil {
		panic("failed to create logger for metrics wrapper")
	}
	metricsWrapper.logger = logger

	errs := make([]error, 0)
	collectors := map[string]prometheus.Collector{
		"ExecutionEventsTotal":              metricsWrapper.ExecutionEventsTotal,
		"ExecutionDurationSeconds":          metricsWrapper.ExecutionDurationSeconds,
		"NotificationsPublishedTotal":       metricsWrapper.NotificationsPublishedTotal,
		"NotificationDeliveryFailuresTotal": metricsWrapper.NotificationDeliveryFailuresTotal,
		"ConnectedSubscribers":              metricsWrapper.ConnectedSubscribers,
		"SweepDurationSeconds":              metricsWrapper.SweepDurationSeconds,
	}

	for name, collector := range collectors {
		if err := registerer.Register(collector); err != nil {
			metricsWrapper.logger.Error("Failed to register Prometheus metric.", zap.String("metric", name), zap.Error(err))
			errs = append(errs, err)
		}
	}

	return metricsWrapper, errs
}

// RecordExecutionEvent increments the counter of the given execution lifecycle event.
func (w *PrometheusMetricsWrapper) RecordExecutionEvent(event string) {
	if w == nil {
		return
	}

	w.ExecutionEventsTotal.WithLabelValues(event).Inc()
}

func (w *PrometheusMetricsWrapper) ObserveExecutionDuration(status string, duration time.Duration) {
	if w == nil {
		return
	}

	w.ExecutionDurationSeconds.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordPublish records a publish on the given channel and the number of subscribers it failed to reach.
func (w *PrometheusMetricsWrapper) RecordPublish(channel string, failures int) {
	if w == nil {
		return
	}

	w.NotificationsPublishedTotal.WithLabelValues(channel).Inc()
	if failures > 0 {
		w.NotificationDeliveryFailuresTotal.WithLabelValues(channel).Add(float64(failures))
	}
}

func (w *PrometheusMetricsWrapper) SubscriberConnected() {
	if w == nil {
		return
	}

	w.ConnectedSubscribers.Inc()
}

func (w *PrometheusMetricsWrapper) SubscriberDisconnected() {
	if w == nil {
		return
	}

	w.ConnectedSubscribers.Dec()
}

// ObserveSweep records how long one tick of the given sweep took.
func (w *PrometheusMetricsWrapper) ObserveSweep(sweep string, duration time.Duration) {
	if w == nil {
		return
	}

	w.SweepDurationSeconds.WithLabelValues(sweep).Observe(duration.Seconds())
}
