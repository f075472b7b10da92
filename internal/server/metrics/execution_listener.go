package metrics

import (
	"github.com/scusemua/execution-monitor/m/v2/internal/domain"
)

// ExecutionMetricsListener is a domain.ExecutionListener that records execution lifecycle events as Prometheus metrics.
type ExecutionMetricsListener struct {
	metrics *PrometheusMetricsWrapper
}

func NewExecutionMetricsListener(metrics *PrometheusMetricsWrapper) *ExecutionMetricsListener {
	return &ExecutionMetricsListener{metrics: metrics}
}

func (l *ExecutionMetricsListener) OnExecutionStarted(_ *domain.ExecutionSession) {
	l.metrics.RecordExecutionEvent("started")
}

func (l *ExecutionMetricsListener) OnProgressUpdated(_ *domain.ExecutionSession) {
	l.metrics.RecordExecutionEvent("progress")
}

func (l *ExecutionMetricsListener) OnExecutionCompleted(session *domain.ExecutionSession, _ domain.ExecutionStatus) {
	l.metrics.RecordExecutionEvent("completed")
	l.metrics.ObserveExecutionDuration(session.Status.String(), session.Duration(session.LastUpdateTime))
}

func (l *ExecutionMetricsListener) OnExecutionStopped(session *domain.ExecutionSession, _ domain.ExecutionStatus) {
	l.metrics.RecordExecutionEvent("stopped")
	l.metrics.ObserveExecutionDuration(session.Status.String(), session.Duration(session.LastUpdateTime))
}

func (l *ExecutionMetricsListener) OnExecutionTimeout(_ *domain.ExecutionSession) {
	l.metrics.RecordExecutionEvent("timeout")
}
