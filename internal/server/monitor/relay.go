package monitor

import (
	"fmt"
	"time"

	"github.com/scusemua/execution-monitor/m/v2/internal/domain"
	"go.uber.org/zap"
)

// NotificationRelay is a domain.ExecutionListener that publishes session lifecycle events to the subscribers of
// the execution monitor channel. The topic of every event is the execution code.
type NotificationRelay struct {
	logger *zap.Logger
	hub    domain.NotificationHub
}

func NewNotificationRelay(hub domain.NotificationHub, logger *zap.Logger) *NotificationRelay {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &NotificationRelay{
		logger: logger,
		hub:    hub,
	}
}

func (r *NotificationRelay) OnExecutionStarted(session *domain.ExecutionSession) {
	r.publishStatusChange(session, "", session.Status, fmt.Sprintf("Execution %s started", session.ExecutionCode))
}

func (r *NotificationRelay) OnProgressUpdated(session *domain.ExecutionSession) {
	r.publishProgress(session)
}

func (r *NotificationRelay) OnExecutionCompleted(session *domain.ExecutionSession, previousStatus domain.ExecutionStatus) {
	r.publishStatusChange(session, previousStatus, session.Status,
		fmt.Sprintf("Execution %s completed with status %s", session.ExecutionCode, session.Status))
	r.publishProgress(session)
}

func (r *NotificationRelay) OnExecutionStopped(session *domain.ExecutionSession, previousStatus domain.ExecutionStatus) {
	r.publishStatusChange(session, previousStatus, session.Status, fmt.Sprintf("Execution %s was stopped", session.ExecutionCode))
}

// OnExecutionTimeout publishes a status change to TIMEOUT. The session itself keeps its RUNNING status.
func (r *NotificationRelay) OnExecutionTimeout(session *domain.ExecutionSession) {
	r.publishStatusChange(session, session.Status, domain.ExecutionTimeout,
		fmt.Sprintf("Execution %s has exceeded the time limit", session.ExecutionCode))
}

func (r *NotificationRelay) publishProgress(session *domain.ExecutionSession) {
	message := domain.NewEventMessage(domain.EventExecutionProgress,
		fmt.Sprintf("Execution %s is %d%% complete", session.ExecutionCode, session.ProgressPercent),
		&domain.ExecutionProgressPayload{
			ExecutionCode:  session.ExecutionCode,
			CompletedCases: session.CompletedCases,
			TotalCases:     session.TotalCases,
			Progress:       session.ProgressPercent,
			CurrentStatus:  session.Status,
			Timestamp:      session.LastUpdateTime.UnixMilli(),
		})

	r.publish(session.ExecutionCode, message)
}

func (r *NotificationRelay) publishStatusChange(session *domain.ExecutionSession, oldStatus domain.ExecutionStatus, newStatus domain.ExecutionStatus, text string) {
	message := domain.NewEventMessage(domain.EventExecutionStatusChange, text,
		&domain.ExecutionStatusChangePayload{
			ExecutionCode: session.ExecutionCode,
			OldStatus:     oldStatus,
			NewStatus:     newStatus,
			Timestamp:     time.Now().UnixMilli(),
		})

	r.publish(session.ExecutionCode, message)
}

func (r *NotificationRelay) publish(executionCode string, message *domain.EventMessage) {
	delivered := r.hub.Publish(domain.ChannelExecutionMonitor, executionCode, message)
	r.logger.Debug("Relayed execution event.", zap.String("execution-code", executionCode),
		zap.String("event-type", message.Type.String()), zap.Int("recipients", delivered))
}
