package report

import (
	"fmt"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/scusemua/execution-monitor/m/v2/internal/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Notifier publishes report generation events to the subscribers of the REPORT_GENERATION channel.
// The topic of every event is the report ID.
type Notifier struct {
	logger        *zap.Logger
	sugaredLogger *zap.SugaredLogger

	hub domain.NotificationHub
}

func NewNotifier(hub domain.NotificationHub, atom *zap.AtomicLevel) *Notifier {
	notifier := &Notifier{
		hub: hub,
	}

	zapConfig := zap.NewDevelopmentEncoderConfig()
	zapConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(zapConfig), zapcore.AddSync(colorable.NewColorableStdout()), atom)
	logger := zap.New(core, zap.Development())
	if logger == nil {
		panic("failed to create logger for report notifier")
	}

	notifier.logger = logger
	notifier.sugaredLogger = logger.Sugar()

	return notifier
}

// NotifyProgress publishes a PROGRESS_UPDATE for the report and returns the number of subscribers reached.
func (n *Notifier) NotifyProgress(reportId string, progress int, message string) (int, error) {
	if reportId == "" {
		return 0, fmt.Errorf("%w: \"reportId\"", domain.ErrMissingField)
	}

	if progress < 0 || progress > 100 {
		return 0, fmt.Errorf("%w: %d", domain.ErrInvalidProgress, progress)
	}

	now := time.Now().UnixMilli()
	event := domain.NewEventMessage(domain.EventProgressUpdate, message, &domain.ReportProgressPayload{
		ReportId:  reportId,
		Progress:  progress,
		Message:   message,
		Timestamp: now,
	})

	delivered := n.hub.Publish(domain.ChannelReportGeneration, reportId, event)

	n.logger.Debug("Published report progress.", zap.String("report-id", reportId), zap.Int("progress", progress),
		zap.Int("recipients", delivered))

	return delivered, nil
}

// NotifyCompleted publishes a REPORT_COMPLETED for the report and returns the number of subscribers reached.
func (n *Notifier) NotifyCompleted(reportId string, reportUrl string, success bool) (int, error) {
	if reportId == "" {
		return 0, fmt.Errorf("%w: \"reportId\"", domain.ErrMissingField)
	}

	text := fmt.Sprintf("Report %s generated successfully", reportId)
	if !success {
		text = fmt.Sprintf("Report %s generation failed", reportId)
	}

	event := domain.NewEventMessage(domain.EventReportCompleted, text, &domain.ReportCompletedPayload{
		ReportId:  reportId,
		ReportUrl: reportUrl,
		Success:   success,
		Timestamp: time.Now().UnixMilli(),
	})

	delivered := n.hub.Publish(domain.ChannelReportGeneration, reportId, event)

	n.logger.Debug("Published report completion.", zap.String("report-id", reportId), zap.Bool("success", success),
		zap.Int("recipients", delivered))

	return delivered, nil
}
