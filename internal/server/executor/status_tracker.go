package executor

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/scusemua/execution-monitor/m/v2/internal/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type reportedStatus struct {
	status     domain.ExecutorStatus
	reportedAt time.Time
}

// StatusTracker is a domain.ExecutorPool backed by the status most recently reported by the execution engine.
//
// Until the first report arrives, GetExecutorStatus returns a zero ExecutorStatus.
type StatusTracker struct {
	logger        *zap.Logger
	sugaredLogger *zap.SugaredLogger

	latest atomic.Pointer[reportedStatus]
}

func NewStatusTracker(atom *zap.AtomicLevel) *StatusTracker {
	tracker := &StatusTracker{}

	zapConfig := zap.NewDevelopmentEncoderConfig()
	zapConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(zapConfig), zapcore.AddSync(colorable.NewColorableStdout()), atom)
	logger := zap.New(core, zap.Development())
	if logger == nil {
		panic("failed to create logger for executor status tracker")
	}

	tracker.logger = logger
	tracker.sugaredLogger = logger.Sugar()

	return tracker
}

// Report records the latest status of the executor pool.
func (t *StatusTracker) Report(status domain.ExecutorStatus) error {
	if status.ActiveWorkers < 0 || status.QueuedTasks < 0 {
		return fmt.Errorf("%w: activeWorkers=%d, queuedTasks=%d", domain.ErrInvalidExecutorStatus,
			status.ActiveWorkers, status.QueuedTasks)
	}

	t.latest.Store(&reportedStatus{status: status, reportedAt: time.Now()})

	t.logger.Debug("Executor status reported.", zap.Int("active-workers", status.ActiveWorkers),
		zap.Int("queued-tasks", status.QueuedTasks))

	return nil
}

func (t *StatusTracker) GetExecutorStatus() domain.ExecutorStatus {
	latest := t.latest.Load()
	if latest == nil {
		return domain.ExecutorStatus{}
	}

	return latest.status
}

// LastReportTime returns when the status was last reported, and false if no status has been reported yet.
func (t *StatusTracker) LastReportTime() (time.Time, bool) {
	latest := t.latest.Load()
	if latest == nil {
		return time.Time{}, false
	}

	return latest.reportedAt, true
}
