package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	ExecutionRunning   ExecutionStatus = "RUNNING"
	ExecutionSuccess   ExecutionStatus = "SUCCESS"
	ExecutionFailed    ExecutionStatus = "FAILED"
	ExecutionCancelled ExecutionStatus = "CANCELLED"
	ExecutionTimeout   ExecutionStatus = "TIMEOUT" // Advisory only. The underlying run is not stopped.
)

var (
	ExecutionStatuses = []ExecutionStatus{ExecutionRunning, ExecutionSuccess, ExecutionFailed, ExecutionCancelled, ExecutionTimeout}
)

type ExecutionStatus string

func (s ExecutionStatus) String() string {
	return string(s)
}

// IsTerminal returns true for the statuses that finish a run (SUCCESS, FAILED, and CANCELLED).
func (s ExecutionStatus) IsTerminal() bool {
	return s == ExecutionSuccess || s == ExecutionFailed || s == ExecutionCancelled
}

// ParseExecutionStatus converts the given string (case-insensitive) to an ExecutionStatus.
func ParseExecutionStatus(status string) (ExecutionStatus, error) {
	normalized := ExecutionStatus(strings.ToUpper(strings.TrimSpace(status)))
	for _, known := range ExecutionStatuses {
		if known == normalized {
			return known, nil
		}
	}

	return "", fmt.Errorf("%w: \"%s\"", ErrInvalidStatus, status)
}

// IsCompletion returns true for the statuses a run may be completed with. Every status but RUNNING qualifies.
func (s ExecutionStatus) IsCompletion() bool {
	return s != ExecutionRunning && s != ""
}

// ParseCompletionStatus is ParseExecutionStatus restricted to the statuses for which IsCompletion is true.
func ParseCompletionStatus(status string) (ExecutionStatus, error) {
	parsed, err := ParseExecutionStatus(status)
	if err != nil {
		return "", err
	}

	if !parsed.IsCompletion() {
		return "", fmt.Errorf("%w: \"%s\"", ErrNonCompletionStatus, status)
	}

	return parsed, nil
}

// ExecutionSession is the state of one in-flight or recently-finished test-execution run.
//
// Sessions are owned by the ExecutionMonitor. Everything handed out by the monitor is a copy.
type ExecutionSession struct {
	ExecutionId     int64           `json:"executionId"`
	ExecutionCode   string          `json:"executionCode"`
	Status          ExecutionStatus `json:"status"`
	TotalCases      int             `json:"totalCases"`
	CompletedCases  int             `json:"completedCases"`
	SuccessCases    int             `json:"successCases"`
	FailedCases     int             `json:"failedCases"`
	ProgressPercent int             `json:"progressPercent"`
	StartTime       time.Time       `json:"startTime"`
	EndTime         *time.Time      `json:"endTime,omitempty"`
	LastUpdateTime  time.Time       `json:"lastUpdateTime"`
	ActiveWorkers   int             `json:"activeWorkers"` // Written only by the health scanner.
	QueuedTasks     int             `json:"queuedTasks"`   // Written only by the health scanner.
	ErrorMessage    string          `json:"errorMessage,omitempty"`
}

// NewExecutionSession creates a RUNNING session with zeroed counters.
func NewExecutionSession(executionId int64, executionCode string, totalCases int, now time.Time) *ExecutionSession {
	return &ExecutionSession{
		ExecutionId:    executionId,
		ExecutionCode:  executionCode,
		Status:         ExecutionRunning,
		TotalCases:     totalCases,
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Clone returns a deep copy of the session.
func (s *ExecutionSession) Clone() *ExecutionSession {
	c := *s
	if s.EndTime != nil {
		t := *s.EndTime
		c.EndTime = &t
	}
	return &c
}

// UpdateProgressPercent recomputes ProgressPercent from the case counters.
func (s *ExecutionSession) UpdateProgressPercent() {
	s.ProgressPercent = CalculateProgress(s.CompletedCases, s.TotalCases)
}

// IsFinished returns true once the session's end time has been recorded.
func (s *ExecutionSession) IsFinished() bool {
	return s.EndTime != nil
}

// Duration returns how long the session ran. Sessions that have not finished are measured up to 'now'.
func (s *ExecutionSession) Duration(now time.Time) time.Duration {
	if s.EndTime != nil {
		return s.EndTime.Sub(s.StartTime)
	}

	return now.Sub(s.StartTime)
}

func (s *ExecutionSession) String() string {
	return fmt.Sprintf("ExecutionSession[code=%s, id=%d, status=%s, progress=%d%%, completed=%d/%d]",
		s.ExecutionCode, s.ExecutionId, s.Status, s.ProgressPercent, s.CompletedCases, s.TotalCases)
}

// CalculateProgress returns floor(completed / total * 100), or 0 if total is not positive.
func CalculateProgress(completed int, total int) int {
	if total <= 0 {
		return 0
	}

	return completed * 100 / total
}

// ExecutionStatistics is an aggregate computed over every session that is currently resident in the monitor.
// Finished sessions remain resident (and are therefore counted) until they are evicted.
type ExecutionStatistics struct {
	TotalActiveSessions int `json:"totalActiveSessions"`
	RunningSessions     int `json:"runningSessions"`
	SuccessSessions     int `json:"successSessions"`
	FailedSessions      int `json:"failedSessions"`
	CancelledSessions   int `json:"cancelledSessions"`
	TimeoutSessions     int `json:"timeoutSessions"`
	TotalCases          int `json:"totalCases"`
	CompletedCases      int `json:"completedCases"`
	SuccessCases        int `json:"successCases"`
	FailedCases         int `json:"failedCases"`
}

// Add folds the given session into the statistics.
func (s *ExecutionStatistics) Add(session *ExecutionSession) {
	s.TotalActiveSessions++

	switch session.Status {
	case ExecutionRunning:
		s.RunningSessions++
	case ExecutionSuccess:
		s.SuccessSessions++
	case ExecutionFailed:
		s.FailedSessions++
	case ExecutionCancelled:
		s.CancelledSessions++
	case ExecutionTimeout:
		s.TimeoutSessions++
	}

	s.TotalCases += session.TotalCases
	s.CompletedCases += session.CompletedCases
	s.SuccessCases += session.SuccessCases
	s.FailedCases += session.FailedCases
}

// ExecutionMonitor is the registry of active execution sessions.
//
// Operations that reference an unknown execution code are silent no-ops.
type ExecutionMonitor interface {
	// StartMonitoring registers a new RUNNING session, replacing any existing session with the same code.
	StartMonitoring(executionId int64, executionCode string, totalCases int)

	// UpdateProgress records the latest case counters for the session and recomputes its progress.
	UpdateProgress(executionCode string, completedCases int, successCases int, failedCases int)

	// CompleteMonitoring finalizes the session with the given status. The error message may be empty.
	CompleteMonitoring(executionCode string, status ExecutionStatus, errorMessage string)

	// StopMonitoring cancels tracking of the session and removes it immediately.
	StopMonitoring(executionCode string)

	// GetSession returns a snapshot of the session, if it exists.
	GetSession(executionCode string) (*ExecutionSession, bool)

	// ListActiveSessions returns snapshots of every resident session in insertion order.
	ListActiveSessions() []*ExecutionSession

	// GetStatistics computes aggregate statistics over every resident session.
	GetStatistics() *ExecutionStatistics

	// AddListener registers an observer of session lifecycle events and returns the ID of the registration.
	AddListener(listener ExecutionListener) string

	// RemoveListener unregisters the first registration of the given observer.
	// An observer whose dynamic type is not comparable can only be removed with RemoveListenerRegistration.
	RemoveListener(listener ExecutionListener)

	// RemoveListenerRegistration unregisters the listener added under the given registration ID.
	// Returns false if there is no such registration.
	RemoveListenerRegistration(registrationId string) bool
}

// ExecutionListener observes the lifecycle of execution sessions.
// Every session passed to a listener is a snapshot that the listener may retain.
type ExecutionListener interface {
	OnExecutionStarted(session *ExecutionSession)
	OnProgressUpdated(session *ExecutionSession)
	OnExecutionCompleted(session *ExecutionSession, previousStatus ExecutionStatus)
	OnExecutionStopped(session *ExecutionSession, previousStatus ExecutionStatus)
	OnExecutionTimeout(session *ExecutionSession)
}

// ExecutorStatus is a point-in-time view of the executor pool that runs test cases.
type ExecutorStatus struct {
	ActiveWorkers int `json:"activeWorkers"`
	QueuedTasks   int `json:"queuedTasks"`
}

// ExecutorPool reports the status of the pool executing test cases.
type ExecutorPool interface {
	GetExecutorStatus() ExecutorStatus
}
