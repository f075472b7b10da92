package monitor

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mattn/go-colorable"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/scusemua/execution-monitor/m/v2/internal/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// sessionEntry is the registry's handle on a single session.
//
// Mutations of a session are serialized by mu and are published by storing a fresh copy in current,
// so readers never have to acquire mu. Each mutation appends its event to pending while mu is held,
// so the events of a single execution are queued in the order in which the mutations occurred.
// Listeners are invoked with mu released, which lets them call back into the monitor.
type sessionEntry struct {
	mu       sync.Mutex
	seq      uint64         // Insertion order.
	removed  bool           // Set once the entry has been removed from (or replaced within) the registry.
	pending  []sessionEvent // Events not yet delivered to the listeners. Guarded by mu.
	draining bool           // Set while a goroutine is delivering the pending events. Guarded by mu.
	current  atomic.Pointer[domain.ExecutionSession]
}

// sessionEvent is a lifecycle event waiting to be delivered to the listeners.
type sessionEvent struct {
	kind    string
	session *domain.ExecutionSession
	deliver func(listener domain.ExecutionListener, snapshot *domain.ExecutionSession)
}

func newSessionEntry(seq uint64, session *domain.ExecutionSession) *sessionEntry {
	entry := &sessionEntry{seq: seq}
	entry.current.Store(session)
	return entry
}

// load returns a copy of the latest version of the session.
func (e *sessionEntry) load() *domain.ExecutionSession {
	return e.current.Load().Clone()
}

// enqueue must be called with mu held. It returns true if the caller has become responsible for delivering
// the pending events, which it must do (by calling deliverPending) once mu has been released.
func (e *sessionEntry) enqueue(event sessionEvent) bool {
	e.pending = append(e.pending, event)
	if e.draining {
		return false
	}

	e.draining = true
	return true
}

// ExecutionMonitorImpl is the concurrent registry of execution sessions.
type ExecutionMonitorImpl struct {
	logger        *zap.Logger
	sugaredLogger *zap.SugaredLogger

	sessions  cmap.ConcurrentMap[string, *sessionEntry] // Map from execution code to the session's entry.
	sequence  atomic.Uint64                             // Source of insertion sequence numbers.
	listeners *listenerList                             // Observers of session lifecycle events.
	clock     func() time.Time                          // Returns the current time. Replaced in unit tests.
}

func NewExecutionMonitor(atom *zap.AtomicLevel) *ExecutionMonitorImpl {
	zapConfig := zap.NewDevelopmentEncoderConfig()
	zapConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(zapConfig), zapcore.AddSync(colorable.NewColorableStdout()), atom)
	logger := zap.New(core, zap.Development())
	if logger == nil {
		panic("failed to create logger for execution monitor")
	}

	return &ExecutionMonitorImpl{
		logger:        logger,
		sugaredLogger: logger.Sugar(),
		sessions:      cmap.New[*sessionEntry](),
		listeners:     newListenerList(logger),
		clock:         time.Now,
	}
}

// SetClock replaces the function used to obtain the current time.
func (m *ExecutionMonitorImpl) SetClock(clock func() time.Time) {
	m.clock = clock
}

func (m *ExecutionMonitorImpl) now() time.Time {
	return m.clock()
}

// StartMonitoring registers a new RUNNING session.
//
// Upstream callers retry, so re-registering an existing execution code is not an error: the existing
// session is replaced (and moved to the end of the insertion order), and the replaced session stops
// accepting updates.
func (m *ExecutionMonitorImpl) StartMonitoring(executionId int64, executionCode string, totalCases int) {
	session := domain.NewExecutionSession(executionId, executionCode, totalCases, m.now())
	entry := newSessionEntry(m.sequence.Add(1), session)

	entry.mu.Lock()

	var replaced *sessionEntry
	m.sessions.Upsert(executionCode, entry, func(exist bool, valueInMap *sessionEntry, newValue *sessionEntry) *sessionEntry {
		if exist {
			replaced = valueInMap
		}
		return newValue
	})

	if replaced != nil {
		replaced.mu.Lock()
		replaced.removed = true
		replaced.mu.Unlock()

		m.logger.Warn("Execution was already being monitored. Replacing existing session.",
			zap.String("execution-code", executionCode), zap.Int64("execution-id", executionId))
	}

	m.logger.Debug("Started monitoring execution.", zap.String("execution-code", executionCode),
		zap.Int64("execution-id", executionId), zap.Int("total-cases", totalCases))

	drain := entry.enqueue(sessionEvent{kind: "started", session: session,
		deliver: func(listener domain.ExecutionListener, snapshot *domain.ExecutionSession) {
			listener.OnExecutionStarted(snapshot)
		}})
	entry.mu.Unlock()

	if drain {
		m.deliverPending(entry)
	}
}

// UpdateProgress records the latest case counters of a RUNNING session.
// Unknown execution codes and sessions that have already finished are ignored.
func (m *ExecutionMonitorImpl) UpdateProgress(executionCode string, completedCases int, successCases int, failedCases int) {
	entry, ok := m.sessions.Get(executionCode)
	if !ok {
		m.logger.Debug("Ignoring progress update for unknown execution.", zap.String("execution-code", executionCode))
		return
	}

	m.update(entry, func(session *domain.ExecutionSession) (bool, *sessionEvent) {
		if session.IsFinished() {
			m.logger.Debug("Ignoring progress update for finished execution.", zap.String("execution-code", executionCode),
				zap.String("status", session.Status.String()))
			return false, nil
		}

		session.CompletedCases = completedCases
		session.SuccessCases = successCases
		session.FailedCases = failedCases
		session.LastUpdateTime = m.now()
		session.UpdateProgressPercent()

		return true, &sessionEvent{kind: "progress", session: session,
			deliver: func(listener domain.ExecutionListener, snapshot *domain.ExecutionSession) {
				listener.OnProgressUpdated(snapshot)
			}}
	})
}

// CompleteMonitoring finalizes a session. The end time is recorded exactly once, so completing an
// already-finished session has no effect. The error message is only retained for non-successful runs.
// A status that cannot finish a run (RUNNING) is rejected and the session is left unchanged.
func (m *ExecutionMonitorImpl) CompleteMonitoring(executionCode string, status domain.ExecutionStatus, errorMessage string) {
	if !status.IsCompletion() {
		m.logger.Warn("Ignoring completion with a non-final status.", zap.String("execution-code", executionCode),
			zap.String("status", status.String()))
		return
	}

	entry, ok := m.sessions.Get(executionCode)
	if !ok {
		m.logger.Debug("Ignoring completion of unknown execution.", zap.String("execution-code", executionCode))
		return
	}

	m.update(entry, func(session *domain.ExecutionSession) (bool, *sessionEvent) {
		if session.IsFinished() {
			m.logger.Warn("Execution has already been completed.", zap.String("execution-code", executionCode),
				zap.String("status", session.Status.String()), zap.String("requested-status", status.String()))
			return false, nil
		}

		now := m.now()
		previousStatus := session.Status
		session.Status = status
		session.EndTime = &now
		session.LastUpdateTime = now
		session.ProgressPercent = 100
		if status != domain.ExecutionSuccess {
			session.ErrorMessage = errorMessage
		}

		m.logger.Debug("Execution completed.", zap.String("execution-code", executionCode),
			zap.String("status", status.String()), zap.Duration("duration", session.Duration(now)))

		return true, &sessionEvent{kind: "completed", session: session,
			deliver: func(listener domain.ExecutionListener, snapshot *domain.ExecutionSession) {
				listener.OnExecutionCompleted(snapshot, previousStatus)
			}}
	})
}

// StopMonitoring removes a session immediately. Listeners receive a final snapshot whose status is CANCELLED,
// even though the registry no longer holds the session by the time they are notified.
func (m *ExecutionMonitorImpl) StopMonitoring(executionCode string) {
	entry, ok := m.sessions.Get(executionCode)
	if !ok {
		m.logger.Debug("Ignoring stop request for unknown execution.", zap.String("execution-code", executionCode))
		return
	}

	m.update(entry, func(session *domain.ExecutionSession) (bool, *sessionEvent) {
		m.sessions.RemoveCb(executionCode, func(key string, v *sessionEntry, exists bool) bool {
			return exists && v == entry
		})
		entry.removed = true

		now := m.now()
		previousStatus := session.Status
		session.Status = domain.ExecutionCancelled
		session.LastUpdateTime = now
		session.ProgressPercent = 100
		if session.EndTime == nil {
			session.EndTime = &now
		}

		m.logger.Debug("Stopped monitoring execution.", zap.String("execution-code", executionCode),
			zap.String("previous-status", previousStatus.String()))

		return true, &sessionEvent{kind: "stopped", session: session,
			deliver: func(listener domain.ExecutionListener, snapshot *domain.ExecutionSession) {
				listener.OnExecutionStopped(snapshot, previousStatus)
			}}
	})
}

// update applies mutate to a copy of the session while holding the entry's lock. mutate reports whether the
// copy should be stored and, optionally, an event for the listeners. Entries that have already been removed are
// skipped. Any pending events are delivered after the lock has been released.
func (m *ExecutionMonitorImpl) update(entry *sessionEntry, mutate func(session *domain.ExecutionSession) (bool, *sessionEvent)) {
	drain := func() bool {
		entry.mu.Lock()
		defer entry.mu.Unlock()

		if entry.removed {
			return false
		}

		session := entry.load()
		store, event := mutate(session)
		if store {
			entry.current.Store(session)
		}

		return event != nil && entry.enqueue(*event)
	}()

	if drain {
		m.deliverPending(entry)
	}
}

// deliverPending notifies the listeners of the entry's pending events, oldest first, until none remain.
//
// Only one goroutine delivers the events of an entry at a time. Events enqueued meanwhile (including those
// enqueued by a listener calling back into the monitor) are delivered by that goroutine once the current
// event has reached every listener.
func (m *ExecutionMonitorImpl) deliverPending(entry *sessionEntry) {
	for {
		entry.mu.Lock()
		if len(entry.pending) == 0 {
			entry.draining = false
			entry.mu.Unlock()
			return
		}

		event := entry.pending[0]
		entry.pending[0] = sessionEvent{}
		entry.pending = entry.pending[1:]
		entry.mu.Unlock()

		m.listeners.notify(event.kind, event.session, event.deliver)
	}
}

func (m *ExecutionMonitorImpl) GetSession(executionCode string) (*domain.ExecutionSession, bool) {
	entry, ok := m.sessions.Get(executionCode)
	if !ok {
		return nil, false
	}

	return entry.load(), true
}

// ListActiveSessions returns a point-in-time copy of every resident session, ordered by insertion.
func (m *ExecutionMonitorImpl) ListActiveSessions() []*domain.ExecutionSession {
	entries := m.sortedEntries()

	sessions := make([]*domain.ExecutionSession, 0, len(entries))
	for _, entry := range entries {
		sessions = append(sessions, entry.load())
	}

	return sessions
}

func (m *ExecutionMonitorImpl) GetStatistics() *domain.ExecutionStatistics {
	stats := &domain.ExecutionStatistics{}
	for item := range m.sessions.IterBuffered() {
		stats.Add(item.Val.current.Load())
	}

	return stats
}

// TopicStatus resolves GET_STATUS requests for the execution monitor channel.
func (m *ExecutionMonitorImpl) TopicStatus(topicId string) (string, int, bool) {
	session, ok := m.GetSession(topicId)
	if !ok {
		return "", 0, false
	}

	return session.Status.String(), session.ProgressPercent, true
}

func (m *ExecutionMonitorImpl) AddListener(listener domain.ExecutionListener) string {
	return m.listeners.add(listener)
}

func (m *ExecutionMonitorImpl) RemoveListener(listener domain.ExecutionListener) {
	if !m.listeners.remove(listener) {
		m.logger.Debug("Listener is not registered.", zap.String("listener", fmt.Sprintf("%T", listener)))
	}
}

func (m *ExecutionMonitorImpl) RemoveListenerRegistration(registrationId string) bool {
	return m.listeners.removeRegistration(registrationId)
}

// NumListeners returns the number of registered listeners.
func (m *ExecutionMonitorImpl) NumListeners() int {
	return m.listeners.len()
}

// Len returns the number of resident sessions.
func (m *ExecutionMonitorImpl) Len() int {
	return m.sessions.Count()
}

// ScanRunningSessions refreshes the executor metrics of every RUNNING session (if an executor status is given)
// and emits a timeout event for every RUNNING session that started more than 'threshold' before 'now'.
// Sessions are not modified by the timeout itself.
//
// Returns the execution codes of the sessions for which a timeout event was emitted.
func (m *ExecutionMonitorImpl) ScanRunningSessions(now time.Time, threshold time.Duration, executorStatus *domain.ExecutorStatus) []string {
	timedOut := make([]string, 0)

	for _, entry := range m.sortedEntries() {
		if m.scanRunningSession(entry, now, threshold, executorStatus) {
			timedOut = append(timedOut, entry.current.Load().ExecutionCode)
		}
	}

	return timedOut
}

func (m *ExecutionMonitorImpl) scanRunningSession(entry *sessionEntry, now time.Time, threshold time.Duration, executorStatus *domain.ExecutorStatus) (timedOut bool) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Failed to scan execution session.", zap.String("execution-code", entry.current.Load().ExecutionCode), zap.Any("panic", r))
			timedOut = false
		}
	}()

	m.update(entry, func(session *domain.ExecutionSession) (bool, *sessionEvent) {
		if session.Status != domain.ExecutionRunning || session.IsFinished() {
			return false, nil
		}

		if executorStatus != nil {
			session.ActiveWorkers = executorStatus.ActiveWorkers
			session.QueuedTasks = executorStatus.QueuedTasks
		}

		if now.Sub(session.StartTime) <= threshold {
			return executorStatus != nil, nil
		}

		m.logger.Warn("Execution appears to be stuck.", zap.String("execution-code", session.ExecutionCode),
			zap.Duration("running-for", now.Sub(session.StartTime)), zap.Duration("threshold", threshold))

		timedOut = true
		return executorStatus != nil, &sessionEvent{kind: "timeout", session: session,
			deliver: func(listener domain.ExecutionListener, snapshot *domain.ExecutionSession) {
				listener.OnExecutionTimeout(snapshot)
			}}
	})

	return timedOut
}

// EvictFinishedSessions removes every session whose end time is more than 'retention' before 'now'.
// Sessions that have not finished are never evicted. Returns the execution codes of the evicted sessions.
func (m *ExecutionMonitorImpl) EvictFinishedSessions(now time.Time, retention time.Duration) []string {
	evicted := make([]string, 0)

	for item := range m.sessions.IterBuffered() {
		entry := item.Val
		session := entry.current.Load()
		if session.EndTime == nil || now.Sub(*session.EndTime) <= retention {
			continue
		}

		entry.mu.Lock()
		if !entry.removed {
			m.sessions.RemoveCb(item.Key, func(key string, v *sessionEntry, exists bool) bool {
				return exists && v == entry
			})
			entry.removed = true
			evicted = append(evicted, item.Key)
		}
		entry.mu.Unlock()
	}

	if len(evicted) > 0 {
		m.logger.Debug("Evicted finished execution sessions.", zap.Strings("execution-codes", evicted))
	}

	return evicted
}

// sortedEntries returns the current entries ordered by insertion.
func (m *ExecutionMonitorImpl) sortedEntries() []*sessionEntry {
	entries := make([]*sessionEntry, 0, m.sessions.Count())
	for item := range m.sessions.IterBuffered() {
		entries = append(entries, item.Val)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq < entries[j].seq
	})

	return entries
}
