package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/scusemua/execution-monitor/m/v2/internal/domain"
	"github.com/scusemua/execution-monitor/m/v2/internal/server/metrics"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	ErrScannerAlreadyStarted = errors.New("health scanner has already been started")
)

// HealthScanner periodically sweeps the sessions of an ExecutionMonitorImpl.
//
// The timeout sweep flags RUNNING sessions that have been running for longer than the stuck threshold and
// refreshes their executor metrics. The eviction sweep removes finished sessions once the retention window
// has elapsed. The two sweeps run on independent tickers.
type HealthScanner struct {
	logger        *zap.Logger
	sugaredLogger *zap.SugaredLogger

	monitor      *ExecutionMonitorImpl
	executorPool domain.ExecutorPool // May be nil, in which case executor metrics are not refreshed.
	metrics      *metrics.PrometheusMetricsWrapper

	timeoutScanInterval time.Duration
	stuckThreshold      time.Duration
	evictionInterval    time.Duration
	retentionWindow     time.Duration

	mu      sync.Mutex // Guards cancel.
	cancel  context.CancelFunc
	running sync.WaitGroup
}

func NewHealthScanner(monitor *ExecutionMonitorImpl, executorPool domain.ExecutorPool, opts *domain.Configuration, metricsWrapper *metrics.PrometheusMetricsWrapper, atom *zap.AtomicLevel) *HealthScanner {
	scanner := &HealthScanner{
		monitor:             monitor,
		executorPool:        executorPool,
		metrics:             metricsWrapper,
		timeoutScanInterval: opts.TimeoutScanIntervalDuration(),
		stuckThreshold:      opts.StuckThresholdDuration(),
		evictionInterval:    opts.EvictionIntervalDuration(),
		retentionWindow:     opts.RetentionWindowDuration(),
	}

	zapConfig := zap.NewDevelopmentEncoderConfig()
	zapConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(zapConfig), zapcore.AddSync(colorable.NewColorableStdout()), atom)
	logger := zap.New(core, zap.Development())
	if logger == nil {
		panic("failed to create logger for health scanner")
	}

	scanner.logger = logger
	scanner.sugaredLogger = logger.Sugar()

	return scanner
}

// Start launches both sweeps. They run until Stop is called or the given context is cancelled.
func (s *HealthScanner) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return ErrScannerAlreadyStarted
	}

	ctx, s.cancel = context.WithCancel(ctx)

	s.running.Add(2)
	go s.runPeriodically(ctx, metrics.SweepTimeout, s.timeoutScanInterval, func() { s.ScanForTimeouts() })
	go s.runPeriodically(ctx, metrics.SweepEviction, s.evictionInterval, func() { s.EvictFinishedSessions() })

	s.logger.Debug("Started health scanner.",
		zap.Duration("timeout-scan-interval", s.timeoutScanInterval),
		zap.Duration("stuck-threshold", s.stuckThreshold),
		zap.Duration("eviction-interval", s.evictionInterval),
		zap.Duration("retention-window", s.retentionWindow))

	return nil
}

// Stop cancels both sweeps and waits for any in-progress tick to return. Stop may be called more than once.
func (s *HealthScanner) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	s.running.Wait()

	s.logger.Debug("Stopped health scanner.")
}

func (s *HealthScanner) runPeriodically(ctx context.Context, sweep string, interval time.Duration, tick func()) {
	defer s.running.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runTick(sweep, tick)
		}
	}
}

// runTick runs a single tick of a sweep. A tick that panics is logged; the schedule is unaffected.
func (s *HealthScanner) runTick(sweep string, tick func()) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Health scanner sweep failed.", zap.String("sweep", sweep), zap.Any("panic", r))
		}

		s.metrics.ObserveSweep(sweep, time.Since(start))
	}()

	tick()
}

// ScanForTimeouts performs one tick of the timeout sweep and returns the number of timeout events emitted.
func (s *HealthScanner) ScanForTimeouts() int {
	executorStatus := s.queryExecutorStatus()
	timedOut := s.monitor.ScanRunningSessions(s.monitor.now(), s.stuckThreshold, executorStatus)

	if len(timedOut) > 0 {
		s.logger.Warn("Detected stuck executions.", zap.Strings("execution-codes", timedOut))
	}

	return len(timedOut)
}

// EvictFinishedSessions performs one tick of the eviction sweep and returns the number of sessions evicted.
func (s *HealthScanner) EvictFinishedSessions() int {
	return len(s.monitor.EvictFinishedSessions(s.monitor.now(), s.retentionWindow))
}

// queryExecutorStatus returns nil if there is no executor pool or if querying it fails.
func (s *HealthScanner) queryExecutorStatus() (status *domain.ExecutorStatus) {
	if s.executorPool == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Failed to query executor pool status.", zap.Any("panic", r))
			status = nil
		}
	}()

	executorStatus := s.executorPool.GetExecutorStatus()
	return &executorStatus
}
