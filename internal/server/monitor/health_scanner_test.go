package monitor_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/scusemua/execution-monitor/m/v2/internal/domain"
	"github.com/scusemua/execution-monitor/m/v2/internal/mock_domain"
	"github.com/scusemua/execution-monitor/m/v2/internal/server/metrics"
	"github.com/scusemua/execution-monitor/m/v2/internal/server/monitor"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

var _ = Describe("HealthScanner Tests", func() {
	atom := zap.NewAtomicLevelAt(zap.DebugLevel)

	var (
		executionMonitor *monitor.ExecutionMonitorImpl
		executorPool     *mock_domain.MockExecutorPool
		listener         *recordingListener
		clock            *manualClock
		opts             *domain.Configuration
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())

		clock = newManualClock(time.UnixMilli(1_700_000_000_000))
		executionMonitor = monitor.NewExecutionMonitor(&atom)
		executionMonitor.SetClock(clock.Now)

		listener = &recordingListener{}
		executionMonitor.AddListener(listener)

		executorPool = mock_domain.NewMockExecutorPool(mockCtrl)

		opts = domain.GetDefaultConfig()
		opts.StuckThreshold = "2h"
		opts.RetentionWindow = "1h"
	})

	countKind := func(kind string) int {
		count := 0
		for _, k := range listener.Kinds() {
			if k == kind {
				count++
			}
		}
		return count
	}

	Context("Timeout sweep", func() {
		var scanner *monitor.HealthScanner

		BeforeEach(func() {
			scanner = monitor.NewHealthScanner(executionMonitor, executorPool, opts, nil, &atom)
		})

		It("Will not emit timeouts for sessions below the threshold", func() {
			executorPool.EXPECT().GetExecutorStatus().AnyTimes().Return(domain.ExecutorStatus{ActiveWorkers: 2, QueuedTasks: 3})

			executionMonitor.StartMonitoring(1, "EXEC-001", 10)
			clock.Advance(2 * time.Hour)

			Expect(scanner.ScanForTimeouts()).To(Equal(0))
			Expect(countKind("timeout")).To(Equal(0))
		})

		It("Will emit one timeout per stuck RUNNING session per tick", func() {
			executorPool.EXPECT().GetExecutorStatus().Times(2).Return(domain.ExecutorStatus{ActiveWorkers: 4, QueuedTasks: 1})

			executionMonitor.StartMonitoring(1, "EXEC-STUCK", 10)
			executionMonitor.StartMonitoring(2, "EXEC-DONE", 10)
			executionMonitor.CompleteMonitoring("EXEC-DONE", domain.ExecutionSuccess, "")

			clock.Advance(time.Hour)
			executionMonitor.StartMonitoring(3, "EXEC-FRESH", 10)

			clock.Advance(time.Hour + time.Millisecond)

			Expect(scanner.ScanForTimeouts()).To(Equal(1))
			Expect(countKind("timeout")).To(Equal(1))

			Expect(scanner.ScanForTimeouts()).To(Equal(1))
			Expect(countKind("timeout")).To(Equal(2))

			events := listener.Events()
			timeout := events[len(events)-1]
			Expect(timeout.Kind).To(Equal("timeout"))
			Expect(timeout.Session.ExecutionCode).To(Equal("EXEC-STUCK"))

			// The timeout is advisory: the session keeps running.
			session, _ := executionMonitor.GetSession("EXEC-STUCK")
			Expect(session.Status).To(Equal(domain.ExecutionRunning))
		})

		It("Will refresh the executor metrics of every RUNNING session", func() {
			executorPool.EXPECT().GetExecutorStatus().Times(1).Return(domain.ExecutorStatus{ActiveWorkers: 6, QueuedTasks: 12})

			executionMonitor.StartMonitoring(1, "EXEC-001", 10)
			executionMonitor.StartMonitoring(2, "EXEC-002", 10)
			executionMonitor.CompleteMonitoring("EXEC-002", domain.ExecutionFailed, "boom")
			lastUpdate := clock.Now()

			clock.Advance(time.Minute)
			scanner.ScanForTimeouts()

			running, _ := executionMonitor.GetSession("EXEC-001")
			Expect(running.ActiveWorkers).To(Equal(6))
			Expect(running.QueuedTasks).To(Equal(12))
			Expect(running.LastUpdateTime).To(Equal(lastUpdate))

			finished, _ := executionMonitor.GetSession("EXEC-002")
			Expect(finished.ActiveWorkers).To(Equal(0))
			Expect(finished.QueuedTasks).To(Equal(0))
		})

		It("Will tolerate an executor pool that panics", func() {
			executorPool.EXPECT().GetExecutorStatus().Times(1).DoAndReturn(func() domain.ExecutorStatus {
				panic(errors.New("executor unavailable"))
			})

			executionMonitor.StartMonitoring(1, "EXEC-001", 10)
			clock.Advance(3 * time.Hour)

			var timedOut int
			Expect(func() { timedOut = scanner.ScanForTimeouts() }).ToNot(Panic())
			Expect(timedOut).To(Equal(1))

			session, _ := executionMonitor.GetSession("EXEC-001")
			Expect(session.ActiveWorkers).To(Equal(0))
		})

		It("Will continue the sweep when a listener panics", func() {
			executorPool.EXPECT().GetExecutorStatus().AnyTimes().Return(domain.ExecutorStatus{})
			executionMonitor.AddListener(&panickingListener{})

			executionMonitor.StartMonitoring(1, "EXEC-001", 10)
			executionMonitor.StartMonitoring(2, "EXEC-002", 10)
			clock.Advance(3 * time.Hour)

			Expect(scanner.ScanForTimeouts()).To(Equal(2))
			Expect(countKind("timeout")).To(Equal(2))
		})

		It("Will work without an executor pool", func() {
			scanner = monitor.NewHealthScanner(executionMonitor, nil, opts, nil, &atom)

			executionMonitor.StartMonitoring(1, "EXEC-001", 10)
			clock.Advance(3 * time.Hour)

			Expect(scanner.ScanForTimeouts()).To(Equal(1))
		})
	})

	Context("Eviction sweep", func() {
		var scanner *monitor.HealthScanner

		BeforeEach(func() {
			scanner = monitor.NewHealthScanner(executionMonitor, executorPool, opts, nil, &atom)
		})

		It("Will evict a session only once the retention window has elapsed", func() {
			executionMonitor.StartMonitoring(1, "EXEC-001", 10)
			executionMonitor.CompleteMonitoring("EXEC-001", domain.ExecutionSuccess, "")

			clock.Advance(time.Hour)
			Expect(scanner.EvictFinishedSessions()).To(Equal(0))
			_, found := executionMonitor.GetSession("EXEC-001")
			Expect(found).To(BeTrue())

			clock.Advance(time.Millisecond)
			Expect(scanner.EvictFinishedSessions()).To(Equal(1))
			_, found = executionMonitor.GetSession("EXEC-001")
			Expect(found).To(BeFalse())
		})

		It("Will never evict a session that has not finished", func() {
			executionMonitor.StartMonitoring(1, "EXEC-001", 10)

			clock.Advance(24 * 365 * time.Hour)
			Expect(scanner.EvictFinishedSessions()).To(Equal(0))

			_, found := executionMonitor.GetSession("EXEC-001")
			Expect(found).To(BeTrue())
		})

		It("Will not emit listener events when evicting", func() {
			executionMonitor.StartMonitoring(1, "EXEC-001", 10)
			executionMonitor.CompleteMonitoring("EXEC-001", domain.ExecutionSuccess, "")

			clock.Advance(2 * time.Hour)
			Expect(scanner.EvictFinishedSessions()).To(Equal(1))
			Expect(listener.Kinds()).To(Equal([]string{"started", "completed"}))
		})
	})

	Context("Scheduling", func() {
		It("Will run both sweeps periodically until stopped", func() {
			executorPool.EXPECT().GetExecutorStatus().MinTimes(1).Return(domain.ExecutorStatus{ActiveWorkers: 1})

			opts.TimeoutScanInterval = "10ms"
			opts.EvictionInterval = "10ms"

			registry := prometheus.NewRegistry()
			metricsWrapper, errs := metrics.NewPrometheusMetricsWrapper(registry, &atom)
			Expect(errs).To(BeEmpty())

			scanner := monitor.NewHealthScanner(executionMonitor, executorPool, opts, metricsWrapper, &atom)

			executionMonitor.StartMonitoring(1, "EXEC-STUCK", 10)
			executionMonitor.StartMonitoring(2, "EXEC-OLD", 10)
			executionMonitor.CompleteMonitoring("EXEC-OLD", domain.ExecutionSuccess, "")
			clock.Advance(3 * time.Hour)

			Expect(scanner.Start(context.Background())).To(Succeed())
			Expect(errors.Is(scanner.Start(context.Background()), monitor.ErrScannerAlreadyStarted)).To(BeTrue())

			Eventually(func() int { return countKind("timeout") }, time.Second, 5*time.Millisecond).Should(BeNumerically(">=", 1))
			Eventually(func() bool {
				_, found := executionMonitor.GetSession("EXEC-OLD")
				return found
			}, time.Second, 5*time.Millisecond).Should(BeFalse())

			scanner.Stop()
			scanner.Stop()

			timeouts := countKind("timeout")
			Consistently(func() int { return countKind("timeout") }, 50*time.Millisecond, 10*time.Millisecond).Should(Equal(timeouts))
		})
	})
})
