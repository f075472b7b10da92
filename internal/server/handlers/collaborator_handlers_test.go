package handlers_test

import (
	"net/http"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/scusemua/execution-monitor/m/v2/internal/domain"
	"github.com/scusemua/execution-monitor/m/v2/internal/mock_domain"
	"github.com/scusemua/execution-monitor/m/v2/internal/server/executor"
	"github.com/scusemua/execution-monitor/m/v2/internal/server/handlers"
	"github.com/scusemua/execution-monitor/m/v2/internal/server/report"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type fixedConnectionCounter int

func (c fixedConnectionCounter) ConnectionCount() int {
	return int(c)
}

var _ = Describe("Collaborator Handler Tests", func() {
	atom := zap.NewAtomicLevelAt(zap.DebugLevel)

	var (
		hub    *mock_domain.MockNotificationHub
		engine *gin.Engine
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		hub = mock_domain.NewMockNotificationHub(mockCtrl)
		engine = gin.New()
	})

	Context("ExecutorStatusHttpHandler", func() {
		var tracker *executor.StatusTracker

		BeforeEach(func() {
			tracker = executor.NewStatusTracker(&atom)
			handler := handlers.NewExecutorStatusHttpHandler(domain.GetDefaultConfig(), tracker, &atom)

			engine.GET("/executor/status", handler.HandleRequest)
			engine.PUT("/executor/status", handler.HandlePutRequest)
		})

		It("Will return a zero status before anything has been reported", func() {
			recorder := perform(engine, http.MethodGet, "/executor/status", nil)
			Expect(recorder.Code).To(Equal(http.StatusOK))
			Expect(*decode[domain.ExecutorStatus](recorder)).To(Equal(domain.ExecutorStatus{}))
		})

		It("Will record reported statuses", func() {
			recorder := perform(engine, http.MethodPut, "/executor/status", &domain.ExecutorStatus{ActiveWorkers: 8, QueuedTasks: 3})
			Expect(recorder.Code).To(Equal(http.StatusOK))

			Expect(tracker.GetExecutorStatus()).To(Equal(domain.ExecutorStatus{ActiveWorkers: 8, QueuedTasks: 3}))

			recorder = perform(engine, http.MethodGet, "/executor/status", nil)
			Expect(decode[domain.ExecutorStatus](recorder).ActiveWorkers).To(Equal(8))
		})

		It("Will reject negative counters", func() {
			recorder := perform(engine, http.MethodPut, "/executor/status", &domain.ExecutorStatus{ActiveWorkers: -1})
			Expect(recorder.Code).To(Equal(http.StatusBadRequest))

			_, reported := tracker.LastReportTime()
			Expect(reported).To(BeFalse())
		})
	})

	Context("ReportHttpHandler", func() {
		BeforeEach(func() {
			handler := handlers.NewReportHttpHandler(domain.GetDefaultConfig(), report.NewNotifier(hub, &atom), &atom)

			engine.POST("/reports/:id/progress", handler.HandleRequest)
			engine.POST("/reports/:id/complete", handler.HandleCompleted)
		})

		It("Will publish report progress", func() {
			hub.EXPECT().Publish(domain.ChannelReportGeneration, "42", gomock.Any()).Times(1).DoAndReturn(
				func(_ string, _ string, message *domain.EventMessage) int {
					Expect(message.Type).To(Equal(domain.EventProgressUpdate))
					payload := message.Data.(*domain.ReportProgressPayload)
					Expect(payload.Progress).To(Equal(60))
					Expect(payload.Message).To(Equal("Rendering charts"))
					return 2
				})

			recorder := perform(engine, http.MethodPost, "/reports/42/progress",
				&domain.ReportProgressRequest{Progress: 60, Message: "Rendering charts"})
			Expect(recorder.Code).To(Equal(http.StatusOK))
			Expect(decode[domain.PublishResponse](recorder).Recipients).To(Equal(2))
		})

		It("Will reject progress outside of 0 to 100", func() {
			recorder := perform(engine, http.MethodPost, "/reports/42/progress", &domain.ReportProgressRequest{Progress: 101})
			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
		})

		It("Will publish report completion", func() {
			hub.EXPECT().Publish(domain.ChannelReportGeneration, "42", gomock.Any()).Times(1).DoAndReturn(
				func(_ string, _ string, message *domain.EventMessage) int {
					Expect(message.Type).To(Equal(domain.EventReportCompleted))
					payload := message.Data.(*domain.ReportCompletedPayload)
					Expect(payload.ReportUrl).To(Equal("/reports/42.pdf"))
					Expect(payload.Success).To(BeTrue())
					return 0
				})

			recorder := perform(engine, http.MethodPost, "/reports/42/complete",
				&domain.ReportCompletedRequest{ReportUrl: "/reports/42.pdf", Success: true})
			Expect(recorder.Code).To(Equal(http.StatusOK))
			Expect(decode[domain.PublishResponse](recorder).Recipients).To(Equal(0))
		})
	})

	Context("NotificationStatsHttpHandler", func() {
		It("Will report subscriptions and connections", func() {
			hub.EXPECT().SubscriberCount().Times(1).Return(2)
			hub.EXPECT().SubscriptionStats().Times(1).Return(map[string]int{"EXECUTION_MONITOR:EXEC-001": 2})

			handler := handlers.NewNotificationStatsHttpHandler(domain.GetDefaultConfig(), hub, fixedConnectionCounter(3), &atom)
			engine.GET("/notifications/stats", handler.HandleRequest)

			recorder := perform(engine, http.MethodGet, "/notifications/stats", nil)
			Expect(recorder.Code).To(Equal(http.StatusOK))

			stats := decode[domain.NotificationStats](recorder)
			Expect(stats.SubscriberCount).To(Equal(2))
			Expect(stats.ConnectionCount).To(Equal(3))
			Expect(stats.Subscriptions).To(HaveKeyWithValue("EXECUTION_MONITOR:EXEC-001", 2))
		})
	})
})
