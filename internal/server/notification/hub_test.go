package notification_test

import (
	"errors"
	"fmt"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/scusemua/execution-monitor/m/v2/internal/domain"
	"github.com/scusemua/execution-monitor/m/v2/internal/mock_domain"
	"github.com/scusemua/execution-monitor/m/v2/internal/server/metrics"
	"github.com/scusemua/execution-monitor/m/v2/internal/server/notification"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

// fakeTransport records the messages sent to each subscriber.
type fakeTransport struct {
	mu       sync.Mutex
	received map[string][]*domain.EventMessage
	closed   map[string]bool
	failing  map[string]error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		received: make(map[string][]*domain.EventMessage),
		closed:   make(map[string]bool),
		failing:  make(map[string]error),
	}
}

func (t *fakeTransport) Send(subscriberId string, message *domain.EventMessage) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err, ok := t.failing[subscriberId]; ok {
		return err
	}

	t.received[subscriberId] = append(t.received[subscriberId], message)
	return nil
}

func (t *fakeTransport) IsOpen(subscriberId string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.closed[subscriberId]
}

func (t *fakeTransport) Received(subscriberId string) []*domain.EventMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*domain.EventMessage{}, t.received[subscriberId]...)
}

func (t *fakeTransport) Close(subscriberId string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed[subscriberId] = true
}

func (t *fakeTransport) Fail(subscriberId string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failing[subscriberId] = err
}

var _ = Describe("NotificationHub Tests", func() {
	atom := zap.NewAtomicLevelAt(zap.DebugLevel)

	var (
		transport *fakeTransport
		hub       *notification.HubImpl
		message   *domain.EventMessage
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())

		transport = newFakeTransport()
		hub = notification.NewNotificationHub(transport, nil, &atom)
		message = domain.NewEventMessage(domain.EventExecutionProgress, "progress", nil)
	})

	It("Can be instantiated correctly", func() {
		Expect(hub.SubscriberCount()).To(Equal(0))
		Expect(hub.SubscriptionStats()).To(BeEmpty())
	})

	Context("Subscriptions", func() {
		It("Will deliver a published message to a subscriber exactly once", func() {
			hub.Subscribe("S1", domain.ChannelExecutionMonitor, "EXEC-001")
			hub.Subscribe("S2", domain.ChannelExecutionMonitor, "EXEC-002")

			delivered := hub.Publish(domain.ChannelExecutionMonitor, "EXEC-001", message)
			Expect(delivered).To(Equal(1))

			Expect(transport.Received("S1")).To(Equal([]*domain.EventMessage{message}))
			Expect(transport.Received("S2")).To(BeEmpty())
		})

		It("Will treat repeated subscriptions as a single subscription", func() {
			hub.Subscribe("S1", domain.ChannelExecutionMonitor, "EXEC-001")
			hub.Subscribe("S1", domain.ChannelExecutionMonitor, "EXEC-001")

			Expect(hub.SubscriptionStats()).To(Equal(map[string]int{"EXECUTION_MONITOR:EXEC-001": 1}))

			Expect(hub.Publish(domain.ChannelExecutionMonitor, "EXEC-001", message)).To(Equal(1))
			Expect(transport.Received("S1")).To(HaveLen(1))
		})

		It("Will not deliver messages after unsubscribing", func() {
			hub.Subscribe("S1", domain.ChannelExecutionMonitor, "EXEC-001")
			hub.Unsubscribe("S1", domain.ChannelExecutionMonitor, "EXEC-001")

			Expect(hub.Publish(domain.ChannelExecutionMonitor, "EXEC-001", message)).To(Equal(0))
			Expect(transport.Received("S1")).To(BeEmpty())
		})

		It("Will remove subscription sets as soon as they become empty", func() {
			hub.Subscribe("S1", domain.ChannelExecutionMonitor, "EXEC-001")
			hub.Subscribe("S2", domain.ChannelExecutionMonitor, "EXEC-001")

			hub.Unsubscribe("S1", domain.ChannelExecutionMonitor, "EXEC-001")
			Expect(hub.SubscriptionStats()).To(Equal(map[string]int{"EXECUTION_MONITOR:EXEC-001": 1}))

			hub.Unsubscribe("S2", domain.ChannelExecutionMonitor, "EXEC-001")
			Expect(hub.SubscriptionStats()).To(BeEmpty())
		})

		It("Will ignore unsubscribing from a topic that has no subscribers", func() {
			Expect(func() {
				hub.Unsubscribe("S1", domain.ChannelExecutionMonitor, "EXEC-001")
			}).ToNot(Panic())

			Expect(hub.SubscriptionStats()).To(BeEmpty())
		})

		It("Will remove a subscriber from every topic at once", func() {
			hub.Subscribe("S1", domain.ChannelExecutionMonitor, "EXEC-001")
			hub.Subscribe("S1", domain.ChannelExecutionMonitor, "EXEC-002")
			hub.Subscribe("S1", domain.ChannelReportGeneration, "42")
			hub.Subscribe("S2", domain.ChannelExecutionMonitor, "EXEC-001")

			Expect(hub.SubscriberCount()).To(Equal(2))

			hub.UnsubscribeAll("S1")

			Expect(hub.SubscriberCount()).To(Equal(1))
			Expect(hub.SubscriptionStats()).To(Equal(map[string]int{"EXECUTION_MONITOR:EXEC-001": 1}))
		})

		It("Will keep channels with the same topic separate", func() {
			hub.Subscribe("S1", domain.ChannelExecutionMonitor, "42")
			hub.Subscribe("S2", domain.ChannelReportGeneration, "42")

			Expect(hub.Publish(domain.ChannelReportGeneration, "42", message)).To(Equal(1))
			Expect(transport.Received("S1")).To(BeEmpty())
			Expect(transport.Received("S2")).To(HaveLen(1))
		})

		It("Will count distinct subscribers", func() {
			hub.Subscribe("S1", domain.ChannelExecutionMonitor, "EXEC-001")
			hub.Subscribe("S1", domain.ChannelExecutionMonitor, "EXEC-002")
			hub.Subscribe("S2", domain.ChannelExecutionMonitor, "EXEC-002")

			Expect(hub.SubscriberCount()).To(Equal(2))
			Expect(hub.SubscriptionStats()).To(Equal(map[string]int{
				"EXECUTION_MONITOR:EXEC-001": 1,
				"EXECUTION_MONITOR:EXEC-002": 2,
			}))
		})
	})

	Context("Delivery failures", func() {
		It("Will continue delivering to other subscribers when one fails", func() {
			hub.Subscribe("S1", domain.ChannelExecutionMonitor, "EXEC-001")
			hub.Subscribe("S2", domain.ChannelExecutionMonitor, "EXEC-001")
			hub.Subscribe("S3", domain.ChannelExecutionMonitor, "EXEC-001")

			transport.Fail("S1", errors.New("broken pipe"))
			transport.Close("S2")

			Expect(hub.Publish(domain.ChannelExecutionMonitor, "EXEC-001", message)).To(Equal(1))
			Expect(transport.Received("S3")).To(HaveLen(1))

			// Failures do not remove the subscription.
			Expect(hub.SubscriptionStats()["EXECUTION_MONITOR:EXEC-001"]).To(Equal(3))
		})

		It("Will isolate a transport that panics", func() {
			mockTransport := mock_domain.NewMockTransport(mockCtrl)
			hub = notification.NewNotificationHub(mockTransport, nil, &atom)

			hub.Subscribe("S1", domain.ChannelExecutionMonitor, "EXEC-001")
			hub.Subscribe("S2", domain.ChannelExecutionMonitor, "EXEC-001")

			mockTransport.EXPECT().IsOpen(gomock.Any()).AnyTimes().Return(true)
			mockTransport.EXPECT().Send("S1", message).Times(1).DoAndReturn(func(_ string, _ *domain.EventMessage) error {
				panic("transport failure")
			})
			mockTransport.EXPECT().Send("S2", message).Times(1).Return(nil)

			var delivered int
			Expect(func() {
				delivered = hub.Publish(domain.ChannelExecutionMonitor, "EXEC-001", message)
			}).ToNot(Panic())
			Expect(delivered).To(Equal(1))
		})

		It("Will report failed direct deliveries", func() {
			transport.Close("S1")

			err := hub.DeliverDirect("S1", message)
			Expect(err).ToNot(BeNil())
			Expect(errors.Is(err, domain.ErrSubscriberNotConnected)).To(BeTrue())

			Expect(hub.DeliverDirect("S2", message)).To(Succeed())
			Expect(transport.Received("S2")).To(HaveLen(1))
		})

		It("Will record publish metrics", func() {
			registry := prometheus.NewRegistry()
			metricsWrapper, errs := metrics.NewPrometheusMetricsWrapper(registry, &atom)
			Expect(errs).To(BeEmpty())

			hub = notification.NewNotificationHub(transport, metricsWrapper, &atom)
			hub.Subscribe("S1", domain.ChannelExecutionMonitor, "EXEC-001")
			hub.Subscribe("S2", domain.ChannelExecutionMonitor, "EXEC-001")
			transport.Close("S2")

			hub.Publish(domain.ChannelExecutionMonitor, "EXEC-001", message)
			hub.Publish(domain.ChannelExecutionMonitor, "EXEC-404", message)

			Expect(testutil.ToFloat64(metricsWrapper.NotificationsPublishedTotal.WithLabelValues(domain.ChannelExecutionMonitor))).To(Equal(2.0))
			Expect(testutil.ToFloat64(metricsWrapper.NotificationDeliveryFailuresTotal.WithLabelValues(domain.ChannelExecutionMonitor))).To(Equal(1.0))
		})
	})

	Context("Concurrent access", func() {
		It("Will handle concurrent subscriptions, publishes and disconnects", func() {
			var wg sync.WaitGroup
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func(i int) {
					defer GinkgoRecover()
					defer wg.Done()

					subscriberId := fmt.Sprintf("S%d", i)
					for j := 0; j < 20; j++ {
						topic := fmt.Sprintf("EXEC-%d", j%4)
						hub.Subscribe(subscriberId, domain.ChannelExecutionMonitor, topic)
						hub.Publish(domain.ChannelExecutionMonitor, topic, message)
						if j%3 == 0 {
							hub.Unsubscribe(subscriberId, domain.ChannelExecutionMonitor, topic)
						}
					}

					hub.UnsubscribeAll(subscriberId)
				}(i)
			}
			wg.Wait()

			Expect(hub.SubscriberCount()).To(Equal(0))
			Expect(hub.SubscriptionStats()).To(BeEmpty())
		})
	})
})
