package notification

import (
	"fmt"

	"github.com/mattn/go-colorable"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/scusemua/execution-monitor/m/v2/internal/domain"
	"github.com/scusemua/execution-monitor/m/v2/internal/server/metrics"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// subscriberSet is an immutable, insertion-ordered set of subscriber IDs.
// Changes produce a new set, so a set obtained from the subscription table may be iterated without locking.
type subscriberSet []string

func (s subscriberSet) contains(subscriberId string) bool {
	for _, id := range s {
		if id == subscriberId {
			return true
		}
	}
	return false
}

func (s subscriberSet) with(subscriberId string) subscriberSet {
	if s.contains(subscriberId) {
		return s
	}

	updated := make(subscriberSet, 0, len(s)+1)
	updated = append(updated, s...)
	return append(updated, subscriberId)
}

func (s subscriberSet) without(subscriberId string) subscriberSet {
	if !s.contains(subscriberId) {
		return s
	}

	updated := make(subscriberSet, 0, len(s)-1)
	for _, id := range s {
		if id != subscriberId {
			updated = append(updated, id)
		}
	}
	return updated
}

// HubImpl is the domain.NotificationHub implementation.
//
// The subscription table maps "channel:topicId" keys to subscriber sets. Each key is updated atomically
// with respect to itself; there is no lock over the whole table. Sets that become empty are removed
// from the table by the same call that emptied them.
type HubImpl struct {
	logger        *zap.Logger
	sugaredLogger *zap.SugaredLogger

	transport     domain.Transport
	metrics       *metrics.PrometheusMetricsWrapper
	subscriptions cmap.ConcurrentMap[string, subscriberSet]
}

func NewNotificationHub(transport domain.Transport, metricsWrapper *metrics.PrometheusMetricsWrapper, atom *zap.AtomicLevel) *HubImpl {
	hub := &HubImpl{
		transport:     transport,
		metrics:       metricsWrapper,
		subscriptions: cmap.New[subscriberSet](),
	}

	zapConfig := zap.NewDevelopmentEncoderConfig()
	zapConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(zapConfig), zapcore.AddSync(colorable.NewColorableStdout()), atom)
	logger := zap.New(core, zap.Development())
	if logger == nil {
		panic("failed to create logger for notification hub")
	}

	hub.logger = logger
	hub.sugaredLogger = logger.Sugar()

	return hub
}

func (h *HubImpl) Subscribe(subscriberId string, channel string, topicId string) {
	key := domain.SubscriptionKey(channel, topicId)

	h.subscriptions.Upsert(key, nil, func(exist bool, valueInMap subscriberSet, _ subscriberSet) subscriberSet {
		if !exist {
			return subscriberSet{subscriberId}
		}
		return valueInMap.with(subscriberId)
	})

	h.logger.Debug("Subscriber subscribed.", zap.String("subscriber-id", subscriberId),
		zap.String("channel", channel), zap.String("topic-id", topicId))
}

func (h *HubImpl) Unsubscribe(subscriberId string, channel string, topicId string) {
	key := domain.SubscriptionKey(channel, topicId)
	if !h.removeFromSet(key, subscriberId) {
		return
	}

	h.logger.Debug("Subscriber unsubscribed.", zap.String("subscriber-id", subscriberId),
		zap.String("channel", channel), zap.String("topic-id", topicId))
}

// UnsubscribeAll removes the subscriber from every set it belongs to in a single pass over the table.
func (h *HubImpl) UnsubscribeAll(subscriberId string) {
	removedFrom := make([]string, 0)
	for item := range h.subscriptions.IterBuffered() {
		if !item.Val.contains(subscriberId) {
			continue
		}

		if h.removeFromSet(item.Key, subscriberId) {
			removedFrom = append(removedFrom, item.Key)
		}
	}

	h.logger.Debug("Removed all subscriptions of subscriber.", zap.String("subscriber-id", subscriberId),
		zap.Strings("subscriptions", removedFrom))
}

// removeFromSet removes the subscriber from the set stored under the given key, deleting the set if it is
// left empty. Returns true if the subscriber was a member of the set.
func (h *HubImpl) removeFromSet(key string, subscriberId string) bool {
	existing, ok := h.subscriptions.Get(key)
	if !ok || !existing.contains(subscriberId) {
		return false
	}

	h.subscriptions.Upsert(key, nil, func(exist bool, valueInMap subscriberSet, _ subscriberSet) subscriberSet {
		if !exist {
			return subscriberSet{}
		}
		return valueInMap.without(subscriberId)
	})

	h.subscriptions.RemoveCb(key, func(_ string, v subscriberSet, exists bool) bool {
		return exists && len(v) == 0
	})

	return true
}

// Publish hands the message off to every current subscriber of the channel and topic.
//
// Delivery is fire-and-forget: a subscriber that cannot be reached is logged and skipped, and the remaining
// subscribers are unaffected. Nothing is retried.
func (h *HubImpl) Publish(channel string, topicId string, message *domain.EventMessage) int {
	subscribers, ok := h.subscriptions.Get(domain.SubscriptionKey(channel, topicId))
	if !ok || len(subscribers) == 0 {
		h.logger.Debug("No subscribers for published message.", zap.String("channel", channel),
			zap.String("topic-id", topicId), zap.String("event-type", message.Type.String()))
		h.metrics.RecordPublish(channel, 0)
		return 0
	}

	delivered := 0
	failures := 0
	for _, subscriberId := range subscribers {
		if err := h.deliver(subscriberId, message); err != nil {
			h.logger.Warn("Failed to deliver message to subscriber.", zap.String("subscriber-id", subscriberId),
				zap.String("channel", channel), zap.String("topic-id", topicId),
				zap.String("event-type", message.Type.String()), zap.Error(err))
			failures++
			continue
		}

		delivered++
	}

	h.metrics.RecordPublish(channel, failures)

	return delivered
}

// DeliverDirect delivers the message to a single subscriber regardless of its subscriptions.
func (h *HubImpl) DeliverDirect(subscriberId string, message *domain.EventMessage) error {
	if err := h.deliver(subscriberId, message); err != nil {
		h.logger.Warn("Failed to deliver direct message to subscriber.", zap.String("subscriber-id", subscriberId),
			zap.String("event-type", message.Type.String()), zap.Error(err))
		return err
	}

	return nil
}

func (h *HubImpl) deliver(subscriberId string, message *domain.EventMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transport panicked while sending to subscriber \"%s\": %v", subscriberId, r)
		}
	}()

	if !h.transport.IsOpen(subscriberId) {
		return fmt.Errorf("%w: \"%s\"", domain.ErrSubscriberNotConnected, subscriberId)
	}

	return h.transport.Send(subscriberId, message)
}

func (h *HubImpl) SubscriberCount() int {
	subscribers := make(map[string]struct{})
	for item := range h.subscriptions.IterBuffered() {
		for _, subscriberId := range item.Val {
			subscribers[subscriberId] = struct{}{}
		}
	}

	return len(subscribers)
}

func (h *HubImpl) SubscriptionStats() map[string]int {
	stats := make(map[string]int)
	for item := range h.subscriptions.IterBuffered() {
		stats[item.Key] = len(item.Val)
	}

	return stats
}
