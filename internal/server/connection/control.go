package connection

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/scusemua/execution-monitor/m/v2/internal/domain"
	"go.uber.org/zap"
)

type controlFunc func(subscriberId string, request *domain.ControlMessage)

// ControlHandler interprets the control messages sent by connected clients.
//
// Replies are delivered to the requesting subscriber only. A malformed message, or one that is missing a
// field required by its type, is answered with an ERROR event. Messages of an unknown type are logged and ignored.
type ControlHandler struct {
	logger         *zap.Logger
	hub            domain.NotificationHub
	statusProvider domain.StatusProvider
	handlers       map[domain.ControlType]controlFunc
}

func NewControlHandler(hub domain.NotificationHub, statusProvider domain.StatusProvider, logger *zap.Logger) *ControlHandler {
	if logger == nil {
		logger = zap.NewNop()
	}

	h := &ControlHandler{
		logger:         logger,
		hub:            hub,
		statusProvider: statusProvider,
	}

	h.handlers = map[domain.ControlType]controlFunc{
		domain.ControlSubscribe:   h.handleSubscribe,
		domain.ControlUnsubscribe: h.handleUnsubscribe,
		domain.ControlGetStatus:   h.handleGetStatus,
		domain.ControlPing:        h.handlePing,
	}

	return h
}

// Handle processes one raw inbound message from the given subscriber.
func (h *ControlHandler) Handle(subscriberId string, message []byte) {
	var request *domain.ControlMessage
	if err := json.Unmarshal(message, &request); err != nil || request == nil {
		h.logger.Warn("Received malformed control message.", zap.String("subscriber-id", subscriberId),
			zap.ByteString("message", message), zap.Error(err))
		h.replyError(subscriberId, "Malformed message: expected a JSON object with a \"type\" field")
		return
	}

	if request.Type == "" {
		h.logger.Warn("Received control message without a type.", zap.String("subscriber-id", subscriberId),
			zap.ByteString("message", message))
		h.replyError(subscriberId, "Message is missing the required \"type\" field")
		return
	}

	handler, ok := h.handlers[request.Type]
	if !ok {
		h.logger.Warn("Ignoring control message of unknown type.", zap.String("subscriber-id", subscriberId),
			zap.String("type", string(request.Type)))
		return
	}

	h.logger.Debug("Received control message.", zap.String("subscriber-id", subscriberId),
		zap.String("type", string(request.Type)), zap.String("channel", request.Channel),
		zap.String("topic-id", request.TopicId))

	handler(subscriberId, request)
}

func (h *ControlHandler) handleSubscribe(subscriberId string, request *domain.ControlMessage) {
	if request.Channel == "" || request.TopicId == "" {
		h.replyError(subscriberId, "SUBSCRIBE requires both \"channel\" and \"topicId\"")
		return
	}

	h.hub.Subscribe(subscriberId, request.Channel, request.TopicId)

	h.reply(subscriberId, domain.NewEventMessage(domain.EventSubscribeSuccess,
		fmt.Sprintf("Subscribed to %s", domain.SubscriptionKey(request.Channel, request.TopicId)),
		&domain.SubscriptionPayload{Channel: request.Channel, TopicId: request.TopicId}))
}

func (h *ControlHandler) handleUnsubscribe(subscriberId string, request *domain.ControlMessage) {
	if request.Channel == "" || request.TopicId == "" {
		h.replyError(subscriberId, "UNSUBSCRIBE requires both \"channel\" and \"topicId\"")
		return
	}

	h.hub.Unsubscribe(subscriberId, request.Channel, request.TopicId)

	h.reply(subscriberId, domain.NewEventMessage(domain.EventUnsubscribeSuccess,
		fmt.Sprintf("Unsubscribed from %s", domain.SubscriptionKey(request.Channel, request.TopicId)),
		&domain.SubscriptionPayload{Channel: request.Channel, TopicId: request.TopicId}))
}

// handleGetStatus replies with the current status of the topic, or UNKNOWN and 0 if the topic is not known.
func (h *ControlHandler) handleGetStatus(subscriberId string, request *domain.ControlMessage) {
	if request.TopicId == "" {
		h.replyError(subscriberId, "GET_STATUS requires \"topicId\"")
		return
	}

	status, progress, found := "UNKNOWN", 0, false
	if h.statusProvider != nil {
		var providedStatus string
		var providedProgress int
		providedStatus, providedProgress, found = h.statusProvider.TopicStatus(request.TopicId)
		if found {
			status, progress = providedStatus, providedProgress
		}
	}

	h.reply(subscriberId, domain.NewEventMessage(domain.EventStatusUpdate,
		fmt.Sprintf("Status of %s", request.TopicId),
		&domain.StatusUpdatePayload{TopicId: request.TopicId, Status: status, Progress: progress}))
}

func (h *ControlHandler) handlePing(subscriberId string, _ *domain.ControlMessage) {
	h.reply(subscriberId, domain.NewEventMessage(domain.EventPong, "pong",
		&domain.PongPayload{ServerTime: time.Now().UnixMilli()}))
}

func (h *ControlHandler) replyError(subscriberId string, text string) {
	h.reply(subscriberId, domain.NewEventMessage(domain.EventError, text, nil))
}

// reply delivers directly to the subscriber. Failures are already logged by the hub.
func (h *ControlHandler) reply(subscriberId string, message *domain.EventMessage) {
	_ = h.hub.DeliverDirect(subscriberId, message)
}
