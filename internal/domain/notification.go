package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	// ChannelExecutionMonitor carries execution lifecycle events. The topic ID is the execution code.
	ChannelExecutionMonitor = "EXECUTION_MONITOR"

	// ChannelReportGeneration carries report generation events. The topic ID is the report ID.
	ChannelReportGeneration = "REPORT_GENERATION"
)

const (
	EventConnection            EventType = "CONNECTION"
	EventSubscribeSuccess      EventType = "SUBSCRIBE_SUCCESS"
	EventUnsubscribeSuccess    EventType = "UNSUBSCRIBE_SUCCESS"
	EventStatusUpdate          EventType = "STATUS_UPDATE"
	EventPong                  EventType = "PONG"
	EventProgressUpdate        EventType = "PROGRESS_UPDATE"
	EventReportCompleted       EventType = "REPORT_COMPLETED"
	EventExecutionProgress     EventType = "EXECUTION_PROGRESS"
	EventExecutionStatusChange EventType = "EXECUTION_STATUS_CHANGE"
	EventError                 EventType = "ERROR"
)

// EventType identifies the kind of an outbound EventMessage.
type EventType string

func (t EventType) String() string {
	return string(t)
}

// EventMessage is the envelope of every message delivered to subscribers.
// Messages are immutable once constructed; they are shared across every recipient of a publish.
type EventMessage struct {
	Type      EventType   `json:"type"`
	Message   string      `json:"message"`
	Timestamp int64       `json:"timestamp"` // Milliseconds since the Unix epoch.
	Data      interface{} `json:"data,omitempty"`
}

// NewEventMessage creates an EventMessage stamped with the current time.
func NewEventMessage(eventType EventType, message string, data interface{}) *EventMessage {
	return &EventMessage{
		Type:      eventType,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// Encode returns the JSON encoding of the message.
func (m *EventMessage) Encode() ([]byte, error) {
	return json.Marshal(m)
}

func (m *EventMessage) String() string {
	return fmt.Sprintf("EventMessage[type=%s, message=\"%s\", timestamp=%d]", m.Type, m.Message, m.Timestamp)
}

// ConnectionPayload is the data of the CONNECTION welcome message.
type ConnectionPayload struct {
	SubscriberId string `json:"subscriberId"`
}

// SubscriptionPayload is the data of SUBSCRIBE_SUCCESS and UNSUBSCRIBE_SUCCESS messages.
type SubscriptionPayload struct {
	Channel string `json:"channel"`
	TopicId string `json:"topicId"`
}

type StatusUpdatePayload struct {
	TopicId  string `json:"topicId"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
}

type PongPayload struct {
	ServerTime int64 `json:"serverTime"`
}

// ReportProgressPayload is the data of a PROGRESS_UPDATE message published for a report.
type ReportProgressPayload struct {
	ReportId  string `json:"reportId"`
	Progress  int    `json:"progress"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

type ReportCompletedPayload struct {
	ReportId  string `json:"reportId"`
	ReportUrl string `json:"reportUrl"`
	Success   bool   `json:"success"`
	Timestamp int64  `json:"timestamp"`
}

type ExecutionProgressPayload struct {
	ExecutionCode  string          `json:"executionCode"`
	CompletedCases int             `json:"completedCases"`
	TotalCases     int             `json:"totalCases"`
	Progress       int             `json:"progress"`
	CurrentStatus  ExecutionStatus `json:"currentStatus"`
	Timestamp      int64           `json:"timestamp"`
}

type ExecutionStatusChangePayload struct {
	ExecutionCode string          `json:"executionCode"`
	OldStatus     ExecutionStatus `json:"oldStatus"`
	NewStatus     ExecutionStatus `json:"newStatus"`
	Timestamp     int64           `json:"timestamp"`
}

// SubscriptionKey returns the key under which the subscribers of the given channel and topic are stored.
func SubscriptionKey(channel string, topicId string) string {
	return channel + ":" + topicId
}

// NotificationHub fans typed event messages out to subscribers of a channel and topic.
type NotificationHub interface {
	// Subscribe adds the subscriber to the given channel and topic. Subscribing twice has no additional effect.
	Subscribe(subscriberId string, channel string, topicId string)

	// Unsubscribe removes the subscriber from the given channel and topic.
	Unsubscribe(subscriberId string, channel string, topicId string)

	// UnsubscribeAll removes the subscriber from every channel and topic. Called when the subscriber disconnects.
	UnsubscribeAll(subscriberId string)

	// Publish delivers the message to every current subscriber of the channel and topic.
	// It returns the number of subscribers to which the message was handed off successfully.
	Publish(channel string, topicId string, message *EventMessage) int

	// DeliverDirect delivers the message to exactly one subscriber, regardless of its subscriptions.
	DeliverDirect(subscriberId string, message *EventMessage) error

	// SubscriberCount returns the number of distinct subscribers holding at least one subscription.
	SubscriberCount() int

	// SubscriptionStats maps each "channel:topicId" key to its number of subscribers.
	SubscriptionStats() map[string]int
}

// Transport delivers messages to connected subscribers.
type Transport interface {
	// Send hands the message off for delivery to the subscriber. It must not block on network I/O.
	Send(subscriberId string, message *EventMessage) error

	// IsOpen returns true if the subscriber's connection is still open.
	IsOpen(subscriberId string) bool
}
