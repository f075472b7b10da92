package domain

const (
	ControlSubscribe   ControlType = "SUBSCRIBE"
	ControlUnsubscribe ControlType = "UNSUBSCRIBE"
	ControlGetStatus   ControlType = "GET_STATUS"
	ControlPing        ControlType = "PING"
)

// ControlType identifies the kind of an inbound ControlMessage.
type ControlType string

// ControlMessage is a request sent by a connected client.
//
// SUBSCRIBE and UNSUBSCRIBE require both Channel and TopicId. GET_STATUS requires TopicId.
type ControlMessage struct {
	Type    ControlType `json:"type"`
	Channel string      `json:"channel,omitempty"`
	TopicId string      `json:"topicId,omitempty"`
}

// StatusProvider resolves the current status and progress of a topic for GET_STATUS requests.
type StatusProvider interface {
	// TopicStatus returns the status and progress of the given topic, and whether the topic is known.
	TopicStatus(topicId string) (status string, progress int, found bool)
}
