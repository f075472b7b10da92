package domain

import (
	"encoding/json"
	"errors"
)

var (
	ErrMissingField           = errors.New("request is missing a required field")
	ErrInvalidStatus          = errors.New("invalid execution status")
	ErrNonCompletionStatus    = errors.New("execution cannot be completed with a non-final status")
	ErrSubscriberNotConnected = errors.New("subscriber is not connected")
	ErrSendQueueFull          = errors.New("subscriber's outbound message queue is full")
	ErrUnknownExecution       = errors.New("no execution session is registered under the specified code")
	ErrInvalidExecutorStatus  = errors.New("executor status counters must be non-negative")
	ErrInvalidProgress        = errors.New("progress must be between 0 and 100")
)

type ErrorMessage struct {
	Description  string `json:"Description"`  // Provides additional context for what occurred; written by us.
	ErrorMessage string `json:"ErrorMessage"` // The value returned by err.Error() for whatever error occurred.
	Valid        bool   `json:"Valid"`        // Used to determine if the struct was sent/received correctly over the network.
}

// NewErrorMessage wraps the given (non-nil) error in an ErrorMessage.
func NewErrorMessage(err error, description string) *ErrorMessage {
	return &ErrorMessage{
		ErrorMessage: err.Error(),
		Description:  description,
		Valid:        true,
	}
}

func (m *ErrorMessage) String() string {
	out, err := json.Marshal(m)
	if err != nil {
		panic(err)
	}

	return string(out)
}
