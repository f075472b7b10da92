package domain

// StartMonitoringRequest is sent by the execution engine when an execution begins.
type StartMonitoringRequest struct {
	ExecutionId   int64  `json:"executionId"`
	ExecutionCode string `json:"executionCode"`
	TotalCases    int    `json:"totalCases"`
}

type UpdateProgressRequest struct {
	CompletedCases int `json:"completedCases"`
	SuccessCases   int `json:"successCases"`
	FailedCases    int `json:"failedCases"`
}

type CompleteMonitoringRequest struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

type ReportProgressRequest struct {
	Progress int    `json:"progress"`
	Message  string `json:"message"`
}

type ReportCompletedRequest struct {
	ReportUrl string `json:"reportUrl"`
	Success   bool   `json:"success"`
}

// ExecutionLookupResponse is returned by the endpoints that act on a single execution.
// Session is the state of the execution after the request was applied, if it is still registered.
type ExecutionLookupResponse struct {
	Found   bool              `json:"found"`
	Session *ExecutionSession `json:"session,omitempty"`
}

// PublishResponse reports how many subscribers a published notification reached.
type PublishResponse struct {
	Recipients int `json:"recipients"`
}

// NotificationStats describes the current state of the notification service.
type NotificationStats struct {
	SubscriberCount int            `json:"subscriberCount"`
	ConnectionCount int            `json:"connectionCount"`
	Subscriptions   map[string]int `json:"subscriptions"`
}
