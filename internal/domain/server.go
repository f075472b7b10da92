package domain

const (
	// BaseApiGroupEndpoint is the Base of the API endpoint.
	BaseApiGroupEndpoint = "/api"

	// ExecutionsEndpoint is used by the execution engine to report the lifecycle of test-execution runs,
	// and by clients to query the sessions that are currently being monitored.
	ExecutionsEndpoint = "/executions"

	// ExecutorStatusEndpoint is used by the execution engine to report the status of its worker pool.
	ExecutorStatusEndpoint = "/executor/status"

	// ReportsEndpoint is used by report generators to publish report progress and completion.
	ReportsEndpoint = "/reports"

	// NotificationStatsEndpoint returns introspection data about subscriptions and connections.
	NotificationStatsEndpoint = "/notifications/stats"

	// PrometheusEndpoint serves Prometheus metrics.
	PrometheusEndpoint = "/prometheus"

	// WebsocketEndpoint is where clients connect to receive notifications.
	WebsocketEndpoint = "/ws"
)

type Server interface {
	Serve() error // Run the server. This is a blocking call.
	Close() error // Stop the background sweeps and shut the HTTP server down.
}
