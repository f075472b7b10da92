package connection

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mattn/go-colorable"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/scusemua/execution-monitor/m/v2/internal/domain"
	"github.com/scusemua/execution-monitor/m/v2/internal/server/concurrent_websocket"
	"github.com/scusemua/execution-monitor/m/v2/internal/server/metrics"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Manager owns the open websocket connections and implements domain.Transport on top of them.
//
// Each connection is assigned a random subscriber ID when it is accepted. When the connection closes, every
// subscription held by that subscriber is removed from the NotificationHub.
type Manager struct {
	logger        *zap.Logger
	sugaredLogger *zap.SugaredLogger

	hub            domain.NotificationHub
	controlHandler *ControlHandler
	metrics        *metrics.PrometheusMetricsWrapper

	clients        cmap.ConcurrentMap[string, *client]
	upgrader       websocket.Upgrader
	allowedOrigins map[string]struct{}
	queueCapacity  int
}

func NewConnectionManager(opts *domain.Configuration, metricsWrapper *metrics.PrometheusMetricsWrapper, atom *zap.AtomicLevel) *Manager {
	manager := &Manager{
		metrics:        metricsWrapper,
		clients:        cmap.New[*client](),
		allowedOrigins: make(map[string]struct{}),
		queueCapacity:  opts.SendQueueCapacityOrDefault(),
	}

	for _, origin := range opts.AllowedOriginList() {
		manager.allowedOrigins[origin] = struct{}{}
	}

	manager.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     manager.checkOrigin,
	}

	zapConfig := zap.NewDevelopmentEncoderConfig()
	zapConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(zapConfig), zapcore.AddSync(colorable.NewColorableStdout()), atom)
	logger := zap.New(core, zap.Development())
	if logger == nil {
		panic("failed to create logger for connection manager")
	}

	manager.logger = logger
	manager.sugaredLogger = logger.Sugar()

	return manager
}

// Attach connects the Manager to the NotificationHub that delivers through it and to the StatusProvider that
// answers GET_STATUS requests. Attach must be called before the Manager accepts connections.
func (m *Manager) Attach(hub domain.NotificationHub, statusProvider domain.StatusProvider) {
	m.hub = hub
	m.controlHandler = NewControlHandler(hub, statusProvider, m.logger)
}

func (m *Manager) checkOrigin(r *http.Request) bool {
	if len(m.allowedOrigins) == 0 {
		return true
	}

	origin := r.Header.Get("Origin")
	if _, ok := m.allowedOrigins[origin]; ok {
		return true
	}

	m.sugaredLogger.Errorf("Unexpected origin: %v.", origin)
	return false
}

// Send encodes the message and places it in the subscriber's outbound queue.
//
// A subscriber whose queue is full cannot keep up and is disconnected.
func (m *Manager) Send(subscriberId string, message *domain.EventMessage) error {
	c, ok := m.clients.Get(subscriberId)
	if !ok {
		return fmt.Errorf("%w: \"%s\"", domain.ErrSubscriberNotConnected, subscriberId)
	}

	data, err := message.Encode()
	if err != nil {
		return err
	}

	if err = c.enqueue(data); err != nil {
		if errors.Is(err, domain.ErrSendQueueFull) {
			m.logger.Warn("Subscriber cannot keep up with outbound messages. Disconnecting.",
				zap.String("subscriber-id", subscriberId), zap.Int("queue-capacity", m.queueCapacity))
			c.close()
		}

		return fmt.Errorf("%w: \"%s\"", err, subscriberId)
	}

	return nil
}

func (m *Manager) IsOpen(subscriberId string) bool {
	c, ok := m.clients.Get(subscriberId)
	return ok && c.isOpen()
}

// ConnectionCount returns the number of currently-open connections.
func (m *Manager) ConnectionCount() int {
	return m.clients.Count()
}

// CloseAll closes every open connection. Used during shutdown.
func (m *Manager) CloseAll() {
	for item := range m.clients.IterBuffered() {
		item.Val.close()
	}
}

// ServeWebsocket upgrades the request to a websocket connection and serves it until the connection closes.
func (m *Manager) ServeWebsocket(c *gin.Context) {
	m.logger.Debug("Handling websocket connection.", zap.String("request-origin", c.Request.Header.Get("Origin")),
		zap.String("request-host", c.Request.Host), zap.String("request-uri", c.Request.RequestURI))

	conn, err := m.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		m.logger.Error("Failed to upgrade websocket connection.", zap.Error(err))
		return
	}

	m.serve(concurrent_websocket.NewConcurrentWebSocket(conn))
}

func (m *Manager) serve(conn domain.ConcurrentWebSocket) {
	subscriberId := uuid.NewString()
	cl := m.register(subscriberId, conn)
	defer m.unregister(cl)

	m.logger.Debug("Accepted websocket connection.", zap.String("subscriber-id", subscriberId),
		zap.String("remote-addr", conn.RemoteAddr().String()))

	welcome := domain.NewEventMessage(domain.EventConnection, "Connected to notification service",
		&domain.ConnectionPayload{SubscriberId: subscriberId})
	if err := m.hub.DeliverDirect(subscriberId, welcome); err != nil {
		return
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				m.logger.Warn("Error while reading message from websocket.", zap.String("subscriber-id", subscriberId), zap.Error(err))
			} else {
				m.logger.Debug("Websocket closed.", zap.String("subscriber-id", subscriberId), zap.Error(err))
			}
			return
		}

		m.controlHandler.Handle(subscriberId, message)
	}
}

func (m *Manager) register(subscriberId string, conn domain.ConcurrentWebSocket) *client {
	cl := newClient(subscriberId, conn, m.queueCapacity, m.logger)
	m.clients.Set(subscriberId, cl)
	go cl.writePump()

	m.metrics.SubscriberConnected()

	return cl
}

// unregister removes the client's connection and subscriptions, then waits briefly for its write pump to exit.
func (m *Manager) unregister(cl *client) {
	m.clients.RemoveCb(cl.id, func(_ string, v *client, exists bool) bool {
		return exists && v == cl
	})

	cl.close()
	m.hub.UnsubscribeAll(cl.id)
	m.metrics.SubscriberDisconnected()

	select {
	case <-cl.done:
	case <-time.After(time.Second):
		m.logger.Warn("Write pump did not exit in time.", zap.String("subscriber-id", cl.id))
	}

	m.logger.Debug("Websocket connection closed.", zap.String("subscriber-id", cl.id))
}
