package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scusemua/execution-monitor/m/v2/internal/domain"
	"go.uber.org/zap"
)

// ConnectionCounter reports the number of open client connections.
type ConnectionCounter interface {
	ConnectionCount() int
}

type NotificationStatsHttpHandler struct {
	*BaseHandler

	hub         domain.NotificationHub
	connections ConnectionCounter
}

func NewNotificationStatsHttpHandler(opts *domain.Configuration, hub domain.NotificationHub, connections ConnectionCounter, atom *zap.AtomicLevel) *NotificationStatsHttpHandler {
	handler := &NotificationStatsHttpHandler{
		BaseHandler: newBaseHandler(opts, atom),
		hub:         hub,
		connections: connections,
	}
	handler.BackendHttpGetHandler = handler

	handler.logger.Info("Creating server-side NotificationStatsHttpHandler.")

	return handler
}

func (h *NotificationStatsHttpHandler) HandleRequest(c *gin.Context) {
	stats := &domain.NotificationStats{
		SubscriberCount: h.hub.SubscriberCount(),
		Subscriptions:   h.hub.SubscriptionStats(),
	}

	if h.connections != nil {
		stats.ConnectionCount = h.connections.ConnectionCount()
	}

	c.JSON(http.StatusOK, stats)
}
