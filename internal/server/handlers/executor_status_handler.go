package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scusemua/execution-monitor/m/v2/internal/domain"
	"github.com/scusemua/execution-monitor/m/v2/internal/server/executor"
	"go.uber.org/zap"
)

// ExecutorStatusHttpHandler receives the status of the executor pool from the execution engine.
type ExecutorStatusHttpHandler struct {
	*BaseHandler

	tracker *executor.StatusTracker
}

func NewExecutorStatusHttpHandler(opts *domain.Configuration, tracker *executor.StatusTracker, atom *zap.AtomicLevel) *ExecutorStatusHttpHandler {
	handler := &ExecutorStatusHttpHandler{
		BaseHandler: newBaseHandler(opts, atom),
		tracker:     tracker,
	}
	handler.BackendHttpGetHandler = handler

	handler.logger.Info("Creating server-side ExecutorStatusHttpHandler.")

	return handler
}

// HandleRequest returns the most recently reported executor status.
func (h *ExecutorStatusHttpHandler) HandleRequest(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracker.GetExecutorStatus())
}

func (h *ExecutorStatusHttpHandler) HandlePutRequest(c *gin.Context) {
	var status domain.ExecutorStatus
	if err := c.ShouldBindJSON(&status); err != nil {
		h.logger.Error("Failed to unmarshal ExecutorStatus.", zap.Error(err))
		h.WriteError(c, http.StatusBadRequest, err, "Invalid request body.")
		return
	}

	if err := h.tracker.Report(status); err != nil {
		h.WriteError(c, http.StatusBadRequest, err, "Invalid executor status.")
		return
	}

	c.JSON(http.StatusOK, status)
}
