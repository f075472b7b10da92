package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scusemua/execution-monitor/m/v2/internal/domain"
	"github.com/scusemua/execution-monitor/m/v2/internal/server/report"
	"go.uber.org/zap"
)

const ReportIdParam = "id"

// ReportHttpHandler lets the report generator publish the progress and completion of a report.
type ReportHttpHandler struct {
	*BaseHandler

	notifier *report.Notifier
}

func NewReportHttpHandler(opts *domain.Configuration, notifier *report.Notifier, atom *zap.AtomicLevel) *ReportHttpHandler {
	handler := &ReportHttpHandler{
		BaseHandler: newBaseHandler(opts, atom),
		notifier:    notifier,
	}
	handler.BackendHttpGetHandler = handler

	handler.logger.Info("Creating server-side ReportHttpHandler.")

	return handler
}

// HandleRequest publishes report progress.
func (h *ReportHttpHandler) HandleRequest(c *gin.Context) {
	reportId := c.Param(ReportIdParam)

	var req domain.ReportProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to unmarshal ReportProgressRequest.", zap.String("report-id", reportId), zap.Error(err))
		h.WriteError(c, http.StatusBadRequest, err, "Invalid request body.")
		return
	}

	recipients, err := h.notifier.NotifyProgress(reportId, req.Progress, req.Message)
	if err != nil {
		h.WriteError(c, http.StatusBadRequest, err, "Failed to publish report progress.")
		return
	}

	c.JSON(http.StatusOK, &domain.PublishResponse{Recipients: recipients})
}

func (h *ReportHttpHandler) HandleCompleted(c *gin.Context) {
	reportId := c.Param(ReportIdParam)

	var req domain.ReportCompletedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to unmarshal ReportCompletedRequest.", zap.String("report-id", reportId), zap.Error(err))
		h.WriteError(c, http.StatusBadRequest, err, "Invalid request body.")
		return
	}

	recipients, err := h.notifier.NotifyCompleted(reportId, req.ReportUrl, req.Success)
	if err != nil {
		h.WriteError(c, http.StatusBadRequest, err, "Failed to publish report completion.")
		return
	}

	c.JSON(http.StatusOK, &domain.PublishResponse{Recipients: recipients})
}
