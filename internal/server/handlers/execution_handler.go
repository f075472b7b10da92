package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/scusemua/execution-monitor/m/v2/internal/domain"
	"github.com/zhangjyr/gocsv"
	"go.uber.org/zap"
)

const (
	ExecutionCodeParam = "code"

	csvContentType = "text/csv; charset=utf-8"
)

// executionCsvRow is a single row of the CSV export of the active sessions.
type executionCsvRow struct {
	ExecutionId     int64  `csv:"execution_id"`
	ExecutionCode   string `csv:"execution_code"`
	Status          string `csv:"status"`
	TotalCases      int    `csv:"total_cases"`
	CompletedCases  int    `csv:"completed_cases"`
	SuccessCases    int    `csv:"success_cases"`
	FailedCases     int    `csv:"failed_cases"`
	ProgressPercent int    `csv:"progress_percent"`
	StartTime       string `csv:"start_time"`
	EndTime         string `csv:"end_time"`
	LastUpdateTime  string `csv:"last_update_time"`
	ActiveWorkers   int    `csv:"active_workers"`
	QueuedTasks     int    `csv:"queued_tasks"`
	ErrorMessage    string `csv:"error_message"`
}

func newExecutionCsvRow(session *domain.ExecutionSession) *executionCsvRow {
	row := &executionCsvRow{
		ExecutionId:     session.ExecutionId,
		ExecutionCode:   session.ExecutionCode,
		Status:          session.Status.String(),
		TotalCases:      session.TotalCases,
		CompletedCases:  session.CompletedCases,
		SuccessCases:    session.SuccessCases,
		FailedCases:     session.FailedCases,
		ProgressPercent: session.ProgressPercent,
		StartTime:       session.StartTime.Format(time.RFC3339),
		LastUpdateTime:  session.LastUpdateTime.Format(time.RFC3339),
		ActiveWorkers:   session.ActiveWorkers,
		QueuedTasks:     session.QueuedTasks,
		ErrorMessage:    session.ErrorMessage,
	}

	if session.EndTime != nil {
		row.EndTime = session.EndTime.Format(time.RFC3339)
	}

	return row
}

// ExecutionHttpHandler exposes the execution monitor over HTTP. The execution engine drives the lifecycle of
// each execution through it, and dashboards query it.
type ExecutionHttpHandler struct {
	*BaseHandler

	monitor domain.ExecutionMonitor
}

func NewExecutionHttpHandler(opts *domain.Configuration, monitor domain.ExecutionMonitor, atom *zap.AtomicLevel) *ExecutionHttpHandler {
	handler := &ExecutionHttpHandler{
		BaseHandler: newBaseHandler(opts, atom),
		monitor:     monitor,
	}
	handler.BackendHttpGetHandler = handler

	handler.logger.Info("Creating server-side ExecutionHttpHandler.")

	return handler
}

// HandleRequest returns every resident session in the order in which monitoring started.
func (h *ExecutionHttpHandler) HandleRequest(c *gin.Context) {
	sessions := h.monitor.ListActiveSessions()
	h.sugaredLogger.Debugf("Returning %d execution session(s).", len(sessions))
	c.JSON(http.StatusOK, sessions)
}

func (h *ExecutionHttpHandler) HandleStart(c *gin.Context) {
	var req domain.StartMonitoringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to unmarshal StartMonitoringRequest.", zap.Error(err))
		h.WriteError(c, http.StatusBadRequest, err, "Invalid request body.")
		return
	}

	if req.ExecutionCode == "" {
		h.WriteError(c, http.StatusBadRequest, fmt.Errorf("%w: \"executionCode\"", domain.ErrMissingField), "Invalid request body.")
		return
	}

	if req.TotalCases < 0 {
		h.WriteError(c, http.StatusBadRequest, fmt.Errorf("totalCases must be non-negative, got %d", req.TotalCases), "Invalid request body.")
		return
	}

	h.monitor.StartMonitoring(req.ExecutionId, req.ExecutionCode, req.TotalCases)

	h.respondWithSession(c, req.ExecutionCode, http.StatusCreated)
}

func (h *ExecutionHttpHandler) HandleProgress(c *gin.Context) {
	executionCode := c.Param(ExecutionCodeParam)

	var req domain.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to unmarshal UpdateProgressRequest.", zap.String("execution-code", executionCode), zap.Error(err))
		h.WriteError(c, http.StatusBadRequest, err, "Invalid request body.")
		return
	}

	if req.CompletedCases < 0 || req.SuccessCases < 0 || req.FailedCases < 0 {
		h.WriteError(c, http.StatusBadRequest,
			fmt.Errorf("case counters must be non-negative: completed=%d, success=%d, failed=%d",
				req.CompletedCases, req.SuccessCases, req.FailedCases), "Invalid request body.")
		return
	}

	h.monitor.UpdateProgress(executionCode, req.CompletedCases, req.SuccessCases, req.FailedCases)

	h.respondWithSession(c, executionCode, http.StatusOK)
}

func (h *ExecutionHttpHandler) HandleComplete(c *gin.Context) {
	executionCode := c.Param(ExecutionCodeParam)

	var req domain.CompleteMonitoringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to unmarshal CompleteMonitoringRequest.", zap.String("execution-code", executionCode), zap.Error(err))
		h.WriteError(c, http.StatusBadRequest, err, "Invalid request body.")
		return
	}

	status, err := domain.ParseCompletionStatus(req.Status)
	if err != nil {
		h.logger.Warn("Rejecting completion with invalid status.", zap.String("execution-code", executionCode),
			zap.String("status", req.Status))
		h.WriteError(c, http.StatusBadRequest, err, "Invalid execution status.")
		return
	}

	h.monitor.CompleteMonitoring(executionCode, status, req.ErrorMessage)

	h.respondWithSession(c, executionCode, http.StatusOK)
}

// HandleStop stops monitoring the execution. The response carries the session as it was before it was removed.
func (h *ExecutionHttpHandler) HandleStop(c *gin.Context) {
	executionCode := c.Param(ExecutionCodeParam)

	session, found := h.monitor.GetSession(executionCode)
	h.monitor.StopMonitoring(executionCode)

	c.JSON(http.StatusOK, &domain.ExecutionLookupResponse{Found: found, Session: session})
}

func (h *ExecutionHttpHandler) HandleGet(c *gin.Context) {
	executionCode := c.Param(ExecutionCodeParam)

	session, found := h.monitor.GetSession(executionCode)
	if !found {
		h.WriteError(c, http.StatusNotFound, fmt.Errorf("%w: \"%s\"", domain.ErrUnknownExecution, executionCode), "Execution not found.")
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *ExecutionHttpHandler) HandleStatistics(c *gin.Context) {
	c.JSON(http.StatusOK, h.monitor.GetStatistics())
}

// HandleExport writes every resident session as CSV.
func (h *ExecutionHttpHandler) HandleExport(c *gin.Context) {
	sessions := h.monitor.ListActiveSessions()

	rows := make([]*executionCsvRow, 0, len(sessions))
	for _, session := range sessions {
		rows = append(rows, newExecutionCsvRow(session))
	}

	var buffer bytes.Buffer
	if err := gocsv.Marshal(rows, &buffer); err != nil {
		h.logger.Error("Failed to encode execution sessions as CSV.", zap.Int("num-sessions", len(sessions)), zap.Error(err))
		h.WriteError(c, http.StatusInternalServerError, err, "Failed to export execution sessions.")
		return
	}

	filename := "executions-" + strconv.FormatInt(time.Now().Unix(), 10) + ".csv"
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Data(http.StatusOK, csvContentType, buffer.Bytes())
}

func (h *ExecutionHttpHandler) respondWithSession(c *gin.Context, executionCode string, status int) {
	session, found := h.monitor.GetSession(executionCode)
	c.JSON(status, &domain.ExecutionLookupResponse{Found: found, Session: session})
}
