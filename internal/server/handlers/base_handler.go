package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mattn/go-colorable"
	"github.com/scusemua/execution-monitor/m/v2/internal/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type BaseHandler struct {
	http.Handler

	logger        *zap.Logger
	sugaredLogger *zap.SugaredLogger
	opts          *domain.Configuration

	BackendHttpGetHandler domain.BackendHttpGetHandler
}

func newBaseHandler(opts *domain.Configuration, atom *zap.AtomicLevel) *BaseHandler {
	handler := &BaseHandler{
		opts: opts,
	}

	zapConfig := zap.NewDevelopmentEncoderConfig()
	zapConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(zapConfig), zapcore.AddSync(colorable.NewColorableStdout()), atom)
	logger := zap.New(core, zap.Development())
	if logger == nil {
		panic("failed to create logger for HTTP handler")
	}

	handler.logger = logger
	handler.sugaredLogger = logger.Sugar()

	handler.BackendHttpGetHandler = handler

	return handler
}

func (h *BaseHandler) PrimaryHttpHandler() domain.BackendHttpGetHandler {
	return h.BackendHttpGetHandler
}

// WriteError writes an error back to the client as a domain.ErrorMessage and aborts the request.
func (h *BaseHandler) WriteError(c *gin.Context, status int, err error, description string) {
	c.AbortWithStatusJSON(status, domain.NewErrorMessage(err, description))
}

func (h *BaseHandler) HandleRequest(c *gin.Context) {
	h.BackendHttpGetHandler.HandleRequest(c)
}
