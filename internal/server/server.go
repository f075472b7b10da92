package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"sync"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mattn/go-colorable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/scusemua/execution-monitor/m/v2/internal/domain"
	"github.com/scusemua/execution-monitor/m/v2/internal/server/connection"
	"github.com/scusemua/execution-monitor/m/v2/internal/server/executor"
	"github.com/scusemua/execution-monitor/m/v2/internal/server/handlers"
	"github.com/scusemua/execution-monitor/m/v2/internal/server/metrics"
	"github.com/scusemua/execution-monitor/m/v2/internal/server/monitor"
	"github.com/scusemua/execution-monitor/m/v2/internal/server/notification"
	"github.com/scusemua/execution-monitor/m/v2/internal/server/report"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// ShutdownGracePeriod bounds how long Close waits for in-flight HTTP requests.
	ShutdownGracePeriod = 5 * time.Second
)

type serverImpl struct {
	logger        *zap.Logger
	sugaredLogger *zap.SugaredLogger
	atom          *zap.AtomicLevel
	opts          *domain.Configuration
	engine        *gin.Engine
	httpServer    *http.Server

	// Handler returned by promhttp.HandlerFor to serve Prometheus metrics.
	prometheusHandler http.Handler
	prometheusMetrics *metrics.PrometheusMetricsWrapper

	// executionMonitor is the registry of the executions that are currently being tracked.
	executionMonitor *monitor.ExecutionMonitorImpl

	// healthScanner flags stuck executions and evicts finished ones in the background.
	healthScanner *monitor.HealthScanner

	notificationHub *notification.HubImpl
	connections     *connection.Manager
	executorTracker *executor.StatusTracker
	reportNotifier  *report.Notifier

	closeOnce sync.Once
	closeErr  error
}

func NewServer(opts *domain.Configuration) domain.Server {
	return newServerImpl(opts)
}

func newServerImpl(opts *domain.Configuration) *serverImpl {
	level, err := zapcore.ParseLevel(opts.LogLevel)
	if err != nil {
		level = zapcore.DebugLevel
	}

	atom := zap.NewAtomicLevelAt(level)
	s := &serverImpl{
		opts:   opts,
		atom:   &atom,
		engine: gin.New(),
	}

	zapConfig := zap.NewDevelopmentEncoderConfig()
	zapConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(zapConfig), zapcore.AddSync(colorable.NewColorableStdout()), atom)
	logger := zap.New(core, zap.Development())
	if logger == nil {
		panic("failed to create logger for execution monitor server")
	}

	s.logger = logger
	s.sugaredLogger = logger.Sugar()

	if err != nil {
		s.logger.Warn("Invalid log level specified. Defaulting to debug.", zap.String("log-level", opts.LogLevel), zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	s.prometheusHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})

	prometheusMetrics, errs := metrics.NewPrometheusMetricsWrapper(registry, s.atom)
	if len(errs) > 0 {
		s.logger.Error("Failed to register one or more Prometheus metrics.", zap.Errors("errors", errs))
	}
	s.prometheusMetrics = prometheusMetrics

	s.wireComponents()

	if err := s.setupRoutes(); err != nil {
		panic(err)
	}

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.ServerPort),
		Handler: s.engine,
	}

	return s
}

// wireComponents creates the execution monitor, the notification service and the collaborators that feed them.
func (s *serverImpl) wireComponents() {
	s.executionMonitor = monitor.NewExecutionMonitor(s.atom)
	s.executorTracker = executor.NewStatusTracker(s.atom)

	s.connections = connection.NewConnectionManager(s.opts, s.prometheusMetrics, s.atom)
	s.notificationHub = notification.NewNotificationHub(s.connections, s.prometheusMetrics, s.atom)
	s.connections.Attach(s.notificationHub, s.executionMonitor)

	s.reportNotifier = report.NewNotifier(s.notificationHub, s.atom)

	s.executionMonitor.AddListener(monitor.NewNotificationRelay(s.notificationHub, s.logger.Named("relay")))
	s.executionMonitor.AddListener(metrics.NewExecutionMetricsListener(s.prometheusMetrics))

	s.healthScanner = monitor.NewHealthScanner(s.executionMonitor, s.executorTracker, s.opts, s.prometheusMetrics, s.atom)
}

// ErrorHandlerMiddleware writes any errors attached to the request if the handler did not write a response.
func (s *serverImpl) ErrorHandlerMiddleware(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}

	errs := make([]*gin.Error, 0, len(c.Errors))
	for _, err := range c.Errors {
		errs = append(errs, err)
	}

	c.JSON(-1, errs)
}

func (s *serverImpl) setupRoutes() error {
	if s.atom.Level() == zapcore.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(gin.Logger())
	s.engine.Use(cors.Default())
	s.engine.Use(s.ErrorHandlerMiddleware)

	///////////////////////
	// Websocket Handler //
	///////////////////////
	s.engine.GET(domain.WebsocketEndpoint, s.connections.ServeWebsocket)

	if s.opts.EnablePprof {
		pprof.Register(s.engine, "dev/pprof")
	}

	executionHandler := handlers.NewExecutionHttpHandler(s.opts, s.executionMonitor, s.atom)
	executorStatusHandler := handlers.NewExecutorStatusHttpHandler(s.opts, s.executorTracker, s.atom)
	reportHandler := handlers.NewReportHttpHandler(s.opts, s.reportNotifier, s.atom)
	notificationStatsHandler := handlers.NewNotificationStatsHttpHandler(s.opts, s.notificationHub, s.connections, s.atom)

	executionEndpoint := path.Join(domain.ExecutionsEndpoint, ":"+handlers.ExecutionCodeParam)
	reportEndpoint := path.Join(domain.ReportsEndpoint, ":"+handlers.ReportIdParam)

	apiGroup := s.engine.Group(domain.BaseApiGroupEndpoint)
	{
		// Used by the execution engine to drive the lifecycle of an execution.
		apiGroup.POST(domain.ExecutionsEndpoint, executionHandler.HandleStart)
		apiGroup.PUT(path.Join(executionEndpoint, "progress"), executionHandler.HandleProgress)
		apiGroup.PUT(path.Join(executionEndpoint, "complete"), executionHandler.HandleComplete)
		apiGroup.DELETE(executionEndpoint, executionHandler.HandleStop)

		// Used by dashboards to query the executions being monitored.
		apiGroup.GET(domain.ExecutionsEndpoint, executionHandler.HandleRequest)
		apiGroup.GET(path.Join(domain.ExecutionsEndpoint, "statistics"), executionHandler.HandleStatistics)
		apiGroup.GET(path.Join(domain.ExecutionsEndpoint, "export"), executionHandler.HandleExport)
		apiGroup.GET(executionEndpoint, executionHandler.HandleGet)

		// Used by the execution engine to report the status of its worker pool.
		apiGroup.GET(domain.ExecutorStatusEndpoint, executorStatusHandler.HandleRequest)
		apiGroup.PUT(domain.ExecutorStatusEndpoint, executorStatusHandler.HandlePutRequest)

		// Used by the report generator.
		apiGroup.POST(path.Join(reportEndpoint, "progress"), reportHandler.HandleRequest)
		apiGroup.POST(path.Join(reportEndpoint, "complete"), reportHandler.HandleCompleted)

		apiGroup.GET(domain.NotificationStatsEndpoint, notificationStatsHandler.HandleRequest)
	}

	////////////////////////
	// Prometheus metrics //
	////////////////////////
	apiGroup.GET(domain.PrometheusEndpoint, s.HandlePrometheusRequest)

	return nil
}

// HandlePrometheusRequest passes the request directly to the http.Handler returned by promhttp.HandlerFor.
func (s *serverImpl) HandlePrometheusRequest(c *gin.Context) {
	s.prometheusHandler.ServeHTTP(c.Writer, c.Request)
}

// Serve starts the health scanner and serves HTTP until Close is called. This is a blocking call.
func (s *serverImpl) Serve() error {
	if err := s.healthScanner.Start(context.Background()); err != nil {
		return err
	}

	s.logger.Info("Starting execution monitor server.", zap.String("addr", s.httpServer.Addr))
	s.sugaredLogger.Debugf("Configuration:\n%s", s.opts.String())

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("HTTP server failed.", zap.Error(err))
		s.healthScanner.Stop()
		return err
	}

	return nil
}

// Close stops the health scanner, closes every websocket connection and shuts the HTTP server down.
func (s *serverImpl) Close() error {
	s.closeOnce.Do(func() {
		s.logger.Info("Shutting down execution monitor server.")

		s.healthScanner.Stop()
		s.connections.CloseAll()

		ctx, cancel := context.WithTimeout(context.Background(), ShutdownGracePeriod)
		defer cancel()

		s.closeErr = s.httpServer.Shutdown(ctx)
		if s.closeErr != nil {
			s.logger.Error("Failed to shut down HTTP server gracefully.", zap.Error(s.closeErr))
		}
	})

	return s.closeErr
}
