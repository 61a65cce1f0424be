package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/preston-bernstein/cricket-data-service/internal/app/matches"
	"github.com/preston-bernstein/cricket-data-service/internal/app/news"
	"github.com/preston-bernstein/cricket-data-service/internal/app/waitlist"
	"github.com/preston-bernstein/cricket-data-service/internal/config"
	httpserver "github.com/preston-bernstein/cricket-data-service/internal/http"
	"github.com/preston-bernstein/cricket-data-service/internal/http/handlers"
	"github.com/preston-bernstein/cricket-data-service/internal/logging"
	"github.com/preston-bernstein/cricket-data-service/internal/metrics"
	"github.com/preston-bernstein/cricket-data-service/internal/providers"
	"github.com/preston-bernstein/cricket-data-service/internal/query"
)

var metricsSetup = metrics.Setup

// Server owns the query cache, the live tracker and the HTTP listeners.
type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	cache         *query.Cache
	tracker       Tracker
	httpServer    httpServer
	metricsServer httpServer
	metricsStop   func(context.Context) error
}

// New constructs a server wired to the configured backend.
func New(cfg config.Config, logger *slog.Logger) *Server {
	return newServerWithBackend(cfg, logger, nil, nil)
}

// newServerWithBackend wires the full stack. A nil backend builds a client from cfg;
// a nil recorder runs telemetry setup.
func newServerWithBackend(cfg config.Config, logger *slog.Logger, b providers.Backend, recorder *metrics.Recorder) *Server {
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger, recorder)

	factory := newBackendFactory(logger, recorder)
	client := factory.client(cfg.Backend)
	if b == nil {
		b = client
	}
	submitter, ok := b.(waitlist.Submitter)
	if !ok {
		submitter = client
	}
	resolver := factory.resolver(cfg.Backend, b)

	cache := query.New(query.Config{
		Logger:  logger,
		Metrics: recorder,
		Retry: &query.RetryPolicy{
			MaxRetries:      cfg.Query.RetryMax,
			InitialInterval: cfg.Query.RetryBase,
			MaxInterval:     cfg.Query.RetryCap,
		},
		GCTime: cfg.Query.GCTime,
	})
	matchSvc := matches.NewService(resolver, cache, matches.Intervals{
		Live:      cfg.Query.LivePollInterval,
		Detail:    cfg.Query.DetailPollInterval,
		Scorecard: cfg.Query.ScorecardPollInterval,
	}, logger)
	tracker := matches.NewTracker(matchSvc, logger, 0)

	handler := handlers.NewHandler(
		matchSvc,
		news.NewService(resolver, cache),
		waitlist.NewService(submitter, logger),
		logger,
		tracker.LiveStatus,
	).WithBackendCheck(backendCheck(b, client))

	return &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		cache:         cache,
		tracker:       tracker,
		httpServer:    buildHTTPServer(cfg, handler, logger, recorder),
		metricsServer: metricsSrv,
		metricsStop:   metricsShutdown,
	}
}

// newServerWithDeps is used for testing to inject custom components.
func newServerWithDeps(cfg config.Config, logger *slog.Logger, cache *query.Cache, httpSrv httpServer, tracker Tracker) *Server {
	return &Server{
		cfg:        cfg,
		logger:     logger,
		cache:      cache,
		tracker:    tracker,
		httpServer: httpSrv,
	}
}

func buildHTTPServer(cfg config.Config, handler *handlers.Handler, logger *slog.Logger, recorder *metrics.Recorder) httpServer {
	router := httpserver.NewRouter(handler, logger, recorder)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(router, cfg.Metrics.ServiceName),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
	return netHTTPServer{srv: srv}
}

// Run starts the live tracker and HTTP server, then waits for context cancellation to shut down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.startServer(stop)
	s.startTracker(ctx)

	<-ctx.Done()
	logging.Info(s.logger, "shutdown signal received")

	s.gracefulShutdown()
}

func (s *Server) startServer(stop context.CancelFunc) {
	logging.Info(s.logger, "http server starting", slog.String("addr", s.httpServer.Addr()))
	launchServer("http", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	logging.Info(s.logger, "metrics server starting", slog.String("addr", s.metricsServer.Addr()))
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

func (s *Server) startTracker(ctx context.Context) {
	if s.tracker == nil {
		return
	}
	go func() {
		if err := s.tracker.Run(ctx); err != nil && !errors.Is(err, query.ErrClosed) {
			logging.Error(s.logger, "live tracker stopped", err)
		}
	}()
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics shutdown failed", slog.Any("err", err))
		}
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics server shutdown failed", slog.Any("err", err))
		}
	}

	if s.tracker != nil {
		s.tracker.Close()
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error(s.logger, "graceful shutdown failed", err)
	}

	if s.cache != nil {
		s.cache.Close()
	}

	logging.Info(s.logger, "shutdown complete")
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}

	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", slog.Any("err", err))
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		metricsSrv = netHTTPServer{
			srv: &http.Server{
				Addr:              ":" + recCfg.Port,
				Handler:           handler,
				ReadHeaderTimeout: readHeaderTimeout,
			},
		}
	}

	return rec, metricsSrv, shutdown
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Warn(logger, name+" server failed", slog.Any("err", err))
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}
