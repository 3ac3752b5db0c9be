package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"dupr-sync-service/internal/config"
	"dupr-sync-service/internal/domain"
	httpapi "dupr-sync-service/internal/http"
	"dupr-sync-service/internal/logging"
	"dupr-sync-service/internal/metrics"
	"dupr-sync-service/internal/notify"
	"dupr-sync-service/internal/providers"
	"dupr-sync-service/internal/providers/courtside"
	"dupr-sync-service/internal/providers/dupr"
	"dupr-sync-service/internal/report"
	"dupr-sync-service/internal/scheduler"
	"dupr-sync-service/internal/storage"
	"dupr-sync-service/internal/sync"
)

var metricsSetup = metrics.Setup

// Server owns the long-running pieces: the HTTP API, the optional interval
// scheduler, the metrics endpoint, and the store connections.
type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	synchronizer  *sync.Synchronizer
	stores        storage.Stores
	reports       *report.Writer
	httpServer    httpServer
	metricsServer httpServer
	scheduler     Scheduler
	metricsStop   func(context.Context) error
	db            *sql.DB
}

// New wires the full service from configuration.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger)

	components, err := BuildSyncComponents(ctx, cfg, logger, recorder)
	if err != nil {
		return nil, err
	}

	reports := report.NewWriter(cfg.Sync.ReportDir)
	runner := buildRunner(components.Synchronizer, reports, buildNotifier(cfg), logger)

	var sched Scheduler
	var statusFn func() scheduler.Status
	if cfg.Sync.ScheduleEnabled {
		s := scheduler.New(runner, logger, cfg.Sync.Interval, cfg.Sync.RunOnStart)
		sched = s
		statusFn = s.Status
	}

	handler := httpapi.NewHandler(components.Synchronizer, components.Stores, reports, statusFn, cfg.Sync.AdminToken, logger)
	router := httpapi.NewRouter(handler)
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	wrapped := httpapi.LoggingMiddleware(logger, recorder, router)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      wrapped,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		synchronizer:  components.Synchronizer,
		stores:        components.Stores,
		reports:       reports,
		httpServer:    netHTTPServer{srv: srv},
		metricsServer: metricsSrv,
		scheduler:     sched,
		metricsStop:   metricsShutdown,
		db:            components.DB,
	}, nil
}

// SyncComponents bundles everything a sync run needs; the CLI reuses this
// wiring without the HTTP layer.
type SyncComponents struct {
	Synchronizer *sync.Synchronizer
	Stores       storage.Stores
	DB           *sql.DB
}

// BuildSyncComponents constructs the provider chain, the stores, and the
// synchronizer from configuration.
func BuildSyncComponents(ctx context.Context, cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (SyncComponents, error) {
	stores, db, err := buildStores(ctx, cfg, logger)
	if err != nil {
		return SyncComponents{}, err
	}

	duprClient := dupr.NewClient(dupr.Config{
		BaseURL:  cfg.Dupr.BaseURL,
		Username: cfg.Dupr.Username,
		Password: cfg.Dupr.Password,
		ClubID:   cfg.Dupr.ClubID,
		Logger:   logger,
	})
	provider := providers.NewRetryingProvider(duprClient, logger, recorder, dupr.Name, 0, 0)

	var facility sync.FacilityLookup
	if cfg.Courtside.Enabled() {
		facility = courtside.NewClient(courtside.Config{
			BaseURL:        cfg.Courtside.BaseURL,
			AdminPath:      cfg.Courtside.AdminPath,
			FacilityID:     cfg.Courtside.FacilityID,
			RatingProvider: cfg.Courtside.RatingProvider,
			SessionCookie:  cfg.Courtside.SessionCookie,
			Logger:         logger,
		})
	}

	synchronizer := sync.New(sync.Config{
		Provider: provider,
		Stores:   stores,
		Facility: facility,
		Logger:   logger,
		Metrics:  recorder,
		RowDelay: cfg.Sync.RowDelay,
	})

	return SyncComponents{Synchronizer: synchronizer, Stores: stores, DB: db}, nil
}

func buildStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage.Stores, *sql.DB, error) {
	if cfg.Storage.Backend() == config.StorePostgres {
		db, err := storage.Open(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			return storage.Stores{}, nil, err
		}
		if err := storage.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return storage.Stores{}, nil, err
		}
		logging.Info(logger, "using postgres stores")
		return storage.NewPostgresStores(db), db, nil
	}

	memory := storage.NewMemoryStore()
	if cfg.Storage.RosterCSV != "" {
		file, err := os.Open(cfg.Storage.RosterCSV)
		if err != nil {
			return storage.Stores{}, nil, fmt.Errorf("opening roster csv: %w", err)
		}
		defer file.Close()

		rows, err := storage.ParseRosterCSV(file)
		if err != nil {
			return storage.Stores{}, nil, fmt.Errorf("parsing roster csv: %w", err)
		}
		if err := memory.ReplaceAll(ctx, rows); err != nil {
			return storage.Stores{}, nil, err
		}
		logging.Info(logger, "roster loaded from csv",
			"path", cfg.Storage.RosterCSV,
			logging.FieldCount, len(rows),
		)
	}
	return memory.Views(), nil, nil
}

func buildNotifier(cfg config.Config) notify.Notifier {
	if !cfg.Notify.Enabled() {
		return nil
	}
	return notify.NewMailer(notify.Config{
		APIKey:   cfg.Notify.SendgridAPIKey,
		From:     cfg.Notify.From,
		To:       cfg.Notify.To,
		FromName: "Roster Sync",
	})
}

// buildRunner composes one scheduled run: sync the roster, persist the
// report, send the summary. Report and mail failures are logged but never
// fail the run.
func buildRunner(synchronizer *sync.Synchronizer, reports *report.Writer, notifier notify.Notifier, logger *slog.Logger) scheduler.Runner {
	return scheduler.RunnerFunc(func(ctx context.Context) error {
		runReport, err := synchronizer.RunBatch(ctx)
		if err != nil {
			return err
		}
		persistRun(ctx, runReport, reports, notifier, logger)
		return nil
	})
}

func persistRun(ctx context.Context, runReport domain.Report, reports *report.Writer, notifier notify.Notifier, logger *slog.Logger) {
	if reports != nil {
		if _, err := reports.Write(runReport); err != nil {
			logging.Error(logger, "writing run report failed", err)
		}
	}
	if notifier != nil {
		if err := notifier.NotifyRun(ctx, runReport); err != nil {
			logging.Error(logger, "sending run summary failed", err)
		}
	}
}

func buildMetrics(cfg config.Config, logger *slog.Logger) (*metrics.Recorder, httpServer, func(context.Context) error) {
	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", "error", err)
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		metricsSrv = netHTTPServer{
			srv: &http.Server{
				Addr:    ":" + recCfg.Port,
				Handler: handler,
			},
		}
	}
	return rec, metricsSrv, shutdown
}

// Run starts the servers and the scheduler, then waits for context
// cancellation to shut down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.startServer(stop)
	if s.scheduler != nil {
		s.scheduler.Start(ctx)
	}

	<-ctx.Done()
	logging.Info(s.logger, "shutdown signal received")

	s.gracefulShutdown()
}

func (s *Server) startServer(stop context.CancelFunc) {
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
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics shutdown failed", "error", err)
		}
	}
	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics server shutdown failed", "error", err)
		}
	}
	if s.scheduler != nil {
		if err := s.scheduler.Stop(shutdownCtx); err != nil {
			logging.Error(s.logger, "failed to stop scheduler", err)
		}
	}
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error(s.logger, "graceful shutdown failed", err)
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			logging.Warn(s.logger, "closing database failed", "error", err)
		}
	}

	logging.Info(s.logger, "shutdown complete")
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		logging.Info(logger, "starting "+name+" server", "addr", srv.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Warn(logger, name+" server failed", "error", err)
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
