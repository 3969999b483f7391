package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/doorman-bot/doorman/screener/auditlog"
	"github.com/doorman-bot/doorman/screener/countstore"
	"github.com/doorman-bot/doorman/screener/denylist"
	"github.com/doorman-bot/doorman/screener/engine"
	"github.com/doorman-bot/doorman/screener/fingerprint"
	"github.com/doorman-bot/doorman/screener/gateway"
	"github.com/doorman-bot/doorman/screener/registry"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	slogecho "github.com/samber/slog-echo"
)

type Server struct {
	logger *slog.Logger
	engine *engine.Engine
	echo   *echo.Echo
	httpd  *http.Server

	sweepInterval      time.Duration
	pingReportInterval time.Duration
}

type Config struct {
	Logger             *slog.Logger
	BridgeHost         string
	BridgeToken        string
	DenylistFile       string
	AuditLogFile       string
	RedisURL           string
	WarnChannelID      string
	PingChannelID      string
	LFGChannelIDs      []string
	AgeThresholdDays   int64
	ReconcileWindow    time.Duration
	SweepInterval      time.Duration
	PingReportInterval time.Duration
	AdminBind          string
}

func NewServer(config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	var dl denylist.Store
	var counters countstore.CountStore
	if config.RedisURL != "" {
		store, err := denylist.NewRedisStore(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis denylist: %w", err)
		}
		dl = store

		cnt, err := countstore.NewRedisCountStore(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis countstore: %w", err)
		}
		counters = cnt
	} else {
		if err := os.MkdirAll(filepath.Dir(config.DenylistFile), 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		store, err := denylist.NewFileStore(config.DenylistFile)
		if err != nil {
			return nil, fmt.Errorf("initializing denylist file: %w", err)
		}
		dl = store
		counters = countstore.NewMemCountStore()
	}

	if err := os.MkdirAll(filepath.Dir(config.AuditLogFile), 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	pingChannels := make(map[string]bool, len(config.LFGChannelIDs))
	for _, id := range config.LFGChannelIDs {
		pingChannels[id] = true
	}

	eng := &engine.Engine{
		Logger:       logger,
		Gateway:      gateway.NewHTTPGateway(config.BridgeHost, config.BridgeToken, logger),
		Denylist:     dl,
		Registry:     registry.NewMemRegistry(),
		Counters:     counters,
		Audit:        auditlog.NewFileLogger(config.AuditLogFile),
		Fingerprints: fingerprint.NewFetcher(logger, 5_000),

		WarnChannelID: config.WarnChannelID,
		PingChannelID: config.PingChannelID,
		PingChannels:  pingChannels,
		PingThresholds: map[string]int{
			"soundless":   50,
			"rare_spawns": 50,
			"raids":       50,
			"dungeons":    50,
		},
		ReconcileWindow: config.ReconcileWindow,
	}
	if config.AgeThresholdDays > 0 {
		eng.SetAgeThresholdDays(config.AgeThresholdDays)
	}

	srv := &Server{
		logger:             logger,
		engine:             eng,
		sweepInterval:      config.SweepInterval,
		pingReportInterval: config.PingReportInterval,
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("1M"))

	e.GET("/_health", srv.handleHealthCheck)

	// event intake (pushed by the platform bridge)
	e.POST("/events/join", srv.handleJoinEvent)
	e.POST("/events/removal", srv.handleRemovalEvent)
	e.POST("/events/decision", srv.handleDecisionEvent)
	e.POST("/events/message", srv.handleMessageEvent)

	// admin surface; authorization happens upstream (reverse proxy or
	// bridge), the core trusts whoever reaches these
	e.GET("/admin/denylist", srv.handleDenylistExport)
	e.POST("/admin/denylist/:fp", srv.handleDenylistAdd)
	e.DELETE("/admin/denylist/:fp", srv.handleDenylistRemove)
	e.GET("/admin/denylist/:fp", srv.handleDenylistCheck)
	e.POST("/admin/screening", srv.handleScreeningToggle)
	e.GET("/admin/warnings", srv.handleWarningList)
	e.GET("/admin/stats/:id", srv.handleAuthorStats)

	srv.echo = e
	srv.httpd = &http.Server{
		Handler:      e,
		Addr:         config.AdminBind,
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
	}

	return srv, nil
}

func (s *Server) RunMetrics(listen string) error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, nil)
}

// Run starts the admin/event HTTP listener and the periodic loops, and
// blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.engine.RunSweeper(ctx, s.sweepInterval)
	go s.engine.RunPingReporter(ctx, s.pingReportInterval)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting admin listener", "bind", s.httpd.Addr)
		if err := s.httpd.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("admin listener failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return s.httpd.Shutdown(shutdownCtx)
	}
}
