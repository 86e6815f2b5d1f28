package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"LevelBias/internal/domain/repository"
	"LevelBias/internal/handler/ws"
	icache "LevelBias/internal/service/cache"
	"LevelBias/internal/services/instrument"
	pkgch "LevelBias/pkg/clickhouse"
	"LevelBias/pkg/config"
	xhttp "LevelBias/pkg/http"
	applogger "LevelBias/pkg/logger"
	"LevelBias/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	chClient   *pkgch.Client
	rq         *queue.RedisQueue
	hub        *ws.Hub
	handler    xhttp.Handler
	predStore  repository.PredictionStore
	audit      repository.AuditPublisher
	levels     *icache.LevelCache
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	chClient *pkgch.Client,
	rq *queue.RedisQueue,
	hub *ws.Hub,
	handler xhttp.Handler,
	predStore repository.PredictionStore,
	audit repository.AuditPublisher,
	levels *icache.LevelCache,
) *App {
	return &App{
		cfg:       cfg,
		l:         l,
		chClient:  chClient,
		rq:        rq,
		hub:       hub,
		handler:   handler,
		predStore: predStore,
		audit:     audit,
		levels:    levels,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Prediction table schema
	if a.predStore != nil {
		initCtx, initCancel := context.WithTimeout(ctx, 10*time.Second)
		if err := a.predStore.Init(initCtx); err != nil {
			initCancel()
			a.l.Error("prediction store init error", applogger.Error(err))
			return err
		}
		initCancel()
		a.l.Info("prediction store ready")
	}

	// Async persistence workers
	if a.rq != nil {
		if err := a.rq.Start(); err != nil {
			a.l.Error("queue start error", applogger.Error(err))
			return err
		}
		a.rq.StartRetryProcessor()
		a.l.Info("persistence queue started", applogger.Int("workers", a.cfg.Queue.Workers))
	}

	// Level cache janitor
	if a.levels != nil && a.cfg.Prediction.CacheCleanupTick > 0 {
		go a.cleanupLoop(ctx)
	}

	// HTTP server with REST routes, then the WebSocket hub on the same Echo
	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if a.hub != nil {
		a.hub.RegisterRoutes(a.httpServer.Echo())
	}
	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// cleanupLoop periodically drops level-cache entries no analysis has
// touched within the configured TTL.
func (a *App) cleanupLoop(ctx context.Context) {
	ttl := a.cfg.Prediction.CacheCleanupTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	ticker := time.NewTicker(a.cfg.Prediction.CacheCleanupTick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed := 0
			for _, code := range instrument.Codes() {
				removed += a.levels.Cleanup(code, now, ttl)
			}
			if removed > 0 {
				a.l.Info("level cache cleanup", applogger.Int("removed", removed))
			}
		}
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	if a.hub != nil {
		a.hub.Close()
	}

	if a.rq != nil {
		if err := a.rq.Stop(shutdownCtx); err != nil {
			a.l.Warn("queue stop error", applogger.Error(err))
		}
	}

	if a.audit != nil {
		if err := a.audit.Close(); err != nil {
			a.l.Warn("audit publisher close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}
