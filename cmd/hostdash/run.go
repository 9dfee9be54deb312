package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vshulcz/hostdash/internal/adapters/http/ginserver"
	"github.com/vshulcz/hostdash/internal/adapters/http/ginserver/middlewares"
	"github.com/vshulcz/hostdash/internal/adapters/repository/memory"
	"github.com/vshulcz/hostdash/internal/config"
	"github.com/vshulcz/hostdash/internal/ports"
	"github.com/vshulcz/hostdash/internal/services/monitor"
	"github.com/vshulcz/hostdash/internal/services/sampler"
)

const shutdownTimeout = 5 * time.Second

// run serves the dashboard on ln and ticks the monitor until ctx is done.
func run(ctx context.Context, cfg config.DashboardConfig, provider ports.HostProvider, ln net.Listener, logger *zap.Logger) error {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	smp, err := sampler.New(ctx, provider, sampler.Options{DiskPath: cfg.DiskPath}, logger.Named("sampler"))
	if err != nil {
		_ = ln.Close()
		return err
	}
	ids := smp.SeriesIDs()
	repo := memory.New(cfg.HistoryPoints, ids)
	svc := monitor.New(smp, repo, provider, monitor.Options{
		Refresh:  cfg.RefreshPeriod,
		DiskPath: cfg.DiskPath,
		History:  cfg.HistoryPoints,
		Series:   len(ids),
	}, logger.Named("monitor"))

	r := ginserver.NewRouter(ginserver.NewHandler(svc, logger.Named("http")), logger,
		middlewares.ZapLogger(logger),
		middlewares.GzipResponse(),
	)
	srv := &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("dashboard started",
		zap.String("address", ln.Addr().String()),
		zap.Duration("refresh", cfg.RefreshPeriod),
		zap.Int("history", cfg.HistoryPoints),
		zap.Int("cores", smp.Cores()),
		zap.String("config_file", cfg.File),
	)

	monitorCtx, stopMonitor := context.WithCancel(ctx)
	defer stopMonitor()
	monitorDone := make(chan error, 1)
	go func() { monitorDone <- svc.Run(monitorCtx) }()

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	var result error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			result = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}

	stopMonitor()
	if err := <-monitorDone; err != nil && result == nil {
		result = err
	}
	if result != nil {
		return result
	}
	logger.Info("dashboard stopped", zap.Uint64("ticks", svc.Stats().Ticks))
	return nil
}
