package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/vshulcz/hostdash/internal/adapters/collector/hostps"
	"github.com/vshulcz/hostdash/internal/config"
	"github.com/vshulcz/hostdash/pkg/util"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	util.BuildInfo{Version: buildVersion, Date: buildDate, Commit: buildCommit}.Print(os.Stdout)

	cfg, err := config.LoadDashboardConfig(os.Args[1:], os.Stderr)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ln, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		logger.Fatal("listen failed", zap.String("address", cfg.Address), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, hostps.New(), ln, logger); err != nil {
		logger.Error("dashboard stopped with error", zap.Error(err))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
