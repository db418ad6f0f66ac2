package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sta4888/TZL/internal/config"
	"github.com/sta4888/TZL/internal/ctrl"
	hdl "github.com/sta4888/TZL/internal/hdl/tcp"
	"github.com/sta4888/TZL/internal/items"
	"github.com/sta4888/TZL/internal/observability/metrics/prometheus"
	"github.com/sta4888/TZL/internal/observability/tracing/jaeger"
	"github.com/sta4888/TZL/internal/repo/db"
	"go.uber.org/zap"
)

const configPath = "configs/local.config.yaml"

func mustRegisterLogger(mode string) {
	switch mode {
	case "prod":
		zap.ReplaceGlobals(zap.Must(zap.NewProduction()))
	case "dev":
		zap.ReplaceGlobals(zap.Must(zap.NewDevelopment()))
	}
}

func main() {
	defer func() {
		if err := recover(); err != nil {
			zap.L().Panic("panic occurred", zap.Any("error", err))
			os.Exit(1)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conf := config.MustLoad(configPath)
	mustRegisterLogger(conf.Server.Mode)

	go prometheus.New(conf.Server.Port + 5).Start(ctx)
	go jaeger.Start(ctx, conf.ServiceName, conf.Jaeger)

	catalog, err := items.New(conf.Items.File)
	if err != nil {
		zap.L().Fatal("Failed to load item catalog", zap.Error(err))
	}

	repo := db.New(conf.DB)
	svc := ctrl.New(repo, catalog, conf.Game)
	h := hdl.New(svc)

	zap.L().Info(
		fmt.Sprintf(
			"Starting server on %v:%v",
			conf.Server.Host,
			conf.Server.Port,
		),
	)
	go h.Start(conf.Server.Host, conf.Server.Port)

	// SIGHUP re-reads the items file so catalog edits made by the
	// administrative side take effect without a restart.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for range hup {
			if err := catalog.Reload(); err != nil {
				zap.L().Error("Failed to reload catalog", zap.Error(err))
			}
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-c

	zap.L().Info("Shutting down gracefully...")
	if err := h.Close(); err != nil {
		zap.L().Warn("Error closing handler", zap.Error(err))
	}

	if err := repo.Close(); err != nil {
		zap.L().Warn("Error closing repository", zap.Error(err))
	}

	os.Exit(0)
}
