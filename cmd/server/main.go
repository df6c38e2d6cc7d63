package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shipboard-io/shipboard/internal/bootstrap"
	"github.com/shipboard-io/shipboard/internal/config"
	"github.com/shipboard-io/shipboard/internal/modules/handler"
	"github.com/shipboard-io/shipboard/internal/router"
	"github.com/shipboard-io/shipboard/internal/telemetry"
)

func main() {
	inj := bootstrap.BuildContainer()

	cfg := do.MustInvoke[*config.Config](inj)
	log := do.MustInvoke[*zap.Logger](inj)
	defer func() { _ = log.Sync() }()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	tp, err := telemetry.SetupTracing(cfg)
	if err != nil {
		log.Fatal("failed to set up tracing", zap.Error(err))
	}
	if tp != nil {
		log.Info("tracing enabled", zap.String("endpoint", cfg.Telemetry.OtlpEndpoint))
	}

	r := router.NewRouter(router.RouterDeps{
		Config:         cfg,
		DB:             do.MustInvoke[*gorm.DB](inj),
		Log:            log,
		ProjectHandler: do.MustInvoke[*handler.ProjectHandler](inj),
		GoalHandler:    do.MustInvoke[*handler.GoalHandler](inj),
		MetricHandler:  do.MustInvoke[*handler.MetricHandler](inj),
		SyncHandler:    do.MustInvoke[*handler.SyncHandler](inj),
		WebhookHandler: do.MustInvoke[*handler.WebhookHandler](inj),
		PublicHandler:  do.MustInvoke[*handler.PublicHandler](inj),
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	if err := telemetry.Shutdown(ctx); err != nil {
		log.Error("tracer shutdown failed", zap.Error(err))
	}
	if rdb, err := do.Invoke[*redis.Client](inj); err == nil && rdb != nil {
		_ = rdb.Close()
	}
	log.Info("bye")
}
