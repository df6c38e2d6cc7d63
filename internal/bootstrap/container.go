package bootstrap

import (
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shipboard-io/shipboard/internal/config"
	"github.com/shipboard-io/shipboard/internal/infra/cache"
	"github.com/shipboard-io/shipboard/internal/infra/db"
	"github.com/shipboard-io/shipboard/internal/infra/logger"
	"github.com/shipboard-io/shipboard/internal/integrations"
	"github.com/shipboard-io/shipboard/internal/modules/handler"
	"github.com/shipboard-io/shipboard/internal/modules/model"
	"github.com/shipboard-io/shipboard/internal/modules/repo"
	"github.com/shipboard-io/shipboard/internal/modules/service"
)

func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.New(cfg.Log.Level)
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		d, err := db.New(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			_ = d.AutoMigrate(
				&model.User{},
				&model.Project{},
				&model.Metric{},
				&model.Goal{},
			)
		}
		return d, nil
	})

	// Redis
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return cache.New(cfg)
	})

	// outbound HTTP client shared by the provider integrations
	do.Provide(inj, func(i *do.Injector) (*http.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		timeout := cfg.Integrations.HTTPTimeoutSec
		if timeout <= 0 {
			timeout = 30
		}
		return &http.Client{
			Timeout:   time.Duration(timeout) * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}, nil
	})

	// integration clients
	do.Provide(inj, func(i *do.Injector) (*integrations.GitHubClient, error) {
		return integrations.NewGitHubClient(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*http.Client](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*integrations.TwitterClient, error) {
		return integrations.NewTwitterClient(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*http.Client](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*integrations.PlausibleClient, error) {
		return integrations.NewPlausibleClient(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*http.Client](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.ProjectRepo, error) {
		return repo.NewProjectRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.MetricRepo, error) {
		return repo.NewMetricRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.GoalRepo, error) {
		return repo.NewGoalRepo(do.MustInvoke[*gorm.DB](i)), nil
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (service.ProjectService, error) {
		return service.NewProjectService(
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[repo.MetricRepo](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.GoalService, error) {
		return service.NewGoalService(
			do.MustInvoke[repo.GoalRepo](i),
			do.MustInvoke[repo.ProjectRepo](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.MetricService, error) {
		return service.NewMetricService(
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[repo.MetricRepo](i),
			do.MustInvoke[repo.GoalRepo](i),
			do.MustInvoke[*redis.Client](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.SyncService, error) {
		return service.NewSyncService(
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[repo.MetricRepo](i),
			do.MustInvoke[*integrations.GitHubClient](i),
			do.MustInvoke[*integrations.TwitterClient](i),
			do.MustInvoke[*integrations.PlausibleClient](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.RevenueService, error) {
		return service.NewRevenueService(
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[repo.MetricRepo](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.ProjectHandler, error) {
		return handler.NewProjectHandler(do.MustInvoke[service.ProjectService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.GoalHandler, error) {
		return handler.NewGoalHandler(do.MustInvoke[service.GoalService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.MetricHandler, error) {
		return handler.NewMetricHandler(
			do.MustInvoke[service.MetricService](i),
			do.MustInvoke[service.ProjectService](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.SyncHandler, error) {
		return handler.NewSyncHandler(
			do.MustInvoke[service.SyncService](i),
			do.MustInvoke[service.MetricService](i),
			do.MustInvoke[service.ProjectService](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.WebhookHandler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return handler.NewWebhookHandler(
			do.MustInvoke[service.RevenueService](i),
			cfg.Stripe.WebhookSecret,
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.PublicHandler, error) {
		return handler.NewPublicHandler(do.MustInvoke[service.MetricService](i)), nil
	})

	return inj
}
