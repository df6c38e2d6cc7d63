package router

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shipboard-io/shipboard/internal/config"
	"github.com/shipboard-io/shipboard/internal/middleware"
	"github.com/shipboard-io/shipboard/internal/modules/handler"
	"github.com/shipboard-io/shipboard/internal/modules/serializer"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

type RouterDeps struct {
	Config         *config.Config
	DB             *gorm.DB
	Log            *zap.Logger
	ProjectHandler *handler.ProjectHandler
	GoalHandler    *handler.GoalHandler
	MetricHandler  *handler.MetricHandler
	SyncHandler    *handler.SyncHandler
	WebhookHandler *handler.WebhookHandler
	PublicHandler  *handler.PublicHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})
	}

	r := gin.New()
	r.Use(gin.Recovery())

	// Add OpenTelemetry middleware if enabled (using configuration system)
	if d.Config.Telemetry.Enabled && d.Config.Telemetry.OtlpEndpoint != "" {
		r.Use(middleware.OtelTracing(d.Config.App.Name))
		// Add trace ID to response header
		r.Use(middleware.TraceID())
	}

	r.Use(middleware.ZapLogger(d.Log))

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "ok"}) })

	// unauthenticated surfaces
	r.GET("/public/:slug", d.PublicHandler.GetPublicOverview)
	r.POST("/webhooks/stripe", d.WebhookHandler.StripeWebhook)

	v1 := r.Group("/api/v1")
	{
		v1.Use(middleware.UserAuth(d.Config, d.DB))

		// ping endpoint
		v1.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "pong"}) })

		projects := v1.Group("/projects")
		{
			projects.GET("", d.ProjectHandler.ListProjects)
			projects.POST("", d.ProjectHandler.CreateProject)
			projects.GET("/:project_id", d.ProjectHandler.GetProject)
			projects.PATCH("/:project_id", d.ProjectHandler.UpdateProject)
			projects.DELETE("/:project_id", d.ProjectHandler.DeleteProject)

			projects.GET("/:project_id/metrics", d.MetricHandler.GetOverview)
			projects.POST("/:project_id/metrics", d.MetricHandler.RecordMetric)

			projects.POST("/:project_id/sync", d.SyncHandler.SyncProject)
			projects.GET("/:project_id/sync", d.SyncHandler.SyncStatus)
		}

		goals := v1.Group("/goals")
		{
			goals.GET("", d.GoalHandler.ListGoals)
			goals.POST("", d.GoalHandler.CreateGoal)
			goals.PATCH("/:goal_id", d.GoalHandler.UpdateGoal)
			goals.DELETE("/:goal_id", d.GoalHandler.DeleteGoal)
		}

		v1.POST("/sync", d.SyncHandler.SyncAll)
	}
	return r
}
