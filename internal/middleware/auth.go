package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/shipboard-io/shipboard/internal/config"
	"github.com/shipboard-io/shipboard/internal/modules/model"
	"github.com/shipboard-io/shipboard/internal/modules/serializer"
	"github.com/shipboard-io/shipboard/internal/pkg/utils/tokens"
)

// UserAuth returns a middleware that authenticates requests using user API
// keys. It validates the bearer token, looks up the user in the database,
// and sets the user in the context. It also sets the user_id attribute on
// the current span for telemetry filtering.
func UserAuth(cfg *config.Config, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ctx, authSpan := otel.Tracer("middleware").Start(ctx, "user_auth",
			trace.WithAttributes(attribute.String("middleware", "user_auth")))

		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			authSpan.SetAttributes(attribute.Bool("authenticated", false))
			authSpan.End()
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}
		raw := strings.TrimPrefix(auth, "Bearer ")

		secret, ok := tokens.ParseToken(raw, cfg.Auth.APIKeyPrefix)
		if !ok {
			authSpan.SetAttributes(attribute.Bool("authenticated", false))
			authSpan.End()
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}

		lookup := tokens.HMAC256Hex(cfg.Auth.SecretPepper, secret)

		var user model.User
		if err := db.WithContext(ctx).Where(&model.User{APIKeyHMAC: lookup}).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				authSpan.SetAttributes(attribute.Bool("authenticated", false))
				authSpan.End()
				c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
				return
			}
			authSpan.RecordError(err)
			authSpan.End()
			c.AbortWithStatusJSON(http.StatusInternalServerError, serializer.DBErr("", err))
			return
		}

		// Set user_id attribute on the current span for telemetry filtering
		rootSpan := trace.SpanFromContext(c.Request.Context())
		if rootSpan.SpanContext().IsValid() {
			rootSpan.SetAttributes(attribute.String("user_id", user.ID.String()))
		}

		authSpan.SetAttributes(
			attribute.String("user_id", user.ID.String()),
			attribute.Bool("authenticated", true),
		)
		authSpan.End()

		c.Set("user", &user)
		c.Next()
	}
}
