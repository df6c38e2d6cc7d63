package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shipboard-io/shipboard/internal/modules/serializer"
	"github.com/shipboard-io/shipboard/internal/modules/service"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"
)

// maxWebhookBody caps the payload we read before signature verification.
const maxWebhookBody = 1 << 16

type WebhookHandler struct {
	revenue       service.RevenueService
	webhookSecret string
	log           *zap.Logger
}

func NewWebhookHandler(revenue service.RevenueService, webhookSecret string, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{revenue: revenue, webhookSecret: webhookSecret, log: log}
}

// StripeWebhook handles POST /webhooks/stripe. The signature check happens
// before anything touches the database; a bad signature is always a 400.
func (h *WebhookHandler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("cannot read payload", err))
		return
	}

	event, err := webhook.ConstructEventWithOptions(payload, c.GetHeader("Stripe-Signature"), h.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		h.log.Warn("stripe webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid signature", err))
		return
	}

	if err := h.revenue.IngestPaymentEvent(c.Request.Context(), string(event.Type), event.Data.Raw); err != nil {
		h.log.Error("stripe webhook ingestion failed",
			zap.String("event_type", string(event.Type)),
			zap.String("event_id", event.ID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "received"})
}
