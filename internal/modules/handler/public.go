package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shipboard-io/shipboard/internal/modules/serializer"
	"github.com/shipboard-io/shipboard/internal/modules/service"
)

type PublicHandler struct {
	metrics service.MetricService
}

func NewPublicHandler(metrics service.MetricService) *PublicHandler {
	return &PublicHandler{metrics: metrics}
}

// GetPublicOverview handles GET /public/:slug without authentication. A
// project that exists but is not public looks identical to one that does
// not exist.
func (h *PublicHandler) GetPublicOverview(c *gin.Context) {
	overview, err := h.metrics.PublicOverview(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("project not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: overview})
}
