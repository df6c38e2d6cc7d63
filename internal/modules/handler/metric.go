package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shipboard-io/shipboard/internal/modules/model"
	"github.com/shipboard-io/shipboard/internal/modules/serializer"
	"github.com/shipboard-io/shipboard/internal/modules/service"
)

type MetricHandler struct {
	metrics  service.MetricService
	projects service.ProjectService
}

func NewMetricHandler(metrics service.MetricService, projects service.ProjectService) *MetricHandler {
	return &MetricHandler{metrics: metrics, projects: projects}
}

// ownedProjectID parses the project_id path param and checks the project
// belongs to the authenticated user. Writes the error response itself and
// returns ok=false when the caller should bail.
func (h *MetricHandler) ownedProjectID(c *gin.Context) (uuid.UUID, bool) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid project id", err))
		return uuid.Nil, false
	}

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return uuid.Nil, false
	}

	if _, err := h.projects.Get(c.Request.Context(), user.ID, projectID); err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("project not found"))
			return uuid.Nil, false
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return uuid.Nil, false
	}
	return projectID, true
}

// GetOverview handles GET /api/v1/projects/:project_id/metrics.
func (h *MetricHandler) GetOverview(c *gin.Context) {
	projectID, ok := h.ownedProjectID(c)
	if !ok {
		return
	}

	overview, err := h.metrics.Overview(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: overview})
}

type RecordMetricReq struct {
	Type     model.MetricType       `json:"type" binding:"required"`
	Value    float64                `json:"value"`
	Metadata map[string]interface{} `json:"metadata"`
}

// RecordMetric handles POST /api/v1/projects/:project_id/metrics, the manual
// escape hatch for samples no provider produces.
func (h *MetricHandler) RecordMetric(c *gin.Context) {
	projectID, ok := h.ownedProjectID(c)
	if !ok {
		return
	}

	var req RecordMetricReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	metric, err := h.metrics.Record(c.Request.Context(), service.RecordMetricInput{
		ProjectID: projectID,
		Type:      req.Type,
		Value:     req.Value,
		Metadata:  req.Metadata,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidMetric) {
			c.JSON(http.StatusBadRequest, serializer.ParamErr("unknown metric type", err))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: metric})
}
