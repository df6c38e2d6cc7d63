package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shipboard-io/shipboard/internal/modules/serializer"
	"github.com/shipboard-io/shipboard/internal/modules/service"
)

type SyncHandler struct {
	sync     service.SyncService
	metrics  service.MetricService
	projects service.ProjectService
}

func NewSyncHandler(sync service.SyncService, metrics service.MetricService, projects service.ProjectService) *SyncHandler {
	return &SyncHandler{sync: sync, metrics: metrics, projects: projects}
}

type SyncProjectReq struct {
	Integration string `json:"integration" binding:"omitempty,oneof=github twitter plausible"`
}

// SyncProject handles POST /api/v1/projects/:project_id/sync. The optional
// integration field restricts the run to one provider.
func (h *SyncHandler) SyncProject(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid project id", err))
		return
	}

	var req SyncProjectReq
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	if _, err := h.projects.Get(c.Request.Context(), user.ID, projectID); err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("project not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	report, err := h.sync.SyncProject(c.Request.Context(), projectID, req.Integration)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("project not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: report})
}

// SyncStatus handles GET /api/v1/projects/:project_id/sync.
func (h *SyncHandler) SyncStatus(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid project id", err))
		return
	}

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	if _, err := h.projects.Get(c.Request.Context(), user.ID, projectID); err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("project not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	status, err := h.metrics.SyncStatus(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: status})
}

// SyncAll handles POST /api/v1/sync. Meant to be hit by a scheduler; it runs
// every syncable project and then refreshes ship streaks.
func (h *SyncHandler) SyncAll(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.sync.SyncAll(ctx); err != nil {
		c.JSON(http.StatusInternalServerError, serializer.DBErr("sync run failed", err))
		return
	}
	if err := h.sync.UpdateShipStreaks(ctx); err != nil {
		c.JSON(http.StatusInternalServerError, serializer.DBErr("streak update failed", err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "sync complete"})
}
