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

type ProjectHandler struct {
	svc service.ProjectService
}

func NewProjectHandler(svc service.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

func currentUser(c *gin.Context) (*model.User, bool) {
	user, ok := c.MustGet("user").(*model.User)
	return user, ok
}

type CreateProjectReq struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug" binding:"required,slug"`
	Description string `json:"description"`
	Domain      string `json:"domain"`
}

// CreateProject handles POST /api/v1/projects.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req CreateProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	project, err := h.svc.Create(c.Request.Context(), service.CreateProjectInput{
		UserID:      user.ID,
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Domain:      req.Domain,
	})
	if err != nil {
		if errors.Is(err, service.ErrSlugTaken) {
			c.JSON(http.StatusConflict, serializer.ConflictErr("slug already taken"))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: project})
}

// ListProjects handles GET /api/v1/projects.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	items, err := h.svc.List(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: items})
}

// GetProject handles GET /api/v1/projects/:project_id.
func (h *ProjectHandler) GetProject(c *gin.Context) {
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

	project, err := h.svc.Get(c.Request.Context(), user.ID, projectID)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("project not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: project})
}

// UpdateProject handles PATCH /api/v1/projects/:project_id. The request body
// binds onto an explicit allow-list of mutable fields.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid project id", err))
		return
	}

	var req service.UpdateProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	project, err := h.svc.Update(c.Request.Context(), user.ID, projectID, req)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("project not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: project})
}

// DeleteProject handles DELETE /api/v1/projects/:project_id. Metrics and
// goals cascade with the project.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
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

	if err := h.svc.Delete(c.Request.Context(), user.ID, projectID); err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("project not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{})
}
