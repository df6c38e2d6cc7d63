package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shipboard-io/shipboard/internal/modules/serializer"
	"github.com/shipboard-io/shipboard/internal/modules/service"
)

type GoalHandler struct {
	svc service.GoalService
}

func NewGoalHandler(svc service.GoalService) *GoalHandler {
	return &GoalHandler{svc: svc}
}

type CreateGoalReq struct {
	ProjectID   uuid.UUID  `json:"project_id" binding:"required"`
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Target      float64    `json:"target" binding:"required"`
	Unit        string     `json:"unit" binding:"required"`
	Deadline    *time.Time `json:"deadline"`
}

// CreateGoal handles POST /api/v1/goals.
func (h *GoalHandler) CreateGoal(c *gin.Context) {
	var req CreateGoalReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	goal, err := h.svc.Create(c.Request.Context(), user.ID, service.CreateGoalInput{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Target:      req.Target,
		Unit:        req.Unit,
		Deadline:    req.Deadline,
	})
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("project not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: goal})
}

type ListGoalsReq struct {
	ProjectID uuid.UUID `form:"project_id" binding:"required"`
}

// ListGoals handles GET /api/v1/goals?project_id=...
func (h *GoalHandler) ListGoals(c *gin.Context) {
	var req ListGoalsReq
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	goals, err := h.svc.ListByProject(c.Request.Context(), user.ID, req.ProjectID)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("project not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: goals})
}

// UpdateGoal handles PATCH /api/v1/goals/:goal_id.
func (h *GoalHandler) UpdateGoal(c *gin.Context) {
	goalID, err := uuid.Parse(c.Param("goal_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid goal id", err))
		return
	}

	var req service.UpdateGoalInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	goal, err := h.svc.Update(c.Request.Context(), user.ID, goalID, req)
	if err != nil {
		if errors.Is(err, service.ErrGoalNotFound) {
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("goal not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: goal})
}

// DeleteGoal handles DELETE /api/v1/goals/:goal_id.
func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	goalID, err := uuid.Parse(c.Param("goal_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid goal id", err))
		return
	}

	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}

	if err := h.svc.Delete(c.Request.Context(), user.ID, goalID); err != nil {
		if errors.Is(err, service.ErrGoalNotFound) {
			c.JSON(http.StatusNotFound, serializer.NotFoundErr("goal not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{})
}
