package goal

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/wellness/portal/internal/platform/apperr"
	"github.com/wellness/portal/internal/platform/auth"
)

type Handler struct {
	svc    *Service
	policy *auth.Policy
}

func NewHandler(svc *Service, policy *auth.Policy) *Handler {
	return &Handler{svc: svc, policy: policy}
}

// RegisterRoutes mounts the goal endpoints on the authenticated /api/data
// group.
func (h *Handler) RegisterRoutes(data *echo.Group) {
	data.GET("/goals", h.ListGoals, auth.Require(h.policy, auth.ActionGoalList))
	data.POST("/goals", h.CreateGoal, auth.Require(h.policy, auth.ActionGoalCreate))
	data.PUT("/goals/:id", h.UpdateGoal, auth.Require(h.policy, auth.ActionGoalUpdate))
	data.DELETE("/goals/:id", h.DeleteGoal, auth.Require(h.policy, auth.ActionGoalDelete))
}

func (h *Handler) ListGoals(c echo.Context) error {
	caller, err := auth.Caller(c)
	if err != nil {
		return err
	}
	goals, err := h.svc.ListGoals(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, goals)
}

func (h *Handler) CreateGoal(c echo.Context) error {
	caller, err := auth.Caller(c)
	if err != nil {
		return err
	}
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	g, err := h.svc.CreateGoal(c.Request().Context(), caller, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, g)
}

func (h *Handler) UpdateGoal(c echo.Context) error {
	caller, err := auth.Caller(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	var p Patch
	if err := c.Bind(&p); err != nil {
		return apperr.Validation("invalid request body")
	}
	g, err := h.svc.UpdateGoal(c.Request().Context(), caller, id.String(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, g)
}

func (h *Handler) DeleteGoal(c echo.Context) error {
	caller, err := auth.Caller(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	if err := h.svc.DeleteGoal(c.Request().Context(), caller, id.String()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Goal removed"})
}
