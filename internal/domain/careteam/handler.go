package careteam

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wellness/portal/internal/domain/account"
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

func (h *Handler) RegisterRoutes(data *echo.Group) {
	data.GET("/providers", h.ListProviders, auth.Require(h.policy, auth.ActionProviderList))
	data.GET("/providers/:id", h.GetProvider, auth.Require(h.policy, auth.ActionProviderGet))
	data.GET("/getProviders", h.Directory, auth.Require(h.policy, auth.ActionProviderDirectory))

	data.POST("/getPatientData", h.GetPatientData, auth.Require(h.policy, auth.ActionPatientRead))
	data.POST("/addPatientIllness", h.AddIllness, auth.Require(h.policy, auth.ActionPatientIllnessAdd))
	data.POST("/assignProvider", h.AssignProvider, auth.Require(h.policy, auth.ActionPatientAssignProv))
}

func (h *Handler) ListProviders(c echo.Context) error {
	caller, err := auth.Caller(c)
	if err != nil {
		return err
	}
	providers, err := h.svc.ListProviders(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	views := make([]account.View, len(providers))
	for i, p := range providers {
		views[i] = p.ToView()
	}
	return c.JSON(http.StatusOK, views)
}

func (h *Handler) GetProvider(c echo.Context) error {
	caller, err := auth.Caller(c)
	if err != nil {
		return err
	}
	p, err := h.svc.GetProvider(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p.ToView())
}

func (h *Handler) Directory(c echo.Context) error {
	caller, err := auth.Caller(c)
	if err != nil {
		return err
	}
	entries, err := h.svc.Directory(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *Handler) GetPatientData(c echo.Context) error {
	caller, err := auth.Caller(c)
	if err != nil {
		return err
	}
	var req PatientRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	data, err := h.svc.GetPatientData(c.Request().Context(), caller, req.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, data)
}

func (h *Handler) AddIllness(c echo.Context) error {
	caller, err := auth.Caller(c)
	if err != nil {
		return err
	}
	var req IllnessRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	conditions, err := h.svc.AddIllness(c.Request().Context(), caller, req.UserID, req.Illness)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":          "Illness added successfully",
		"healthConditions": conditions,
	})
}

func (h *Handler) AssignProvider(c echo.Context) error {
	caller, err := auth.Caller(c)
	if err != nil {
		return err
	}
	var req AssignRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	a, err := h.svc.AssignProvider(c.Request().Context(), caller, req.PatientID, req.ProviderID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Provider assigned successfully",
		"patient": a,
	})
}
