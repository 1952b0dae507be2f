package account

import (
	"net/http"

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

// RegisterRoutes mounts /api/auth and the profile endpoints of /api/data.
// register and login are public through auth.AuthSkipper.
func (h *Handler) RegisterRoutes(authGroup, data *echo.Group) {
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)
	authGroup.GET("/me", h.GetProfile, auth.Require(h.policy, auth.ActionProfileRead))
	authGroup.POST("/logout", h.Logout)

	data.GET("/profile", h.GetProfile, auth.Require(h.policy, auth.ActionProfileRead))
	data.PUT("/profile", h.UpdateProfile, auth.Require(h.policy, auth.ActionProfileUpdate))
}

type registerResponse struct {
	ID              string    `json:"_id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Role            auth.Role `json:"role"`
	ProfileComplete bool      `json:"profileComplete"`
	Token           string    `json:"token"`
}

type loginUser struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Role auth.Role `json:"role"`
}

type loginResponse struct {
	Token string    `json:"token"`
	User  loginUser `json:"user"`
}

func (h *Handler) Register(c echo.Context) error {
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	u, tok, err := h.svc.Register(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, registerResponse{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Role:            u.Role,
		ProfileComplete: u.ProfileComplete,
		Token:           tok.Value,
	})
}

func (h *Handler) Login(c echo.Context) error {
	var in LoginInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	u, tok, err := h.svc.Login(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, loginResponse{
		Token: tok.Value,
		User:  loginUser{ID: u.ID, Name: u.Name, Role: u.Role},
	})
}

func (h *Handler) GetProfile(c echo.Context) error {
	caller, err := auth.Caller(c)
	if err != nil {
		return err
	}
	u, err := h.svc.GetProfile(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u.ToView())
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	caller, err := auth.Caller(c)
	if err != nil {
		return err
	}
	var p ProfilePatch
	if err := c.Bind(&p); err != nil {
		return apperr.Validation("invalid request body")
	}
	u, err := h.svc.UpdateProfile(c.Request().Context(), caller, p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u.ToView())
}

func (h *Handler) Logout(c echo.Context) error {
	caller, err := auth.Caller(c)
	if err != nil {
		return err
	}
	jti, exp := auth.TokenFromContext(c.Request().Context())
	if err := h.svc.Logout(c.Request().Context(), caller, jti, exp); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
