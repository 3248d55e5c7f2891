package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"crmbridge/internal/auth"
	"crmbridge/internal/errors"
	"crmbridge/internal/model"
	"crmbridge/internal/observability/metrics"
	"crmbridge/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterResponse represents a successful registration.
type RegisterResponse struct {
	Message string      `json:"message"`
	User    *model.User `json:"user"`
}

// AuthResponse represents an authentication response.
type AuthResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.RegisterInput true "Registration data"
// @Success 201 {object} RegisterResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var in service.RegisterInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}

	// Register validates the input.
	user, err := h.authService.Register(c.Request().Context(), in)
	metrics.ObserveAuth("register", err)
	if err != nil {
		return errorResponse(err)
	}

	return c.JSON(http.StatusCreated, RegisterResponse{
		Message: "User created successfully",
		User:    user,
	})
}

// Login godoc
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	if err := c.Validate(&req); err != nil {
		return errorResponse(err)
	}

	token, expiresAt, user, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	metrics.ObserveAuth("login", err)
	if err != nil {
		return errorResponse(err)
	}

	return c.JSON(http.StatusOK, AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	})
}

// Logout godoc
// @Summary Revoke the current token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return errorResponse(errors.ErrTokenMissing)
	}

	err := h.authService.Logout(c.Request().Context(), identity.Claims)
	metrics.ObserveAuth("logout", err)
	if err != nil {
		return errorResponse(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "logged out successfully"})
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return errorResponse(errors.ErrTokenMissing)
	}
	return c.JSON(http.StatusOK, identity.User)
}
