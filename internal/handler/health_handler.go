package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"crmbridge/internal/errors"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	db  Pinger
	now func() time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db, now: time.Now}
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Health godoc
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: h.now().UTC().Format("2006-01-02T15:04:05.000000"),
	})
}

// Ready godoc
// @Summary Readiness probe
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /ready [get]
func (h *HealthHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, errors.ErrorResponse{
			Error: "database unavailable",
			Code:  "NOT_READY",
		}).SetInternal(err)
	}
	return c.JSON(http.StatusOK, HealthResponse{
		Status:    "ready",
		Timestamp: h.now().UTC().Format("2006-01-02T15:04:05.000000"),
	})
}
