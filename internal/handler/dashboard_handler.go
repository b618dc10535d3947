package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"clientdesk/internal/middleware"
	"clientdesk/internal/service"
)

// DashboardHandler serves the landing page statistics.
type DashboardHandler struct {
	svc service.DashboardService
}

// NewDashboardHandler creates a dashboard handler.
func NewDashboardHandler(svc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Statistics godoc
// @Summary Client and staff counters visible to the current user
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.Statistics
// @Failure 401 {object} errors.ErrorResponse
// @Router /dashboard [get]
func (h *DashboardHandler) Statistics(c echo.Context) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	stats, err := h.svc.Statistics(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
