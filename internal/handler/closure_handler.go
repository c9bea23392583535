package handler

import (
	"net/http"

	"github.com/dafibh/finora/finora-backend/internal/middleware"
	"github.com/dafibh/finora/finora-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ClosureHandler handles monthly closure HTTP requests
type ClosureHandler struct {
	closureService *service.ClosureService
}

// NewClosureHandler creates a new ClosureHandler
func NewClosureHandler(closureService *service.ClosureService) *ClosureHandler {
	return &ClosureHandler{closureService: closureService}
}

// ToggleClosureRequest represents the toggle closure request body
type ToggleClosureRequest struct {
	Closed bool `json:"closed"`
}

// GetClosures godoc
// @Summary List toggled months
// @Tags closures
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.MonthlyClosure
// @Router /closures [get]
func (h *ClosureHandler) GetClosures(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	closures, err := h.closureService.List(c.Request().Context(), workspaceID)
	if err != nil {
		return handleServiceError(c, err, "Failed to get closures")
	}
	return c.JSON(http.StatusOK, closures)
}

// GetClosure godoc
// @Summary Closure state of a month
// @Tags closures
// @Produce json
// @Security BearerAuth
// @Param year path int true "Year"
// @Param month path int true "Month (1-12)"
// @Success 200 {object} domain.MonthlyClosure
// @Failure 400 {object} ProblemDetails
// @Router /closures/{year}/{month} [get]
func (h *ClosureHandler) GetClosure(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	year, month, ok := parseYearMonth(c)
	if !ok {
		return NewValidationError(c, "Invalid year or month", nil)
	}

	closure, err := h.closureService.Get(c.Request().Context(), workspaceID, year, month)
	if err != nil {
		return handleServiceError(c, err, "Failed to get closure")
	}
	return c.JSON(http.StatusOK, closure)
}

// ToggleClosure godoc
// @Summary Close or reopen a month
// @Description A closed month rejects ledger writes dated inside it
// @Tags closures
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param year path int true "Year"
// @Param month path int true "Month (1-12)"
// @Param request body ToggleClosureRequest true "Closure state"
// @Success 200 {object} domain.MonthlyClosure
// @Failure 400 {object} ProblemDetails
// @Router /closures/{year}/{month} [put]
func (h *ClosureHandler) ToggleClosure(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	year, month, ok := parseYearMonth(c)
	if !ok {
		return NewValidationError(c, "Invalid year or month", nil)
	}

	var req ToggleClosureRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	closure, err := h.closureService.Toggle(c.Request().Context(), workspaceID, year, month, req.Closed)
	if err != nil {
		return handleServiceError(c, err, "Failed to toggle closure")
	}

	log.Info().
		Int32("workspace_id", workspaceID).
		Int("year", year).
		Int("month", month).
		Bool("closed", req.Closed).
		Msg("Month closure toggled")
	return c.JSON(http.StatusOK, closure)
}
