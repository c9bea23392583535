package handler

import (
	"net/http"

	"github.com/dafibh/finora/finora-backend/internal/middleware"
	"github.com/dafibh/finora/finora-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// BalanceHandler serves month balances and the dashboard
type BalanceHandler struct {
	balanceService *service.BalanceService
}

// NewBalanceHandler creates a new BalanceHandler
func NewBalanceHandler(balanceService *service.BalanceService) *BalanceHandler {
	return &BalanceHandler{balanceService: balanceService}
}

// GetMonthBalance godoc
// @Summary Cash balance of a month
// @Description Income, expense and rollover of a month, card purchases excluded
// @Tags balance
// @Produce json
// @Security BearerAuth
// @Param year path int true "Year"
// @Param month path int true "Month (1-12)"
// @Success 200 {object} domain.MonthBalance
// @Failure 400 {object} ProblemDetails
// @Router /balance/{year}/{month} [get]
func (h *BalanceHandler) GetMonthBalance(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	year, month, ok := parseYearMonth(c)
	if !ok {
		return NewValidationError(c, "Invalid year or month", nil)
	}

	balance, err := h.balanceService.GetMonthBalance(c.Request().Context(), workspaceID, year, month)
	if err != nil {
		return handleServiceError(c, err, "Failed to get balance")
	}
	return c.JSON(http.StatusOK, balance)
}

// GetDashboard godoc
// @Summary Dashboard of a month
// @Tags balance
// @Produce json
// @Security BearerAuth
// @Param year path int true "Year"
// @Param month path int true "Month (1-12)"
// @Success 200 {object} domain.Dashboard
// @Failure 400 {object} ProblemDetails
// @Router /dashboard/{year}/{month} [get]
func (h *BalanceHandler) GetDashboard(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	year, month, ok := parseYearMonth(c)
	if !ok {
		return NewValidationError(c, "Invalid year or month", nil)
	}

	dashboard, err := h.balanceService.GetDashboard(c.Request().Context(), workspaceID, year, month)
	if err != nil {
		return handleServiceError(c, err, "Failed to get dashboard")
	}
	return c.JSON(http.StatusOK, dashboard)
}
