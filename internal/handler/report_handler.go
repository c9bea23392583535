package handler

import (
	"net/http"

	"github.com/dafibh/finora/finora-backend/internal/middleware"
	"github.com/dafibh/finora/finora-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// ReportHandler serves the stored flow views
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// GetDailyFlow godoc
// @Summary Daily cash flow
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.DailyFlow
// @Router /reports/daily [get]
func (h *ReportHandler) GetDailyFlow(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	rows, err := h.reportService.GetDailyFlow(c.Request().Context(), workspaceID)
	if err != nil {
		return handleServiceError(c, err, "Failed to get daily flow")
	}
	return c.JSON(http.StatusOK, rows)
}

// GetSemiannualFlow godoc
// @Summary Half-year cash flow
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.SemiannualFlow
// @Router /reports/semiannual [get]
func (h *ReportHandler) GetSemiannualFlow(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	rows, err := h.reportService.GetSemiannualFlow(c.Request().Context(), workspaceID)
	if err != nil {
		return handleServiceError(c, err, "Failed to get semiannual flow")
	}
	return c.JSON(http.StatusOK, rows)
}
