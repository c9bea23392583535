package handler

import (
	"net/http"

	"github.com/dafibh/finora/finora-backend/internal/middleware"
	"github.com/dafibh/finora/finora-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// AutomationHandler triggers automation passes on demand
type AutomationHandler struct {
	automation service.WorkspaceAutomation
}

// NewAutomationHandler creates a new AutomationHandler
func NewAutomationHandler(automation service.WorkspaceAutomation) *AutomationHandler {
	return &AutomationHandler{automation: automation}
}

// RunAutomation godoc
// @Summary Run automation now
// @Description Goal auto-contributions, recurrence generation and notifications for the caller's workspace
// @Tags automation
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.AutomationResult
// @Failure 500 {object} ProblemDetails
// @Router /automation/run [post]
func (h *AutomationHandler) RunAutomation(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	result, err := h.automation.Run(c.Request().Context(), workspaceID)
	if err != nil {
		return handleServiceError(c, err, "Failed to run automation")
	}

	log.Info().
		Int32("workspace_id", workspaceID).
		Int("contributions", result.Contributions).
		Int("notifications", len(result.Notifications)).
		Msg("Manual automation run completed")
	return c.JSON(http.StatusOK, result)
}
