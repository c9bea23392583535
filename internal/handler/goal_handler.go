package handler

import (
	"net/http"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/dafibh/finora/finora-backend/internal/middleware"
	"github.com/dafibh/finora/finora-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// GoalHandler handles savings goal HTTP requests
type GoalHandler struct {
	goalService *service.GoalService
	catalog     *domain.Catalog
}

// NewGoalHandler creates a new GoalHandler
func NewGoalHandler(goalService *service.GoalService, catalog *domain.Catalog) *GoalHandler {
	return &GoalHandler{
		goalService: goalService,
		catalog:     catalog,
	}
}

// GoalRequest represents the create/update goal request body
type GoalRequest struct {
	Name                   string  `json:"name"`
	TargetAmount           string  `json:"targetAmount"`
	CurrentAmount          *string `json:"currentAmount,omitempty"`
	Deadline               *string `json:"deadline,omitempty"`
	Color                  string  `json:"color,omitempty"`
	TargetAccount          string  `json:"targetAccount,omitempty"`
	AutoContributionAmount *string `json:"autoContributionAmount,omitempty"`
	AutoContributionDay    *int32  `json:"autoContributionDay,omitempty"`
	Priority               string  `json:"priority,omitempty"`
	Status                 string  `json:"status,omitempty"`
}

// ContributeRequest represents a manual goal contribution
type ContributeRequest struct {
	Amount        string `json:"amount"`
	SourceAccount string `json:"sourceAccount,omitempty"`
}

func (h *GoalHandler) toGoal(req *GoalRequest) (*domain.Goal, []ValidationError) {
	target, verr := parseAmount("targetAmount", req.TargetAmount)
	if verr != nil {
		return nil, []ValidationError{*verr}
	}
	current, verr := parseOptionalAmount("currentAmount", req.CurrentAmount)
	if verr != nil {
		return nil, []ValidationError{*verr}
	}
	auto, verr := parseOptionalAmount("autoContributionAmount", req.AutoContributionAmount)
	if verr != nil {
		return nil, []ValidationError{*verr}
	}
	if req.TargetAccount != "" && req.TargetAccount != domain.CategoryInvestment && !h.catalog.IsAccount(req.TargetAccount) {
		return nil, []ValidationError{{Field: "targetAccount", Message: "Unknown account"}}
	}

	goal := &domain.Goal{
		Name:                   req.Name,
		TargetAmount:           target,
		CurrentAmount:          decimal.Zero,
		Deadline:               req.Deadline,
		Color:                  req.Color,
		TargetAccount:          req.TargetAccount,
		AutoContributionAmount: auto,
		AutoContributionDay:    req.AutoContributionDay,
		Priority:               domain.GoalPriority(req.Priority),
		Status:                 domain.GoalStatus(req.Status),
	}
	if current != nil {
		goal.CurrentAmount = *current
	}
	return goal, nil
}

// CreateGoal godoc
// @Summary Create a savings goal
// @Tags goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GoalRequest true "Goal settings"
// @Success 201 {object} domain.Goal
// @Failure 400 {object} ProblemDetails
// @Router /goals [post]
func (h *GoalHandler) CreateGoal(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req GoalRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	goal, errs := h.toGoal(&req)
	if errs != nil {
		return NewValidationError(c, "Validation failed", errs)
	}

	created, err := h.goalService.Create(c.Request().Context(), workspaceID, goal)
	if err != nil {
		return handleServiceError(c, err, "Failed to create goal")
	}

	log.Info().Int32("workspace_id", workspaceID).Str("goal_id", created.ID.String()).Msg("Goal created")
	return c.JSON(http.StatusCreated, created)
}

// GetGoals godoc
// @Summary List savings goals
// @Tags goals
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Goal
// @Router /goals [get]
func (h *GoalHandler) GetGoals(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	goals, err := h.goalService.GetAll(c.Request().Context(), workspaceID)
	if err != nil {
		return handleServiceError(c, err, "Failed to get goals")
	}
	return c.JSON(http.StatusOK, goals)
}

// UpdateGoal godoc
// @Summary Update a savings goal
// @Tags goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Goal ID"
// @Param request body GoalRequest true "Goal settings"
// @Success 200 {object} domain.Goal
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /goals/{id} [put]
func (h *GoalHandler) UpdateGoal(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid goal ID", nil)
	}

	var req GoalRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	goal, errs := h.toGoal(&req)
	if errs != nil {
		return NewValidationError(c, "Validation failed", errs)
	}

	updated, err := h.goalService.Update(c.Request().Context(), workspaceID, id, goal)
	if err != nil {
		return handleServiceError(c, err, "Failed to update goal")
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteGoal godoc
// @Summary Delete a savings goal
// @Tags goals
// @Security BearerAuth
// @Param id path string true "Goal ID"
// @Success 204
// @Failure 404 {object} ProblemDetails
// @Router /goals/{id} [delete]
func (h *GoalHandler) DeleteGoal(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid goal ID", nil)
	}

	if err := h.goalService.Delete(c.Request().Context(), workspaceID, id); err != nil {
		return handleServiceError(c, err, "Failed to delete goal")
	}
	return c.NoContent(http.StatusNoContent)
}

// Contribute godoc
// @Summary Contribute to a savings goal
// @Description Transfers amount from the source account into the goal's target account
// @Tags goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Goal ID"
// @Param request body ContributeRequest true "Contribution"
// @Success 200 {object} domain.Goal
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /goals/{id}/contributions [post]
func (h *GoalHandler) Contribute(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid goal ID", nil)
	}

	var req ContributeRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	amount, verr := parseAmount("amount", req.Amount)
	if verr != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{*verr})
	}
	if req.SourceAccount != "" && !h.catalog.IsAccount(req.SourceAccount) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "sourceAccount", Message: "Unknown account"},
		})
	}

	goal, err := h.goalService.Contribute(c.Request().Context(), workspaceID, id, amount, req.SourceAccount)
	if err != nil {
		return handleServiceError(c, err, "Failed to contribute to goal")
	}
	return c.JSON(http.StatusOK, goal)
}
