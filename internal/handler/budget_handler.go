package handler

import (
	"net/http"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/dafibh/finora/finora-backend/internal/middleware"
	"github.com/dafibh/finora/finora-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// BudgetHandler handles budget HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
	catalog       *domain.Catalog
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService, catalog *domain.Catalog) *BudgetHandler {
	return &BudgetHandler{
		budgetService: budgetService,
		catalog:       catalog,
	}
}

// BudgetRequest represents the create/update budget request body
type BudgetRequest struct {
	Category        string  `json:"category"`
	Limit           string  `json:"limit"`
	Frequency       string  `json:"frequency,omitempty"`
	RolloverEnabled bool    `json:"rolloverEnabled"`
	Paused          bool    `json:"paused"`
	StartDate       *string `json:"startDate,omitempty"`
	EndDate         *string `json:"endDate,omitempty"`
}

func (h *BudgetHandler) toBudget(req *BudgetRequest) (*domain.Budget, []ValidationError) {
	limit, verr := parseAmount("limit", req.Limit)
	if verr != nil {
		return nil, []ValidationError{*verr}
	}
	if req.Category != "" && !h.catalog.IsCategory(domain.TransactionTypeExpense, req.Category) {
		return nil, []ValidationError{{Field: "category", Message: "Unknown category"}}
	}
	return &domain.Budget{
		Category:        req.Category,
		Limit:           limit,
		Frequency:       domain.BudgetFrequency(req.Frequency),
		RolloverEnabled: req.RolloverEnabled,
		Paused:          req.Paused,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
	}, nil
}

// CreateBudget godoc
// @Summary Create a budget
// @Tags budgets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BudgetRequest true "Budget settings"
// @Success 201 {object} domain.Budget
// @Failure 400 {object} ProblemDetails
// @Router /budgets [post]
func (h *BudgetHandler) CreateBudget(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req BudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	budget, errs := h.toBudget(&req)
	if errs != nil {
		return NewValidationError(c, "Validation failed", errs)
	}

	created, err := h.budgetService.Create(c.Request().Context(), workspaceID, budget)
	if err != nil {
		return handleServiceError(c, err, "Failed to create budget")
	}

	log.Info().Int32("workspace_id", workspaceID).Str("category", created.Category).Msg("Budget created")
	return c.JSON(http.StatusCreated, created)
}

// GetBudgets godoc
// @Summary List budgets
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Budget
// @Router /budgets [get]
func (h *BudgetHandler) GetBudgets(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	budgets, err := h.budgetService.GetAll(c.Request().Context(), workspaceID)
	if err != nil {
		return handleServiceError(c, err, "Failed to get budgets")
	}
	return c.JSON(http.StatusOK, budgets)
}

// UpdateBudget godoc
// @Summary Update a budget
// @Tags budgets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Budget ID"
// @Param request body BudgetRequest true "Budget settings"
// @Success 200 {object} domain.Budget
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	var req BudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	budget, errs := h.toBudget(&req)
	if errs != nil {
		return NewValidationError(c, "Validation failed", errs)
	}

	updated, err := h.budgetService.Update(c.Request().Context(), workspaceID, id, budget)
	if err != nil {
		return handleServiceError(c, err, "Failed to update budget")
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteBudget godoc
// @Summary Delete a budget
// @Tags budgets
// @Security BearerAuth
// @Param id path string true "Budget ID"
// @Success 204
// @Failure 404 {object} ProblemDetails
// @Router /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	if err := h.budgetService.Delete(c.Request().Context(), workspaceID, id); err != nil {
		return handleServiceError(c, err, "Failed to delete budget")
	}
	return c.NoContent(http.StatusNoContent)
}

// EvaluateBudgets godoc
// @Summary Evaluate budgets for a period
// @Description Spend, rollover and status of every budget of the period type for the period containing date
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Param period query string false "monthly, weekly or yearly" default(monthly)
// @Param date query string false "Reference date (YYYY-MM-DD), today when omitted"
// @Success 200 {object} domain.BudgetOverview
// @Failure 400 {object} ProblemDetails
// @Router /budgets/evaluation [get]
func (h *BudgetHandler) EvaluateBudgets(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	ref := c.QueryParam("date")
	if ref != "" && !isDateParam(ref) {
		return NewValidationError(c, "Invalid date (use YYYY-MM-DD)", nil)
	}

	overview, err := h.budgetService.Evaluate(c.Request().Context(), workspaceID, domain.BudgetFrequency(c.QueryParam("period")), ref)
	if err != nil {
		return handleServiceError(c, err, "Failed to evaluate budgets")
	}
	return c.JSON(http.StatusOK, overview)
}
