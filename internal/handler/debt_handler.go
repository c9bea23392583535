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

// DebtHandler handles debt HTTP requests
type DebtHandler struct {
	debtService *service.DebtService
	catalog     *domain.Catalog
}

// NewDebtHandler creates a new DebtHandler
func NewDebtHandler(debtService *service.DebtService, catalog *domain.Catalog) *DebtHandler {
	return &DebtHandler{
		debtService: debtService,
		catalog:     catalog,
	}
}

// DebtRequest represents the create debt request body. Interest rate is a
// monthly percentage.
type DebtRequest struct {
	Name          string  `json:"name"`
	TotalAmount   string  `json:"totalAmount"`
	CurrentAmount *string `json:"currentAmount,omitempty"`
	InterestRate  string  `json:"interestRate"`
	MinPayment    string  `json:"minPayment"`
	DueDay        int32   `json:"dueDay,omitempty"`
	Category      string  `json:"category,omitempty"`
}

// UpdateDebtRequest represents the update debt request body. The total
// amount cannot be changed.
type UpdateDebtRequest struct {
	Name          string `json:"name"`
	CurrentAmount string `json:"currentAmount"`
	InterestRate  string `json:"interestRate"`
	MinPayment    string `json:"minPayment"`
	DueDay        int32  `json:"dueDay,omitempty"`
	Category      string `json:"category,omitempty"`
}

// DebtPaymentRequest represents a debt payment
type DebtPaymentRequest struct {
	Amount  string `json:"amount"`
	Account string `json:"account,omitempty"`
}

// CreateDebt godoc
// @Summary Register a debt
// @Tags debts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body DebtRequest true "Debt"
// @Success 201 {object} domain.Debt
// @Failure 400 {object} ProblemDetails
// @Router /debts [post]
func (h *DebtHandler) CreateDebt(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req DebtRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	var errs []ValidationError
	total, verr := parseAmount("totalAmount", req.TotalAmount)
	if verr != nil {
		errs = append(errs, *verr)
	}
	rate, verr := parseAmount("interestRate", req.InterestRate)
	if verr != nil {
		errs = append(errs, *verr)
	}
	minPayment, verr := parseAmount("minPayment", req.MinPayment)
	if verr != nil {
		errs = append(errs, *verr)
	}
	current, verr := parseOptionalAmount("currentAmount", req.CurrentAmount)
	if verr != nil {
		errs = append(errs, *verr)
	}
	if len(errs) > 0 {
		return NewValidationError(c, "Validation failed", errs)
	}

	debt := &domain.Debt{
		Name:          req.Name,
		TotalAmount:   total,
		CurrentAmount: total,
		InterestRate:  rate,
		MinPayment:    minPayment,
		DueDay:        req.DueDay,
		Category:      domain.DebtCategory(req.Category),
	}
	if current != nil {
		debt.CurrentAmount = *current
	}

	created, err := h.debtService.Create(c.Request().Context(), workspaceID, debt)
	if err != nil {
		return handleServiceError(c, err, "Failed to create debt")
	}

	log.Info().Int32("workspace_id", workspaceID).Str("debt_id", created.ID.String()).Msg("Debt created")
	return c.JSON(http.StatusCreated, created)
}

// GetDebts godoc
// @Summary List debts
// @Tags debts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Debt
// @Router /debts [get]
func (h *DebtHandler) GetDebts(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	debts, err := h.debtService.GetAll(c.Request().Context(), workspaceID)
	if err != nil {
		return handleServiceError(c, err, "Failed to get debts")
	}
	return c.JSON(http.StatusOK, debts)
}

// UpdateDebt godoc
// @Summary Update a debt
// @Tags debts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Debt ID"
// @Param request body UpdateDebtRequest true "Debt terms"
// @Success 200 {object} domain.Debt
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /debts/{id} [put]
func (h *DebtHandler) UpdateDebt(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid debt ID", nil)
	}

	var req UpdateDebtRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	var errs []ValidationError
	current, verr := parseAmount("currentAmount", req.CurrentAmount)
	if verr != nil {
		errs = append(errs, *verr)
	}
	rate, verr := parseAmount("interestRate", req.InterestRate)
	if verr != nil {
		errs = append(errs, *verr)
	}
	minPayment, verr := parseAmount("minPayment", req.MinPayment)
	if verr != nil {
		errs = append(errs, *verr)
	}
	if len(errs) > 0 {
		return NewValidationError(c, "Validation failed", errs)
	}

	updated, err := h.debtService.Update(c.Request().Context(), workspaceID, id, &domain.Debt{
		Name:          req.Name,
		CurrentAmount: current,
		InterestRate:  rate,
		MinPayment:    minPayment,
		DueDay:        req.DueDay,
		Category:      domain.DebtCategory(req.Category),
	})
	if err != nil {
		return handleServiceError(c, err, "Failed to update debt")
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteDebt godoc
// @Summary Delete a debt
// @Tags debts
// @Security BearerAuth
// @Param id path string true "Debt ID"
// @Success 204
// @Failure 404 {object} ProblemDetails
// @Router /debts/{id} [delete]
func (h *DebtHandler) DeleteDebt(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid debt ID", nil)
	}

	if err := h.debtService.Delete(c.Request().Context(), workspaceID, id); err != nil {
		return handleServiceError(c, err, "Failed to delete debt")
	}
	return c.NoContent(http.StatusNoContent)
}

// PayDebt godoc
// @Summary Register a debt payment
// @Description Records the payment as an expense dated today and lowers the outstanding balance
// @Tags debts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Debt ID"
// @Param request body DebtPaymentRequest true "Payment"
// @Success 200 {object} domain.Debt
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /debts/{id}/payments [post]
func (h *DebtHandler) PayDebt(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid debt ID", nil)
	}

	var req DebtPaymentRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	amount, verr := parseAmount("amount", req.Amount)
	if verr != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{*verr})
	}
	if req.Account != "" && !h.catalog.IsAccount(req.Account) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "account", Message: "Unknown account"},
		})
	}

	debt, err := h.debtService.RegisterPayment(c.Request().Context(), workspaceID, id, amount, req.Account)
	if err != nil {
		return handleServiceError(c, err, "Failed to register debt payment")
	}
	return c.JSON(http.StatusOK, debt)
}

// SimulatePayoff godoc
// @Summary Simulate debt payoff
// @Tags debts
// @Produce json
// @Security BearerAuth
// @Param strategy query string false "avalanche or snowball" default(avalanche)
// @Param extra query string false "Extra monthly payment" default(0)
// @Success 200 {object} domain.DebtSimulation
// @Failure 400 {object} ProblemDetails
// @Router /debts/simulation [get]
func (h *DebtHandler) SimulatePayoff(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	strategy := domain.DebtStrategy(c.QueryParam("strategy"))
	if strategy == "" {
		strategy = domain.StrategyAvalanche
	}
	extra := decimal.Zero
	if raw := c.QueryParam("extra"); raw != "" {
		parsed, verr := parseAmount("extra", raw)
		if verr != nil {
			return NewValidationError(c, "Invalid extra payment", []ValidationError{*verr})
		}
		extra = parsed
	}

	simulation, err := h.debtService.Simulate(c.Request().Context(), workspaceID, extra, strategy)
	if err != nil {
		return handleServiceError(c, err, "Failed to simulate payoff")
	}
	return c.JSON(http.StatusOK, simulation)
}
