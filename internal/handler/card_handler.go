package handler

import (
	"net/http"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/dafibh/finora/finora-backend/internal/middleware"
	"github.com/dafibh/finora/finora-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CardHandler handles credit card and invoice HTTP requests
type CardHandler struct {
	cardService    *service.CardService
	invoiceService *service.InvoiceService
	catalog        *domain.Catalog
}

// NewCardHandler creates a new CardHandler
func NewCardHandler(cardService *service.CardService, invoiceService *service.InvoiceService, catalog *domain.Catalog) *CardHandler {
	return &CardHandler{
		cardService:    cardService,
		invoiceService: invoiceService,
		catalog:        catalog,
	}
}

// CardRequest represents the create/update card request body
type CardRequest struct {
	Name       string `json:"name"`
	Limit      string `json:"limit"`
	ClosingDay int32  `json:"closingDay"`
	DueDay     int32  `json:"dueDay"`
	Color      string `json:"color,omitempty"`
}

// PayInvoiceRequest represents the pay invoice request body
type PayInvoiceRequest struct {
	TotalAmount    string   `json:"totalAmount"`
	SourceAccount  string   `json:"sourceAccount"`
	TransactionIDs []string `json:"transactionIds"`
}

func (r *CardRequest) toCard() (*domain.CreditCard, *ValidationError) {
	limit, verr := parseAmount("limit", r.Limit)
	if verr != nil {
		return nil, verr
	}
	return &domain.CreditCard{
		Name:       r.Name,
		Limit:      limit,
		ClosingDay: r.ClosingDay,
		DueDay:     r.DueDay,
		Color:      r.Color,
	}, nil
}

// CreateCard godoc
// @Summary Create a credit card
// @Tags cards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CardRequest true "Card settings"
// @Success 201 {object} domain.CreditCard
// @Failure 400 {object} ProblemDetails
// @Router /cards [post]
func (h *CardHandler) CreateCard(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req CardRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	card, verr := req.toCard()
	if verr != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{*verr})
	}

	created, err := h.cardService.Create(c.Request().Context(), workspaceID, card)
	if err != nil {
		return handleServiceError(c, err, "Failed to create card")
	}

	log.Info().Int32("workspace_id", workspaceID).Str("card_id", created.ID.String()).Msg("Card created")
	return c.JSON(http.StatusCreated, created)
}

// GetCards godoc
// @Summary List credit cards
// @Tags cards
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.CreditCard
// @Router /cards [get]
func (h *CardHandler) GetCards(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	cards, err := h.cardService.GetAll(c.Request().Context(), workspaceID)
	if err != nil {
		return handleServiceError(c, err, "Failed to get cards")
	}
	return c.JSON(http.StatusOK, cards)
}

// UpdateCard godoc
// @Summary Update a credit card
// @Tags cards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Card ID"
// @Param request body CardRequest true "Card settings"
// @Success 200 {object} domain.CreditCard
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /cards/{id} [put]
func (h *CardHandler) UpdateCard(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid card ID", nil)
	}

	var req CardRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	card, verr := req.toCard()
	if verr != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{*verr})
	}

	updated, err := h.cardService.Update(c.Request().Context(), workspaceID, id, card)
	if err != nil {
		return handleServiceError(c, err, "Failed to update card")
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteCard godoc
// @Summary Delete a credit card
// @Tags cards
// @Security BearerAuth
// @Param id path string true "Card ID"
// @Success 204
// @Failure 404 {object} ProblemDetails
// @Router /cards/{id} [delete]
func (h *CardHandler) DeleteCard(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid card ID", nil)
	}

	if err := h.cardService.Delete(c.Request().Context(), workspaceID, id); err != nil {
		return handleServiceError(c, err, "Failed to delete card")
	}
	return c.NoContent(http.StatusNoContent)
}

// GetCardSummaries godoc
// @Summary Cards with utilization and invoices
// @Tags cards
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.CardSummary
// @Router /cards/summaries [get]
func (h *CardHandler) GetCardSummaries(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	summaries, err := h.invoiceService.ListCardSummaries(c.Request().Context(), workspaceID)
	if err != nil {
		return handleServiceError(c, err, "Failed to get card summaries")
	}
	return c.JSON(http.StatusOK, summaries)
}

// GetInvoices godoc
// @Summary Invoices of a card
// @Tags cards
// @Produce json
// @Security BearerAuth
// @Param id path string true "Card ID"
// @Success 200 {array} domain.Invoice
// @Failure 404 {object} ProblemDetails
// @Router /cards/{id}/invoices [get]
func (h *CardHandler) GetInvoices(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid card ID", nil)
	}

	invoices, err := h.invoiceService.GetInvoices(c.Request().Context(), workspaceID, id)
	if err != nil {
		return handleServiceError(c, err, "Failed to get invoices")
	}
	return c.JSON(http.StatusOK, invoices)
}

// PayInvoice godoc
// @Summary Pay a card invoice
// @Description Marks the listed transactions paid and records the settlement expense dated today
// @Tags cards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Card ID"
// @Param request body PayInvoiceRequest true "Invoice payment"
// @Success 201 {object} domain.Transaction
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /cards/{id}/invoices/pay [post]
func (h *CardHandler) PayInvoice(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	cardID, ok := parseUUIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid card ID", nil)
	}

	var req PayInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	total, verr := parseAmount("totalAmount", req.TotalAmount)
	if verr != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{*verr})
	}
	if req.SourceAccount != "" && !h.catalog.IsAccount(req.SourceAccount) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "sourceAccount", Message: "Unknown account"},
		})
	}
	ids := make([]uuid.UUID, 0, len(req.TransactionIDs))
	for _, raw := range req.TransactionIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "transactionIds", Message: "Must be valid UUIDs"},
			})
		}
		ids = append(ids, id)
	}

	settlement, err := h.invoiceService.PayInvoice(c.Request().Context(), workspaceID, domain.PayInvoiceInput{
		CardID:         cardID,
		TotalAmount:    total,
		SourceAccount:  req.SourceAccount,
		TransactionIDs: ids,
	})
	if err != nil {
		return handleServiceError(c, err, "Failed to pay invoice")
	}

	log.Info().
		Int32("workspace_id", workspaceID).
		Str("card_id", cardID.String()).
		Int("transactions", len(ids)).
		Msg("Invoice paid")
	return c.JSON(http.StatusCreated, settlement)
}
