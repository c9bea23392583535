package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/dafibh/finora/finora-backend/internal/middleware"
	"github.com/dafibh/finora/finora-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// MaxImportSize bounds the CSV upload accepted by the import endpoint
const MaxImportSize = 2 * 1024 * 1024

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
	importService      *service.ImportService
	attachmentService  *service.AttachmentService
	catalog            *domain.Catalog
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(
	transactionService *service.TransactionService,
	importService *service.ImportService,
	attachmentService *service.AttachmentService,
	catalog *domain.Catalog,
) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		importService:      importService,
		attachmentService:  attachmentService,
		catalog:            catalog,
	}
}

// CreateTransactionRequest represents the create transaction request body.
// For a transfer, category names the destination account.
type CreateTransactionRequest struct {
	Description       string   `json:"description"`
	Amount            string   `json:"amount"`
	Date              string   `json:"date"`
	Type              string   `json:"type"`
	Nature            string   `json:"nature,omitempty"`
	Category          string   `json:"category"`
	Account           string   `json:"account"`
	Tags              []string `json:"tags,omitempty"`
	IsRecurring       bool     `json:"isRecurring"`
	Frequency         *string  `json:"frequency,omitempty"`
	RecurrenceEndDate *string  `json:"recurrenceEndDate,omitempty"`
	CardID            *string  `json:"cardId,omitempty"`
	Installments      int32    `json:"installments,omitempty"`
}

// UpdateTransactionRequest represents the update transaction request body.
// Omitted fields are left unchanged.
type UpdateTransactionRequest struct {
	Description       *string  `json:"description,omitempty"`
	Amount            *string  `json:"amount,omitempty"`
	Date              *string  `json:"date,omitempty"`
	Type              *string  `json:"type,omitempty"`
	Nature            *string  `json:"nature,omitempty"`
	Category          *string  `json:"category,omitempty"`
	Account           *string  `json:"account,omitempty"`
	Tags              []string `json:"tags,omitempty"`
	IsPaid            *bool    `json:"isPaid,omitempty"`
	CardID            *string  `json:"cardId,omitempty"`
	IsRecurring       *bool    `json:"isRecurring,omitempty"`
	Frequency         *string  `json:"frequency,omitempty"`
	RecurrenceEndDate *string  `json:"recurrenceEndDate,omitempty"`
}

// AttachmentURLResponse carries a temporary attachment download link
type AttachmentURLResponse struct {
	URL string `json:"url"`
}

// checkCatalog validates account and category against the configured labels
func (h *TransactionHandler) checkCatalog(txType domain.TransactionType, account, category string) []ValidationError {
	var errs []ValidationError
	if account != "" && !h.catalog.IsAccount(account) {
		errs = append(errs, ValidationError{Field: "account", Message: "Unknown account"})
	}
	if category == "" {
		return errs
	}
	switch txType {
	case domain.TransactionTypeTransfer:
		if !h.catalog.IsAccount(category) && category != domain.CategoryInvestment {
			errs = append(errs, ValidationError{Field: "category", Message: "Transfer destination must be an account"})
		}
	case domain.TransactionTypeIncome, domain.TransactionTypeExpense:
		if !h.catalog.IsCategory(txType, category) {
			errs = append(errs, ValidationError{Field: "category", Message: "Unknown category"})
		}
	default:
		if !h.catalog.IsCategory(domain.TransactionTypeIncome, category) &&
			!h.catalog.IsCategory(domain.TransactionTypeExpense, category) {
			errs = append(errs, ValidationError{Field: "category", Message: "Unknown category"})
		}
	}
	return errs
}

// CreateTransaction godoc
// @Summary Create a transaction
// @Description Create an income, expense, transfer or installment purchase. Returns every stored record.
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTransactionRequest true "Transaction creation request"
// @Success 201 {array} domain.Transaction
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /transactions [post]
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, verr := parseAmount("amount", req.Amount)
	if verr != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{*verr})
	}

	input := domain.CreateTransactionInput{
		Description:       req.Description,
		Amount:            amount,
		Date:              req.Date,
		Type:              domain.TransactionType(req.Type),
		Nature:            domain.TransactionNature(req.Nature),
		Category:          strings.TrimSpace(req.Category),
		Account:           strings.TrimSpace(req.Account),
		Tags:              req.Tags,
		IsRecurring:       req.IsRecurring,
		RecurrenceEndDate: req.RecurrenceEndDate,
		InstallmentCount:  req.Installments,
	}
	if input.Account == "" {
		input.Account = domain.DefaultAccount
	}
	if req.Frequency != nil {
		freq := domain.Frequency(*req.Frequency)
		input.Frequency = &freq
	} else if req.IsRecurring {
		freq := domain.FrequencyMonthly
		input.Frequency = &freq
	}
	if req.CardID != nil && *req.CardID != "" {
		cardID, err := uuid.Parse(*req.CardID)
		if err != nil {
			return NewValidationError(c, "Invalid cardId", []ValidationError{
				{Field: "cardId", Message: "Must be a valid UUID"},
			})
		}
		input.CardID = &cardID
	}

	if errs := h.checkCatalog(input.Type, input.Account, input.Category); len(errs) > 0 {
		return NewValidationError(c, "Validation failed", errs)
	}

	created, err := h.transactionService.Create(c.Request().Context(), workspaceID, input)
	if err != nil {
		return handleServiceError(c, err, "Failed to create transaction")
	}

	log.Info().Int32("workspace_id", workspaceID).Int("records", len(created)).Str("type", req.Type).Msg("Transaction created")

	return c.JSON(http.StatusCreated, created)
}

// GetTransactions godoc
// @Summary List transactions
// @Description Get transactions with optional filters, newest first
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD)"
// @Param category query string false "Category"
// @Param account query string false "Account"
// @Param type query string false "income or expense"
// @Param cardId query string false "Credit card ID"
// @Success 200 {array} domain.Transaction
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /transactions [get]
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	filters := &domain.TransactionFilters{
		StartDate: optionalString(c.QueryParam("startDate")),
		EndDate:   optionalString(c.QueryParam("endDate")),
		Category:  optionalString(c.QueryParam("category")),
		Account:   optionalString(c.QueryParam("account")),
	}
	for _, d := range []*string{filters.StartDate, filters.EndDate} {
		if d != nil && !isDateParam(*d) {
			return NewValidationError(c, "Invalid date filter (use YYYY-MM-DD)", nil)
		}
	}
	if typeStr := c.QueryParam("type"); typeStr != "" {
		txType := domain.TransactionType(typeStr)
		if txType != domain.TransactionTypeIncome && txType != domain.TransactionTypeExpense {
			return NewValidationError(c, "Invalid type (must be 'income' or 'expense')", nil)
		}
		filters.Type = &txType
	}
	if cardStr := c.QueryParam("cardId"); cardStr != "" {
		cardID, err := uuid.Parse(cardStr)
		if err != nil {
			return NewValidationError(c, "Invalid cardId", nil)
		}
		filters.CardID = &cardID
	}

	txs, err := h.transactionService.List(c.Request().Context(), workspaceID, filters)
	if err != nil {
		return handleServiceError(c, err, "Failed to get transactions")
	}
	return c.JSON(http.StatusOK, txs)
}

// GetTransaction godoc
// @Summary Get a transaction
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Success 200 {object} domain.Transaction
// @Failure 404 {object} ProblemDetails
// @Router /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	tx, err := h.transactionService.GetByID(c.Request().Context(), workspaceID, id)
	if err != nil {
		return handleServiceError(c, err, "Failed to get transaction")
	}
	return c.JSON(http.StatusOK, tx)
}

// UpdateTransaction godoc
// @Summary Update a transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Param request body UpdateTransactionRequest true "Fields to change"
// @Success 200 {object} domain.Transaction
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /transactions/{id} [patch]
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	var req UpdateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	update := &domain.TransactionUpdate{
		Description:       req.Description,
		Date:              req.Date,
		Category:          req.Category,
		Account:           req.Account,
		Tags:              req.Tags,
		IsPaid:            req.IsPaid,
		IsRecurring:       req.IsRecurring,
		RecurrenceEndDate: req.RecurrenceEndDate,
	}
	amount, verr := parseOptionalAmount("amount", req.Amount)
	if verr != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{*verr})
	}
	update.Amount = amount
	if req.Type != nil {
		txType := domain.TransactionType(*req.Type)
		update.Type = &txType
	}
	if req.Nature != nil {
		nature := domain.TransactionNature(*req.Nature)
		update.Nature = &nature
	}
	if req.Frequency != nil {
		freq := domain.Frequency(*req.Frequency)
		update.Frequency = &freq
	}
	if req.CardID != nil {
		cardID, err := uuid.Parse(*req.CardID)
		if err != nil {
			return NewValidationError(c, "Invalid cardId", []ValidationError{
				{Field: "cardId", Message: "Must be a valid UUID"},
			})
		}
		update.CardID = &cardID
	}

	var txType domain.TransactionType
	if update.Type != nil {
		txType = *update.Type
	}
	var account, category string
	if update.Account != nil {
		account = *update.Account
	}
	if update.Category != nil {
		category = *update.Category
	}
	if errs := h.checkCatalog(txType, account, category); len(errs) > 0 {
		return NewValidationError(c, "Validation failed", errs)
	}

	updated, err := h.transactionService.Update(c.Request().Context(), workspaceID, id, update)
	if err != nil {
		return handleServiceError(c, err, "Failed to update transaction")
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteTransaction godoc
// @Summary Delete a transaction
// @Tags transactions
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Success 204
// @Failure 404 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	if err := h.transactionService.Delete(c.Request().Context(), workspaceID, id); err != nil {
		return handleServiceError(c, err, "Failed to delete transaction")
	}

	log.Info().Int32("workspace_id", workspaceID).Str("transaction_id", id.String()).Msg("Transaction deleted")
	return c.NoContent(http.StatusNoContent)
}

// ImportTransactions godoc
// @Summary Import transactions from CSV
// @Description Columns: date, description, amount, type, category, account
// @Tags transactions
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "CSV file"
// @Success 200 {object} service.ImportResult
// @Failure 400 {object} ProblemDetails
// @Router /transactions/import [post]
func (h *TransactionHandler) ImportTransactions(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "No file provided", []ValidationError{
			{Field: "file", Message: "A CSV file is required"},
		})
	}
	if file.Size > MaxImportSize {
		return NewValidationError(c, "File too large", []ValidationError{
			{Field: "file", Message: "Maximum size is 2MB"},
		})
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded CSV")
		return NewInternalError(c, "Failed to read file")
	}
	defer src.Close()

	result, err := h.importService.Import(c.Request().Context(), workspaceID, src)
	if err != nil {
		return handleServiceError(c, err, "Failed to import transactions")
	}

	log.Info().
		Int32("workspace_id", workspaceID).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Int("errors", len(result.Errors)).
		Msg("Transactions imported")
	return c.JSON(http.StatusOK, result)
}

// UploadAttachment godoc
// @Summary Attach a receipt image
// @Tags transactions
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Param file formData file true "JPEG or PNG image"
// @Success 200 {object} domain.Transaction
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /transactions/{id}/attachment [post]
func (h *TransactionHandler) UploadAttachment(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "No file provided", []ValidationError{
			{Field: "file", Message: "An image file is required"},
		})
	}
	if file.Size > service.MaxAttachmentSize {
		return handleServiceError(c, service.ErrAttachmentTooLarge, "Failed to upload attachment")
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to read file")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, service.MaxAttachmentSize+1))
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to read file")
	}

	updated, err := h.attachmentService.Upload(c.Request().Context(), workspaceID, id, data, file.Filename)
	if err != nil {
		return handleServiceError(c, err, "Failed to upload attachment")
	}
	return c.JSON(http.StatusOK, updated)
}

// GetAttachmentURL godoc
// @Summary Get a temporary link to a transaction's receipt
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Success 200 {object} AttachmentURLResponse
// @Failure 404 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /transactions/{id}/attachment [get]
func (h *TransactionHandler) GetAttachmentURL(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	url, err := h.attachmentService.URL(c.Request().Context(), workspaceID, id)
	if err != nil {
		return handleServiceError(c, err, "Failed to get attachment")
	}
	return c.JSON(http.StatusOK, AttachmentURLResponse{URL: url})
}
