package handler

import (
	"errors"
	"net/http"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/dafibh/finora/finora-backend/internal/middleware"
	"github.com/dafibh/finora/finora-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation   = "https://finora.app/errors/validation"
	ErrorTypeNotFound     = "https://finora.app/errors/not-found"
	ErrorTypeUnauthorized = "https://finora.app/errors/unauthorized"
	ErrorTypeForbidden    = "https://finora.app/errors/forbidden"
	ErrorTypeConflict     = "https://finora.app/errors/conflict"
	ErrorTypeInternal     = "https://finora.app/errors/internal"
	ErrorTypeUnavailable  = "https://finora.app/errors/unavailable"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return c.JSON(http.StatusUnauthorized, ProblemDetails{
		Type:     ErrorTypeUnauthorized,
		Title:    "Unauthorized",
		Status:   http.StatusUnauthorized,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewForbiddenError creates a forbidden error response
func NewForbiddenError(c echo.Context, detail string) error {
	return c.JSON(http.StatusForbidden, ProblemDetails{
		Type:     ErrorTypeForbidden,
		Title:    "Forbidden",
		Status:   http.StatusForbidden,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return c.JSON(http.StatusConflict, ProblemDetails{
		Type:     ErrorTypeConflict,
		Title:    "Conflict",
		Status:   http.StatusConflict,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewServiceUnavailableError creates a service unavailable error response
func NewServiceUnavailableError(c echo.Context, detail string) error {
	return c.JSON(http.StatusServiceUnavailable, ProblemDetails{
		Type:     ErrorTypeUnavailable,
		Title:    "Service Unavailable",
		Status:   http.StatusServiceUnavailable,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// fieldErrors maps validation sentinels to the request field they concern
var fieldErrors = map[error]string{
	domain.ErrDescriptionRequired:      "description",
	domain.ErrDescriptionTooLong:       "description",
	domain.ErrAmountNotPositive:        "amount",
	domain.ErrAmountPrecision:          "amount",
	domain.ErrInvalidDate:              "date",
	domain.ErrInvalidTransactionType:   "type",
	domain.ErrInvalidNature:            "nature",
	domain.ErrInvalidFrequency:         "frequency",
	domain.ErrAccountRequired:          "account",
	domain.ErrTransferTargetRequired:   "category",
	domain.ErrInstallmentsNeedCard:     "cardId",
	domain.ErrInstallmentCountInvalid:  "installments",
	domain.ErrCardNameRequired:         "name",
	domain.ErrCardLimitInvalid:         "limit",
	domain.ErrClosingDayInvalid:        "closingDay",
	domain.ErrDueDayInvalid:            "dueDay",
	domain.ErrInvoiceEmpty:             "transactionIds",
	domain.ErrTransactionsNotInInvoice: "transactionIds",
	domain.ErrSourceAccountRequired:    "sourceAccount",
	domain.ErrBudgetCategoryRequired:   "category",
	domain.ErrBudgetLimitInvalid:       "limit",
	domain.ErrBudgetFrequencyInvalid:   "frequency",
	domain.ErrGoalNameRequired:         "name",
	domain.ErrGoalTargetInvalid:        "targetAmount",
	domain.ErrGoalAutoDayInvalid:       "autoContributionDay",
	domain.ErrGoalAutoAmountInvalid:    "autoContributionAmount",
	domain.ErrGoalInvalidStatus:        "status",
	domain.ErrGoalContributionInvalid:  "amount",
	domain.ErrDebtNameRequired:         "name",
	domain.ErrDebtAmountInvalid:        "totalAmount",
	domain.ErrDebtRateInvalid:          "interestRate",
	domain.ErrDebtMinPayment:           "minPayment",
	domain.ErrDebtStrategyInvalid:      "strategy",
	service.ErrAttachmentTooLarge:      "file",
	service.ErrAttachmentInvalidFormat: "file",
	service.ErrAttachmentTooSmall:      "file",
	service.ErrAttachmentInvalidData:   "file",
}

var notFoundErrors = []error{
	domain.ErrNotFound,
	domain.ErrTransactionNotFound,
	domain.ErrCardNotFound,
	domain.ErrBudgetNotFound,
	domain.ErrGoalNotFound,
	domain.ErrDebtNotFound,
	domain.ErrWorkspaceNotFound,
	service.ErrAttachmentMissing,
}

// handleServiceError maps a service error to a problem response. Unknown
// errors are logged and reported as internal errors with the given message.
func handleServiceError(c echo.Context, err error, message string) error {
	for sentinel, field := range fieldErrors {
		if errors.Is(err, sentinel) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: field, Message: sentinel.Error()},
			})
		}
	}
	for _, sentinel := range notFoundErrors {
		if errors.Is(err, sentinel) {
			return NewNotFoundError(c, sentinel.Error())
		}
	}
	switch {
	case errors.Is(err, domain.ErrPeriodLocked):
		return NewConflictError(c, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		return NewValidationError(c, err.Error(), nil)
	case errors.Is(err, service.ErrAttachmentStorageUnavailable):
		return NewServiceUnavailableError(c, err.Error())
	}

	log.Error().Err(err).
		Int32("workspace_id", middleware.GetWorkspaceID(c)).
		Str("path", c.Request().URL.Path).
		Msg(message)
	return NewInternalError(c, message)
}
