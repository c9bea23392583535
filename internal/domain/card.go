package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrCardNotFound             = errors.New("credit card not found")
	ErrCardNameRequired         = errors.New("card name is required")
	ErrCardLimitInvalid         = errors.New("card limit cannot be negative")
	ErrClosingDayInvalid        = errors.New("closing day must be between 1 and 28")
	ErrDueDayInvalid            = errors.New("due day must be between 1 and 28")
	ErrInvoiceEmpty             = errors.New("invoice has no transactions")
	ErrTransactionsNotInInvoice = errors.New("transactions do not belong to this card")
	ErrSourceAccountRequired    = errors.New("source account is required")
)

const (
	MinBillingDay = 1
	MaxBillingDay = 28
)

type CreditCard struct {
	ID          uuid.UUID       `json:"id"`
	WorkspaceID int32           `json:"workspaceId"`
	Name        string          `json:"name"`
	Limit       decimal.Decimal `json:"limit"`
	ClosingDay  int32           `json:"closingDay"`
	DueDay      int32           `json:"dueDay"`
	Color       string          `json:"color"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (c *CreditCard) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return ErrCardNameRequired
	}
	if len(c.Name) > MaxNameLength {
		return ErrInvalidInput
	}
	if c.Limit.IsNegative() {
		return ErrCardLimitInvalid
	}
	if c.ClosingDay < MinBillingDay || c.ClosingDay > MaxBillingDay {
		return ErrClosingDayInvalid
	}
	if c.DueDay < MinBillingDay || c.DueDay > MaxBillingDay {
		return ErrDueDayInvalid
	}
	return nil
}

// Invoice is the set of card transactions billed in one month.
type Invoice struct {
	CardID       uuid.UUID       `json:"cardId"`
	Month        int             `json:"month"`
	Year         int             `json:"year"`
	Total        decimal.Decimal `json:"total"`
	IsPaid       bool            `json:"isPaid"`
	Transactions []*Transaction  `json:"transactions"`
}

// CardSummary is a card with its utilization and invoices.
type CardSummary struct {
	Card      *CreditCard     `json:"card"`
	Used      decimal.Decimal `json:"used"`
	Available decimal.Decimal `json:"available"`
	Invoices  []*Invoice      `json:"invoices"`
}

// PayInvoiceInput identifies the invoice members being settled.
type PayInvoiceInput struct {
	CardID         uuid.UUID
	TotalAmount    decimal.Decimal
	SourceAccount  string
	TransactionIDs []uuid.UUID
}

func (in *PayInvoiceInput) Validate() error {
	if in.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return ErrAmountNotPositive
	}
	in.SourceAccount = strings.TrimSpace(in.SourceAccount)
	if in.SourceAccount == "" {
		return ErrSourceAccountRequired
	}
	if len(in.TransactionIDs) == 0 {
		return ErrInvoiceEmpty
	}
	return nil
}

type CardRepository interface {
	Create(ctx context.Context, card *CreditCard) (*CreditCard, error)
	GetByID(ctx context.Context, workspaceID int32, id uuid.UUID) (*CreditCard, error)
	GetAll(ctx context.Context, workspaceID int32) ([]*CreditCard, error)
	Update(ctx context.Context, card *CreditCard) (*CreditCard, error)
	Delete(ctx context.Context, workspaceID int32, id uuid.UUID) error
}
