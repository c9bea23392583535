package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrTransactionNotFound     = errors.New("transaction not found")
	ErrDescriptionRequired     = errors.New("description is required")
	ErrDescriptionTooLong      = errors.New("description must be 255 characters or less")
	ErrAmountNotPositive       = errors.New("amount must be greater than zero")
	ErrAmountPrecision         = errors.New("amount must have at most 2 decimal places")
	ErrInvalidDate             = errors.New("date must be formatted as YYYY-MM-DD")
	ErrInvalidTransactionType  = errors.New("type must be income, expense or transfer")
	ErrInvalidNature           = errors.New("nature must be fixed or variable")
	ErrInvalidFrequency        = errors.New("frequency must be daily, weekly, monthly or yearly")
	ErrAccountRequired         = errors.New("account is required")
	ErrTransferTargetRequired  = errors.New("transfer destination account is required")
	ErrInstallmentsNeedCard    = errors.New("installments require a credit card")
	ErrInstallmentCountInvalid = errors.New("installment count must be at least 1")
)

type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeTransfer:
		return true
	}
	return false
}

type TransactionNature string

const (
	NatureFixed    TransactionNature = "fixed"
	NatureVariable TransactionNature = "variable"
)

func (n TransactionNature) Valid() bool {
	return n == NatureFixed || n == NatureVariable
}

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// Marker tags written by the engine. They double as idempotency keys.
const (
	TagAutoRecurring = "auto-recorrente"
	TagAuto          = "auto"
	TagInvoice       = "fatura"
	TagImported      = "importado"
	TagDebt          = "dívida"
	goalTagPrefix    = "meta:"
)

// System categories and accounts assigned by the engine.
const (
	CategoryTransfer       = "Transferência"
	CategoryCardPayment    = "Pagamento de Cartão"
	CategoryDebts          = "Dívidas"
	CategoryInvestment     = "Investimento"
	CategoryOther          = "Outros"
	DefaultAccount         = "Carteira"
	InvoiceSettlementLabel = "Pagamento de Fatura"
)

// GoalTag returns the tag that links a contribution to a goal.
func GoalTag(goalID uuid.UUID) string {
	return goalTagPrefix + goalID.String()
}

type Transaction struct {
	ID                 uuid.UUID         `json:"id"`
	WorkspaceID        int32             `json:"workspaceId"`
	Description        string            `json:"description"`
	Amount             decimal.Decimal   `json:"amount"`
	Date               string            `json:"date"`
	Type               TransactionType   `json:"type"`
	Nature             TransactionNature `json:"nature"`
	Category           string            `json:"category"`
	Account            string            `json:"account"`
	Tags               []string          `json:"tags"`
	AttachmentURL      *string           `json:"attachmentUrl,omitempty"`
	IsRecurring        bool              `json:"isRecurring"`
	Frequency          *Frequency        `json:"frequency,omitempty"`
	RecurrenceEndDate  *string           `json:"recurrenceEndDate,omitempty"`
	RecurrenceParentID *uuid.UUID        `json:"recurrenceParentId,omitempty"`
	CardID             *uuid.UUID        `json:"cardId,omitempty"`
	TransactionGroupID *uuid.UUID        `json:"transactionGroupId,omitempty"`
	IsPaid             bool              `json:"isPaid"`
	InstallmentCurrent *int32            `json:"installmentCurrent,omitempty"`
	InstallmentTotal   *int32            `json:"installmentTotal,omitempty"`
	GoalID             *uuid.UUID        `json:"goalId,omitempty"`
	CreatedAt          time.Time         `json:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`
}

// IsTemplate reports whether the transaction defines a recurrence rather than
// being an occurrence generated from one.
func (t *Transaction) IsTemplate() bool {
	return t.IsRecurring && t.RecurrenceParentID == nil
}

// HasTag reports whether tag is present.
func (t *Transaction) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}

// IsCardLinked reports whether the transaction belongs to a card invoice.
func (t *Transaction) IsCardLinked() bool {
	return t.CardID != nil
}

// InMonth reports whether the transaction date falls in year/month.
// The date key prefix is compared directly.
func (t *Transaction) InMonth(year, month int) bool {
	if len(t.Date) < 7 {
		return false
	}
	return t.Date[:7] == monthPrefix(year, month)
}

func monthPrefix(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// CreateTransactionInput is the user-facing request for a new ledger entry.
// A transfer names the destination account in Category. InstallmentCount > 1
// with a CardID splits the purchase across invoices.
type CreateTransactionInput struct {
	Description       string
	Amount            decimal.Decimal
	Date              string
	Type              TransactionType
	Nature            TransactionNature
	Category          string
	Account           string
	Tags              []string
	IsRecurring       bool
	Frequency         *Frequency
	RecurrenceEndDate *string
	CardID            *uuid.UUID
	InstallmentCount  int32
	GoalID            *uuid.UUID

	// RecurrenceParentID is only set by the recurrence generator.
	RecurrenceParentID *uuid.UUID
}

func (in *CreateTransactionInput) Validate() error {
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" {
		return ErrDescriptionRequired
	}
	if len(in.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if in.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrAmountNotPositive
	}
	if !isCents(in.Amount) {
		return ErrAmountPrecision
	}
	if !isDateKey(in.Date) {
		return ErrInvalidDate
	}
	if !in.Type.Valid() {
		return ErrInvalidTransactionType
	}
	if in.Nature != "" && !in.Nature.Valid() {
		return ErrInvalidNature
	}
	if in.Frequency != nil && !in.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if in.RecurrenceEndDate != nil && !isDateKey(*in.RecurrenceEndDate) {
		return ErrInvalidDate
	}
	if strings.TrimSpace(in.Account) == "" {
		return ErrAccountRequired
	}
	if in.Type == TransactionTypeTransfer && strings.TrimSpace(in.Category) == "" {
		return ErrTransferTargetRequired
	}
	if in.InstallmentCount < 0 {
		return ErrInstallmentCountInvalid
	}
	if in.InstallmentCount > 1 && in.CardID == nil {
		return ErrInstallmentsNeedCard
	}
	return nil
}

// TransactionUpdate carries the fields to change; nil fields are left as is.
type TransactionUpdate struct {
	Description       *string            `json:"description,omitempty"`
	Amount            *decimal.Decimal   `json:"amount,omitempty"`
	Date              *string            `json:"date,omitempty"`
	Type              *TransactionType   `json:"type,omitempty"`
	Nature            *TransactionNature `json:"nature,omitempty"`
	Category          *string            `json:"category,omitempty"`
	Account           *string            `json:"account,omitempty"`
	Tags              []string           `json:"tags,omitempty"`
	IsPaid            *bool              `json:"isPaid,omitempty"`
	CardID            *uuid.UUID         `json:"cardId,omitempty"`
	IsRecurring       *bool              `json:"isRecurring,omitempty"`
	Frequency         *Frequency         `json:"frequency,omitempty"`
	RecurrenceEndDate *string            `json:"recurrenceEndDate,omitempty"`
}

func (u *TransactionUpdate) Validate() error {
	if u.Description != nil {
		trimmed := strings.TrimSpace(*u.Description)
		if trimmed == "" {
			return ErrDescriptionRequired
		}
		if len(trimmed) > MaxDescriptionLength {
			return ErrDescriptionTooLong
		}
		u.Description = &trimmed
	}
	if u.Amount != nil && u.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrAmountNotPositive
	}
	if u.Amount != nil && !isCents(*u.Amount) {
		return ErrAmountPrecision
	}
	if u.Date != nil && !isDateKey(*u.Date) {
		return ErrInvalidDate
	}
	// Stored rows are income or expense; transfers only exist as pairs.
	if u.Type != nil && *u.Type != TransactionTypeIncome && *u.Type != TransactionTypeExpense {
		return ErrInvalidTransactionType
	}
	if u.Nature != nil && !u.Nature.Valid() {
		return ErrInvalidNature
	}
	if u.Frequency != nil && !u.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if u.RecurrenceEndDate != nil && !isDateKey(*u.RecurrenceEndDate) {
		return ErrInvalidDate
	}
	return nil
}

// Apply copies the set fields onto t.
func (u *TransactionUpdate) Apply(t *Transaction) {
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Amount != nil {
		t.Amount = *u.Amount
	}
	if u.Date != nil {
		t.Date = *u.Date
	}
	if u.Type != nil {
		t.Type = *u.Type
	}
	if u.Nature != nil {
		t.Nature = *u.Nature
	}
	if u.Category != nil {
		t.Category = *u.Category
	}
	if u.Account != nil {
		t.Account = *u.Account
	}
	if u.Tags != nil {
		t.Tags = append([]string(nil), u.Tags...)
	}
	if u.IsPaid != nil {
		t.IsPaid = *u.IsPaid
	}
	if u.CardID != nil {
		t.CardID = u.CardID
	}
	if u.IsRecurring != nil {
		t.IsRecurring = *u.IsRecurring
	}
	if u.Frequency != nil {
		t.Frequency = u.Frequency
	}
	if u.RecurrenceEndDate != nil {
		t.RecurrenceEndDate = u.RecurrenceEndDate
	}
}

type TransactionFilters struct {
	StartDate *string
	EndDate   *string
	Category  *string
	Account   *string
	Type      *TransactionType
	CardID    *uuid.UUID
}

// Matches reports whether t passes every set filter. Date bounds are inclusive.
func (f *TransactionFilters) Matches(t *Transaction) bool {
	if f == nil {
		return true
	}
	if f.StartDate != nil && t.Date < *f.StartDate {
		return false
	}
	if f.EndDate != nil && t.Date > *f.EndDate {
		return false
	}
	if f.Category != nil && t.Category != *f.Category {
		return false
	}
	if f.Account != nil && t.Account != *f.Account {
		return false
	}
	if f.Type != nil && t.Type != *f.Type {
		return false
	}
	if f.CardID != nil && (t.CardID == nil || *t.CardID != *f.CardID) {
		return false
	}
	return true
}

// TransactionRepository is the ledger store. Every call is scoped to a workspace.
type TransactionRepository interface {
	// Create inserts all records atomically and returns them with ids assigned.
	Create(ctx context.Context, transactions []*Transaction) ([]*Transaction, error)
	GetByID(ctx context.Context, workspaceID int32, id uuid.UUID) (*Transaction, error)
	GetByIDs(ctx context.Context, workspaceID int32, ids []uuid.UUID) ([]*Transaction, error)
	GetAll(ctx context.Context, workspaceID int32) ([]*Transaction, error)
	List(ctx context.Context, workspaceID int32, filters *TransactionFilters) ([]*Transaction, error)
	Update(ctx context.Context, workspaceID int32, id uuid.UUID, update *TransactionUpdate) (*Transaction, error)
	Delete(ctx context.Context, workspaceID int32, id uuid.UUID) error
	MarkPaid(ctx context.Context, workspaceID int32, ids []uuid.UUID) (int64, error)
	// SettleInvoice marks ids paid and then inserts settlement, in one unit of work.
	SettleInvoice(ctx context.Context, workspaceID int32, ids []uuid.UUID, settlement *Transaction) (*Transaction, error)
	SetAttachment(ctx context.Context, workspaceID int32, id uuid.UUID, url string) (*Transaction, error)
}

func isDateKey(s string) bool {
	if len(s) != 10 {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// isCents reports whether amount has no digits below the cent.
func isCents(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(2))
}
