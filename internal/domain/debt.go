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
	ErrDebtNotFound        = errors.New("debt not found")
	ErrDebtNameRequired    = errors.New("debt name is required")
	ErrDebtAmountInvalid   = errors.New("debt amount must be greater than zero")
	ErrDebtRateInvalid     = errors.New("interest rate cannot be negative")
	ErrDebtMinPayment      = errors.New("minimum payment cannot be negative")
	ErrDebtStrategyInvalid = errors.New("strategy must be avalanche or snowball")
)

type DebtCategory string

const (
	DebtCreditCard DebtCategory = "credit_card"
	DebtLoan       DebtCategory = "loan"
	DebtFinancing  DebtCategory = "financing"
	DebtOther      DebtCategory = "other"
)

type Debt struct {
	ID            uuid.UUID       `json:"id"`
	WorkspaceID   int32           `json:"workspaceId"`
	Name          string          `json:"name"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	InterestRate  decimal.Decimal `json:"interestRate"` // monthly percentage
	MinPayment    decimal.Decimal `json:"minPayment"`
	DueDay        int32           `json:"dueDay"`
	Category      DebtCategory    `json:"category"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func (d *Debt) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return ErrDebtNameRequired
	}
	if d.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return ErrDebtAmountInvalid
	}
	if d.CurrentAmount.IsNegative() {
		return ErrInvalidInput
	}
	if d.InterestRate.IsNegative() {
		return ErrDebtRateInvalid
	}
	if d.MinPayment.IsNegative() {
		return ErrDebtMinPayment
	}
	if d.DueDay == 0 {
		d.DueDay = 10
	}
	if d.DueDay < 1 || d.DueDay > 31 {
		return ErrDueDayInvalid
	}
	switch d.Category {
	case "":
		d.Category = DebtOther
	case DebtCreditCard, DebtLoan, DebtFinancing, DebtOther:
	default:
		return ErrInvalidInput
	}
	return nil
}

type DebtStrategy string

const (
	StrategyAvalanche DebtStrategy = "avalanche"
	StrategySnowball  DebtStrategy = "snowball"
)

func (s DebtStrategy) Valid() bool {
	return s == StrategyAvalanche || s == StrategySnowball
}

// DebtHistoryPoint is the total outstanding balance after a simulated month.
type DebtHistoryPoint struct {
	Month   int             `json:"month"`
	Balance decimal.Decimal `json:"balance"`
}

// DebtSimulation is the outcome of a payoff simulation. When Converged is
// false the iteration cap was reached and Months is not a payoff date.
type DebtSimulation struct {
	Strategy      DebtStrategy       `json:"strategy"`
	Months        int                `json:"months"`
	TotalInterest decimal.Decimal    `json:"totalInterest"`
	History       []DebtHistoryPoint `json:"history"`
	Converged     bool               `json:"converged"`
}

type DebtRepository interface {
	Create(ctx context.Context, debt *Debt) (*Debt, error)
	GetByID(ctx context.Context, workspaceID int32, id uuid.UUID) (*Debt, error)
	GetAll(ctx context.Context, workspaceID int32) ([]*Debt, error)
	Update(ctx context.Context, debt *Debt) (*Debt, error)
	UpdateBalance(ctx context.Context, workspaceID int32, id uuid.UUID, currentAmount decimal.Decimal) (*Debt, error)
	Delete(ctx context.Context, workspaceID int32, id uuid.UUID) error
}
