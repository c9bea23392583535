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
	ErrBudgetNotFound         = errors.New("budget not found")
	ErrBudgetCategoryRequired = errors.New("budget category is required")
	ErrBudgetLimitInvalid     = errors.New("budget limit must be greater than zero")
	ErrBudgetFrequencyInvalid = errors.New("budget frequency must be monthly, weekly or yearly")
)

type BudgetFrequency string

const (
	BudgetMonthly BudgetFrequency = "monthly"
	BudgetWeekly  BudgetFrequency = "weekly"
	BudgetYearly  BudgetFrequency = "yearly"
)

func (f BudgetFrequency) Valid() bool {
	switch f {
	case BudgetMonthly, BudgetWeekly, BudgetYearly:
		return true
	}
	return false
}

type BudgetStatus string

const (
	BudgetStatusNormal   BudgetStatus = "normal"
	BudgetStatusWarning  BudgetStatus = "warning"
	BudgetStatusCritical BudgetStatus = "critical"
	BudgetStatusPaused   BudgetStatus = "paused"
)

type Budget struct {
	ID              uuid.UUID       `json:"id"`
	WorkspaceID     int32           `json:"workspaceId"`
	Category        string          `json:"category"`
	Limit           decimal.Decimal `json:"limit"`
	Frequency       BudgetFrequency `json:"frequency"`
	RolloverEnabled bool            `json:"rolloverEnabled"`
	Paused          bool            `json:"paused"`
	StartDate       *string         `json:"startDate,omitempty"`
	EndDate         *string         `json:"endDate,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

func (b *Budget) Validate() error {
	b.Category = strings.TrimSpace(b.Category)
	if b.Category == "" {
		return ErrBudgetCategoryRequired
	}
	if b.Limit.LessThanOrEqual(decimal.Zero) {
		return ErrBudgetLimitInvalid
	}
	if b.Frequency == "" {
		b.Frequency = BudgetMonthly
	}
	if !b.Frequency.Valid() {
		return ErrBudgetFrequencyInvalid
	}
	if b.StartDate != nil && !isDateKey(*b.StartDate) {
		return ErrInvalidDate
	}
	if b.EndDate != nil && !isDateKey(*b.EndDate) {
		return ErrInvalidDate
	}
	return nil
}

// BudgetEvaluation is a budget measured against one period.
type BudgetEvaluation struct {
	Budget         *Budget         `json:"budget"`
	PeriodStart    string          `json:"periodStart"`
	PeriodEnd      string          `json:"periodEnd"`
	Spent          decimal.Decimal `json:"spent"`
	Rollover       decimal.Decimal `json:"rollover"`
	EffectiveLimit decimal.Decimal `json:"effectiveLimit"`
	Remaining      decimal.Decimal `json:"remaining"`
	Percent        decimal.Decimal `json:"percent"`
	Status         BudgetStatus    `json:"status"`
}

// BudgetOverview is the evaluation of every budget for the viewed period type.
type BudgetOverview struct {
	PeriodType  BudgetFrequency     `json:"periodType"`
	Evaluations []*BudgetEvaluation `json:"evaluations"`
	TotalLimit  decimal.Decimal     `json:"totalLimit"`
	TotalSpent  decimal.Decimal     `json:"totalSpent"`
}

type BudgetRepository interface {
	Create(ctx context.Context, budget *Budget) (*Budget, error)
	GetByID(ctx context.Context, workspaceID int32, id uuid.UUID) (*Budget, error)
	GetAll(ctx context.Context, workspaceID int32) ([]*Budget, error)
	Update(ctx context.Context, budget *Budget) (*Budget, error)
	Delete(ctx context.Context, workspaceID int32, id uuid.UUID) error
}
