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
	ErrGoalNotFound            = errors.New("goal not found")
	ErrGoalNameRequired        = errors.New("goal name is required")
	ErrGoalTargetInvalid       = errors.New("goal target must be greater than zero")
	ErrGoalAutoDayInvalid      = errors.New("auto contribution day must be between 1 and 31")
	ErrGoalAutoAmountInvalid   = errors.New("auto contribution amount must be greater than zero")
	ErrGoalInvalidStatus       = errors.New("goal status must be active, completed or paused")
	ErrGoalContributionInvalid = errors.New("contribution must be greater than zero")
)

type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalPaused    GoalStatus = "paused"
)

type GoalPriority string

const (
	PriorityLow    GoalPriority = "low"
	PriorityMedium GoalPriority = "medium"
	PriorityHigh   GoalPriority = "high"
)

type Goal struct {
	ID                     uuid.UUID        `json:"id"`
	WorkspaceID            int32            `json:"workspaceId"`
	Name                   string           `json:"name"`
	TargetAmount           decimal.Decimal  `json:"targetAmount"`
	CurrentAmount          decimal.Decimal  `json:"currentAmount"`
	Deadline               *string          `json:"deadline,omitempty"`
	Color                  string           `json:"color"`
	TargetAccount          string           `json:"targetAccount"`
	AutoContributionAmount *decimal.Decimal `json:"autoContributionAmount,omitempty"`
	AutoContributionDay    *int32           `json:"autoContributionDay,omitempty"`
	Priority               GoalPriority     `json:"priority"`
	Status                 GoalStatus       `json:"status"`
	CreatedAt              time.Time        `json:"createdAt"`
}

func (g *Goal) Validate() error {
	g.Name = strings.TrimSpace(g.Name)
	if g.Name == "" {
		return ErrGoalNameRequired
	}
	if g.TargetAmount.LessThanOrEqual(decimal.Zero) {
		return ErrGoalTargetInvalid
	}
	if g.CurrentAmount.IsNegative() {
		return ErrInvalidInput
	}
	if g.Deadline != nil && !isDateKey(*g.Deadline) {
		return ErrInvalidDate
	}
	if g.AutoContributionDay != nil && (*g.AutoContributionDay < 1 || *g.AutoContributionDay > 31) {
		return ErrGoalAutoDayInvalid
	}
	if g.AutoContributionAmount != nil && g.AutoContributionAmount.LessThanOrEqual(decimal.Zero) {
		return ErrGoalAutoAmountInvalid
	}
	if g.Status == "" {
		g.Status = GoalActive
	}
	switch g.Status {
	case GoalActive, GoalCompleted, GoalPaused:
	default:
		return ErrGoalInvalidStatus
	}
	if g.Priority == "" {
		g.Priority = PriorityMedium
	}
	if g.TargetAccount == "" {
		g.TargetAccount = CategoryInvestment
	}
	return nil
}

// HasAutoContribution reports whether the goal is configured for monthly
// automatic transfers.
func (g *Goal) HasAutoContribution() bool {
	return g.AutoContributionDay != nil && g.AutoContributionAmount != nil &&
		g.AutoContributionAmount.IsPositive()
}

type GoalRepository interface {
	Create(ctx context.Context, goal *Goal) (*Goal, error)
	GetByID(ctx context.Context, workspaceID int32, id uuid.UUID) (*Goal, error)
	GetAll(ctx context.Context, workspaceID int32) ([]*Goal, error)
	Update(ctx context.Context, goal *Goal) (*Goal, error)
	UpdateProgress(ctx context.Context, workspaceID int32, id uuid.UUID, currentAmount decimal.Decimal, status GoalStatus) (*Goal, error)
	Delete(ctx context.Context, workspaceID int32, id uuid.UUID) error
}
