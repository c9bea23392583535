package service

import (
	"context"
	"fmt"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/dafibh/finora/finora-backend/internal/metrics"
	"github.com/dafibh/finora/finora-backend/internal/util"
	"github.com/dafibh/finora/finora-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// GoalService manages savings goals and their contributions
type GoalService struct {
	goalRepo       domain.GoalRepository
	transactions   *TransactionService
	clock          domain.Clock
	eventPublisher websocket.EventPublisher
}

// NewGoalService creates a new GoalService
func NewGoalService(goalRepo domain.GoalRepository, transactions *TransactionService, clock domain.Clock) *GoalService {
	return &GoalService{
		goalRepo:     goalRepo,
		transactions: transactions,
		clock:        clock,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *GoalService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *GoalService) publishEvent(workspaceID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(workspaceID, event)
	}
}

// Create validates and stores a goal
func (s *GoalService) Create(ctx context.Context, workspaceID int32, goal *domain.Goal) (*domain.Goal, error) {
	goal.WorkspaceID = workspaceID
	if goal.Color == "" {
		goal.Color = "#10b981"
	}
	if err := goal.Validate(); err != nil {
		return nil, err
	}
	return s.goalRepo.Create(ctx, goal)
}

// GetAll returns the workspace's goals
func (s *GoalService) GetAll(ctx context.Context, workspaceID int32) ([]*domain.Goal, error) {
	return s.goalRepo.GetAll(ctx, workspaceID)
}

// Update replaces a goal's settings
func (s *GoalService) Update(ctx context.Context, workspaceID int32, id uuid.UUID, goal *domain.Goal) (*domain.Goal, error) {
	if _, err := s.goalRepo.GetByID(ctx, workspaceID, id); err != nil {
		return nil, err
	}
	goal.ID = id
	goal.WorkspaceID = workspaceID
	if err := goal.Validate(); err != nil {
		return nil, err
	}
	updated, err := s.goalRepo.Update(ctx, goal)
	if err != nil {
		return nil, err
	}
	s.publishEvent(workspaceID, websocket.GoalUpdated(updated))
	return updated, nil
}

// Delete removes a goal. Its contribution transactions stay in the ledger.
func (s *GoalService) Delete(ctx context.Context, workspaceID int32, id uuid.UUID) error {
	return s.goalRepo.Delete(ctx, workspaceID, id)
}

// Contribute moves amount from sourceAccount into the goal's target account
// and adds it to the goal's progress.
func (s *GoalService) Contribute(ctx context.Context, workspaceID int32, goalID uuid.UUID, amount decimal.Decimal, sourceAccount string) (*domain.Goal, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrGoalContributionInvalid
	}
	goal, err := s.goalRepo.GetByID(ctx, workspaceID, goalID)
	if err != nil {
		return nil, err
	}
	if sourceAccount == "" {
		sourceAccount = domain.DefaultAccount
	}

	input := contributionInput(goal, amount, sourceAccount, util.ToLocalDateKey(s.clock.Now()))
	input.Description = "Aporte: " + goal.Name
	input.Tags = []string{domain.GoalTag(goal.ID)}

	updated, _, err := s.applyContribution(ctx, workspaceID, goal, input)
	return updated, err
}

// contributionInput is the transfer that funds a goal
func contributionInput(goal *domain.Goal, amount decimal.Decimal, source, date string) domain.CreateTransactionInput {
	goalID := goal.ID
	target := goal.TargetAccount
	if target == "" {
		target = domain.CategoryInvestment
	}
	return domain.CreateTransactionInput{
		Amount:   amount,
		Date:     date,
		Type:     domain.TransactionTypeTransfer,
		Nature:   domain.NatureVariable,
		Category: target,
		Account:  source,
		GoalID:   &goalID,
	}
}

// applyContribution writes the transfer first and only then moves progress.
// A goal reaching its target is marked completed.
func (s *GoalService) applyContribution(ctx context.Context, workspaceID int32, goal *domain.Goal, input domain.CreateTransactionInput) (*domain.Goal, []*domain.Transaction, error) {
	created, err := s.transactions.Create(ctx, workspaceID, input)
	if err != nil {
		return nil, nil, fmt.Errorf("create goal contribution: %w", err)
	}

	current := goal.CurrentAmount.Add(input.Amount)
	status := goal.Status
	if status == domain.GoalActive && current.GreaterThanOrEqual(goal.TargetAmount) {
		status = domain.GoalCompleted
	}

	updated, err := s.goalRepo.UpdateProgress(ctx, workspaceID, goal.ID, current, status)
	if err != nil {
		return nil, created, fmt.Errorf("update goal progress: %w", err)
	}

	s.publishEvent(workspaceID, websocket.GoalUpdated(updated))
	return updated, created, nil
}

// ContributionResult holds the outcome of an automatic contribution pass
type ContributionResult struct {
	Contributed int
	Created     []*domain.Transaction
	Errors      []string
}

// AutoContribute creates this month's automatic contribution for every active
// goal whose contribution day has arrived and that has no transaction tagged
// for it in the current month yet. A failing goal is logged and skipped.
func (s *GoalService) AutoContribute(ctx context.Context, workspaceID int32, goals []*domain.Goal, ledger []*domain.Transaction) *ContributionResult {
	now := s.clock.Now()
	today := util.ToLocalDateKey(now)
	year, month, day := now.Year(), int(now.Month()), now.Day()

	result := &ContributionResult{
		Created: make([]*domain.Transaction, 0),
		Errors:  make([]string, 0),
	}

	for _, goal := range goals {
		if goal.Status != domain.GoalActive || !goal.HasAutoContribution() {
			continue
		}
		if day < int(*goal.AutoContributionDay) {
			continue
		}
		if hasContributionInMonth(ledger, goal.ID, year, month) {
			continue
		}

		input := contributionInput(goal, *goal.AutoContributionAmount, domain.DefaultAccount, today)
		input.Description = "Aporte Automático: " + goal.Name
		input.Tags = []string{domain.GoalTag(goal.ID), domain.TagAuto}
		input.Nature = domain.NatureFixed

		_, txs, err := s.applyContribution(ctx, workspaceID, goal, input)
		result.Created = append(result.Created, txs...)
		if err != nil {
			log.Error().
				Err(err).
				Int32("workspace_id", workspaceID).
				Str("goal_id", goal.ID.String()).
				Msg("Automatic goal contribution failed")
			result.Errors = append(result.Errors, fmt.Sprintf("goal %s: %v", goal.ID, err))
			continue
		}
		result.Contributed++
		metrics.GoalContributions.Inc()
	}
	return result
}

func hasContributionInMonth(ledger []*domain.Transaction, goalID uuid.UUID, year, month int) bool {
	tag := domain.GoalTag(goalID)
	for _, tx := range ledger {
		if tx.InMonth(year, month) && tx.HasTag(tag) {
			return true
		}
	}
	return false
}
