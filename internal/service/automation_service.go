package service

import (
	"context"
	"time"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/dafibh/finora/finora-backend/internal/metrics"
	"github.com/dafibh/finora/finora-backend/internal/util"
	"github.com/dafibh/finora/finora-backend/internal/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// AutomationResult summarizes one automation pass over a workspace
type AutomationResult struct {
	Contributions      int                   `json:"contributions"`
	ContributionErrors []string              `json:"contributionErrors,omitempty"`
	Recurrence         *RecurrenceResult     `json:"recurrence"`
	Notifications      []domain.Notification `json:"notifications"`
}

// AutomationService runs the derivation steps that follow a ledger load:
// goal auto-contributions, then recurrence generation, then notifications.
type AutomationService struct {
	transactionRepo domain.TransactionRepository
	goalRepo        domain.GoalRepository
	budgetRepo      domain.BudgetRepository
	goals           *GoalService
	recurrences     *RecurrenceService
	notifications   *NotificationService
	clock           domain.Clock
	logger          zerolog.Logger
	eventPublisher  websocket.EventPublisher
}

// NewAutomationService creates a new AutomationService
func NewAutomationService(
	transactionRepo domain.TransactionRepository,
	goalRepo domain.GoalRepository,
	budgetRepo domain.BudgetRepository,
	goals *GoalService,
	recurrences *RecurrenceService,
	notifications *NotificationService,
	clock domain.Clock,
	logger zerolog.Logger,
) *AutomationService {
	return &AutomationService{
		transactionRepo: transactionRepo,
		goalRepo:        goalRepo,
		budgetRepo:      budgetRepo,
		goals:           goals,
		recurrences:     recurrences,
		notifications:   notifications,
		clock:           clock,
		logger:          logger.With().Str("component", "automation").Logger(),
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *AutomationService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// Run executes one automation pass for a workspace. Loading errors abort the
// pass; failures of single contributions or occurrences are reported in the
// result.
func (s *AutomationService) Run(ctx context.Context, workspaceID int32) (*AutomationResult, error) {
	start := time.Now()

	var (
		txs     []*domain.Transaction
		goals   []*domain.Goal
		budgets []*domain.Budget
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.transactionRepo.GetAll(gctx, workspaceID)
		return err
	})
	g.Go(func() error {
		var err error
		goals, err = s.goalRepo.GetAll(gctx, workspaceID)
		return err
	})
	g.Go(func() error {
		var err error
		budgets, err = s.budgetRepo.GetAll(gctx, workspaceID)
		return err
	})
	if err := g.Wait(); err != nil {
		metrics.AutomationRuns.WithLabelValues("error").Inc()
		s.logger.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to load workspace data")
		return nil, err
	}

	contributions := s.goals.AutoContribute(ctx, workspaceID, goals, txs)
	txs = append(txs, contributions.Created...)

	recurrence := s.recurrences.GenerateFrom(ctx, workspaceID, txs)
	txs = append(txs, recurrence.Created...)

	result := &AutomationResult{
		Contributions:      contributions.Contributed,
		ContributionErrors: contributions.Errors,
		Recurrence:         recurrence,
		Notifications:      s.notifications.Generate(txs, budgets, util.ToLocalDateKey(s.clock.Now())),
	}

	metrics.AutomationRuns.WithLabelValues("ok").Inc()
	metrics.AutomationDuration.Observe(time.Since(start).Seconds())

	if s.eventPublisher != nil {
		s.eventPublisher.Publish(workspaceID, websocket.AutomationCompleted(result))
	}
	return result, nil
}
