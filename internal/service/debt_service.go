package service

import (
	"context"
	"fmt"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/dafibh/finora/finora-backend/internal/util"
	"github.com/dafibh/finora/finora-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DebtService manages debts, records payments and runs payoff simulations
type DebtService struct {
	debtRepo       domain.DebtRepository
	transactions   *TransactionService
	clock          domain.Clock
	eventPublisher websocket.EventPublisher
}

// NewDebtService creates a new DebtService
func NewDebtService(debtRepo domain.DebtRepository, transactions *TransactionService, clock domain.Clock) *DebtService {
	return &DebtService{
		debtRepo:     debtRepo,
		transactions: transactions,
		clock:        clock,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *DebtService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *DebtService) publishEvent(workspaceID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(workspaceID, event)
	}
}

// Create stores a new debt. An omitted current amount starts at the total.
func (s *DebtService) Create(ctx context.Context, workspaceID int32, debt *domain.Debt) (*domain.Debt, error) {
	debt.WorkspaceID = workspaceID
	if debt.CurrentAmount.IsZero() {
		debt.CurrentAmount = debt.TotalAmount
	}
	if err := debt.Validate(); err != nil {
		return nil, err
	}
	return s.debtRepo.Create(ctx, debt)
}

// GetAll returns the workspace's debts
func (s *DebtService) GetAll(ctx context.Context, workspaceID int32) ([]*domain.Debt, error) {
	return s.debtRepo.GetAll(ctx, workspaceID)
}

// Update changes a debt's terms. The total amount never changes after creation.
func (s *DebtService) Update(ctx context.Context, workspaceID int32, id uuid.UUID, debt *domain.Debt) (*domain.Debt, error) {
	existing, err := s.debtRepo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}
	debt.ID = id
	debt.WorkspaceID = workspaceID
	debt.TotalAmount = existing.TotalAmount
	if err := debt.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.debtRepo.Update(ctx, debt)
	if err != nil {
		return nil, err
	}
	s.publishEvent(workspaceID, websocket.DebtUpdated(updated))
	return updated, nil
}

// Delete removes a debt. Payments already recorded stay in the ledger.
func (s *DebtService) Delete(ctx context.Context, workspaceID int32, id uuid.UUID) error {
	return s.debtRepo.Delete(ctx, workspaceID, id)
}

// RegisterPayment records a payment as a ledger expense dated today, then
// lowers the outstanding balance, never below zero. A failure at either step
// is returned to the caller.
func (s *DebtService) RegisterPayment(ctx context.Context, workspaceID int32, debtID uuid.UUID, amount decimal.Decimal, account string) (*domain.Debt, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrAmountNotPositive
	}
	if account == "" {
		account = domain.DefaultAccount
	}

	debt, err := s.debtRepo.GetByID(ctx, workspaceID, debtID)
	if err != nil {
		return nil, err
	}

	input := domain.CreateTransactionInput{
		Description: "Pagamento: " + debt.Name,
		Amount:      amount,
		Date:        util.ToLocalDateKey(s.clock.Now()),
		Type:        domain.TransactionTypeExpense,
		Nature:      domain.NatureVariable,
		Category:    domain.CategoryDebts,
		Account:     account,
		Tags:        []string{domain.TagDebt, string(debt.Category)},
	}
	if _, err := s.transactions.Create(ctx, workspaceID, input); err != nil {
		return nil, fmt.Errorf("record debt payment: %w", err)
	}

	remaining := decimal.Max(decimal.Zero, debt.CurrentAmount.Sub(amount))
	updated, err := s.debtRepo.UpdateBalance(ctx, workspaceID, debtID, remaining)
	if err != nil {
		return nil, fmt.Errorf("update debt balance: %w", err)
	}

	s.publishEvent(workspaceID, websocket.DebtUpdated(updated))
	return updated, nil
}

// Simulate runs a payoff simulation over the workspace's debts
func (s *DebtService) Simulate(ctx context.Context, workspaceID int32, extra decimal.Decimal, strategy domain.DebtStrategy) (*domain.DebtSimulation, error) {
	debts, err := s.debtRepo.GetAll(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return SimulatePayoff(debts, extra, strategy)
}
