package service

import (
	"context"
	"fmt"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/dafibh/finora/finora-backend/internal/websocket"
	"github.com/google/uuid"
)

// TransactionService handles ledger writes: normal entries, transfer pairs and
// installment purchases. Every write is checked against closed months.
type TransactionService struct {
	transactionRepo domain.TransactionRepository
	cardRepo        domain.CardRepository
	closures        *ClosureService
	eventPublisher  websocket.EventPublisher
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(
	transactionRepo domain.TransactionRepository,
	cardRepo domain.CardRepository,
	closures *ClosureService,
) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		cardRepo:        cardRepo,
		closures:        closures,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *TransactionService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *TransactionService) publishEvent(workspaceID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(workspaceID, event)
	}
}

// Create validates input and persists the records it expands to: two for a
// transfer, N for an installment purchase, one otherwise. Records are inserted
// together or not at all.
func (s *TransactionService) Create(ctx context.Context, workspaceID int32, input domain.CreateTransactionInput) ([]*domain.Transaction, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := s.closures.EnsureOpen(ctx, workspaceID, input.Date); err != nil {
		return nil, err
	}

	if input.Nature == "" {
		if input.IsRecurring {
			input.Nature = domain.NatureFixed
		} else {
			input.Nature = domain.NatureVariable
		}
	}

	var card *domain.CreditCard
	if input.CardID != nil && input.Type != domain.TransactionTypeTransfer {
		c, err := s.cardRepo.GetByID(ctx, workspaceID, *input.CardID)
		if err != nil {
			return nil, err
		}
		card = c
	}

	base := newTransactionFromInput(workspaceID, input)

	var batch []*domain.Transaction
	switch {
	case input.Type == domain.TransactionTypeTransfer:
		batch = BuildTransferPair(base)
	case card != nil && input.InstallmentCount > 1:
		installments, err := AllocateInstallments(base, card, int(input.InstallmentCount))
		if err != nil {
			return nil, err
		}
		batch = installments
	default:
		base.IsPaid = base.CardID == nil
		batch = []*domain.Transaction{base}
	}

	created, err := s.transactionRepo.Create(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	for _, tx := range created {
		s.publishEvent(workspaceID, websocket.TransactionCreated(tx))
	}
	return created, nil
}

// BuildTransferPair turns a transfer request into its two ledger legs. The
// request's Category names the destination account. Goal contributions keep
// their own description on both legs.
func BuildTransferPair(transfer *domain.Transaction) []*domain.Transaction {
	groupID := uuid.New()
	destination := transfer.Category

	debit := *transfer
	debit.Type = domain.TransactionTypeExpense
	debit.Description = "Transf. para " + destination
	debit.Category = domain.CategoryTransfer
	debit.Tags = append([]string(nil), transfer.Tags...)
	debit.CardID = nil
	debit.TransactionGroupID = &groupID
	debit.IsPaid = true

	credit := *transfer
	credit.Type = domain.TransactionTypeIncome
	credit.Account = destination
	credit.Description = "Transf. de " + transfer.Account
	credit.Category = domain.CategoryTransfer
	credit.Tags = append([]string(nil), transfer.Tags...)
	credit.CardID = nil
	credit.TransactionGroupID = &groupID
	credit.IsPaid = true

	if transfer.GoalID != nil {
		debit.Description = transfer.Description
		credit.Description = transfer.Description
	}

	return []*domain.Transaction{&debit, &credit}
}

func newTransactionFromInput(workspaceID int32, input domain.CreateTransactionInput) *domain.Transaction {
	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}
	tx := &domain.Transaction{
		WorkspaceID:        workspaceID,
		Description:        input.Description,
		Amount:             input.Amount,
		Date:               input.Date,
		Type:               input.Type,
		Nature:             input.Nature,
		Category:           input.Category,
		Account:            input.Account,
		Tags:               append([]string(nil), tags...),
		IsRecurring:        input.IsRecurring,
		Frequency:          input.Frequency,
		RecurrenceEndDate:  input.RecurrenceEndDate,
		RecurrenceParentID: input.RecurrenceParentID,
		CardID:             input.CardID,
		GoalID:             input.GoalID,
	}
	if tx.Category == "" {
		tx.Category = domain.CategoryOther
	}
	return tx
}

// GetByID returns a single transaction
func (s *TransactionService) GetByID(ctx context.Context, workspaceID int32, id uuid.UUID) (*domain.Transaction, error) {
	return s.transactionRepo.GetByID(ctx, workspaceID, id)
}

// List returns the workspace's transactions matching filters, newest first
func (s *TransactionService) List(ctx context.Context, workspaceID int32, filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	return s.transactionRepo.List(ctx, workspaceID, filters)
}

// Update applies a partial update. Both the stored date and the new date must
// be in open months.
func (s *TransactionService) Update(ctx context.Context, workspaceID int32, id uuid.UUID, update *domain.TransactionUpdate) (*domain.Transaction, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.transactionRepo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}
	if err := s.closures.EnsureOpen(ctx, workspaceID, existing.Date); err != nil {
		return nil, err
	}
	if update.Date != nil && *update.Date != existing.Date {
		if err := s.closures.EnsureOpen(ctx, workspaceID, *update.Date); err != nil {
			return nil, err
		}
	}
	if update.CardID != nil {
		if _, err := s.cardRepo.GetByID(ctx, workspaceID, *update.CardID); err != nil {
			return nil, err
		}
	}

	updated, err := s.transactionRepo.Update(ctx, workspaceID, id, update)
	if err != nil {
		return nil, err
	}

	s.publishEvent(workspaceID, websocket.TransactionUpdated(updated))
	return updated, nil
}

// Delete removes one transaction. Siblings in the same group are left alone.
func (s *TransactionService) Delete(ctx context.Context, workspaceID int32, id uuid.UUID) error {
	existing, err := s.transactionRepo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return err
	}
	if err := s.closures.EnsureOpen(ctx, workspaceID, existing.Date); err != nil {
		return err
	}
	if err := s.transactionRepo.Delete(ctx, workspaceID, id); err != nil {
		return err
	}

	s.publishEvent(workspaceID, websocket.TransactionDeleted(map[string]interface{}{
		"id": id,
	}))
	return nil
}
