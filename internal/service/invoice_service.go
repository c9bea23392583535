package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/dafibh/finora/finora-backend/internal/metrics"
	"github.com/dafibh/finora/finora-backend/internal/util"
	"github.com/dafibh/finora/finora-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// InvoiceService groups card transactions into monthly invoices and settles them
type InvoiceService struct {
	transactionRepo domain.TransactionRepository
	cardRepo        domain.CardRepository
	closures        *ClosureService
	clock           domain.Clock
	eventPublisher  websocket.EventPublisher
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	transactionRepo domain.TransactionRepository,
	cardRepo domain.CardRepository,
	closures *ClosureService,
	clock domain.Clock,
) *InvoiceService {
	return &InvoiceService{
		transactionRepo: transactionRepo,
		cardRepo:        cardRepo,
		closures:        closures,
		clock:           clock,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *InvoiceService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *InvoiceService) publishEvent(workspaceID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(workspaceID, event)
	}
}

type invoiceKey struct {
	year, month int
}

// GroupInvoices buckets the card's transactions by invoice month. An invoice
// is paid only when every member is paid. Result is ordered oldest first.
// Transactions of other cards and rows with unreadable dates are ignored.
func GroupInvoices(card *domain.CreditCard, txs []*domain.Transaction) []*domain.Invoice {
	groups := make(map[invoiceKey]*domain.Invoice)
	for _, tx := range txs {
		if tx.CardID == nil || *tx.CardID != card.ID {
			continue
		}
		year, month, err := InvoicePeriodOf(tx, card)
		if err != nil {
			continue
		}
		key := invoiceKey{year: year, month: month}
		inv, ok := groups[key]
		if !ok {
			inv = &domain.Invoice{
				CardID: card.ID,
				Year:   year,
				Month:  month,
				Total:  decimal.Zero,
				IsPaid: true,
			}
			groups[key] = inv
		}
		inv.Total = inv.Total.Add(tx.Amount)
		inv.Transactions = append(inv.Transactions, tx)
		if !tx.IsPaid {
			inv.IsPaid = false
		}
	}

	invoices := make([]*domain.Invoice, 0, len(groups))
	for _, inv := range groups {
		invoices = append(invoices, inv)
	}
	sort.Slice(invoices, func(i, j int) bool {
		if invoices[i].Year != invoices[j].Year {
			return invoices[i].Year < invoices[j].Year
		}
		return invoices[i].Month < invoices[j].Month
	})
	return invoices
}

// AvailableLimit returns how much of the card limit is taken by unpaid
// purchases and how much is left.
func AvailableLimit(card *domain.CreditCard, txs []*domain.Transaction) (used, available decimal.Decimal) {
	used = decimal.Zero
	for _, tx := range txs {
		if tx.CardID == nil || *tx.CardID != card.ID || tx.IsPaid {
			continue
		}
		used = used.Add(tx.Amount)
	}
	return used, card.Limit.Sub(used)
}

// ListCardSummaries returns every card with utilization and invoices
func (s *InvoiceService) ListCardSummaries(ctx context.Context, workspaceID int32) ([]*domain.CardSummary, error) {
	cards, err := s.cardRepo.GetAll(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	txs, err := s.transactionRepo.GetAll(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	summaries := make([]*domain.CardSummary, 0, len(cards))
	for _, card := range cards {
		used, available := AvailableLimit(card, txs)
		summaries = append(summaries, &domain.CardSummary{
			Card:      card,
			Used:      used,
			Available: available,
			Invoices:  GroupInvoices(card, txs),
		})
	}
	return summaries, nil
}

// GetInvoices returns the invoices of one card
func (s *InvoiceService) GetInvoices(ctx context.Context, workspaceID int32, cardID uuid.UUID) ([]*domain.Invoice, error) {
	card, err := s.cardRepo.GetByID(ctx, workspaceID, cardID)
	if err != nil {
		return nil, err
	}
	txs, err := s.transactionRepo.List(ctx, workspaceID, &domain.TransactionFilters{CardID: &card.ID})
	if err != nil {
		return nil, err
	}
	return GroupInvoices(card, txs), nil
}

// PayInvoice marks the invoice members paid and records the cash outflow as a
// settlement expense dated today. Both writes go to the store as one unit; on
// failure neither the flags nor the settlement are left behind.
func (s *InvoiceService) PayInvoice(ctx context.Context, workspaceID int32, input domain.PayInvoiceInput) (*domain.Transaction, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	card, err := s.cardRepo.GetByID(ctx, workspaceID, input.CardID)
	if err != nil {
		return nil, err
	}

	today := util.ToLocalDateKey(s.clock.Now())
	if err := s.closures.EnsureOpen(ctx, workspaceID, today); err != nil {
		return nil, err
	}

	members, err := s.transactionRepo.GetByIDs(ctx, workspaceID, input.TransactionIDs)
	if err != nil {
		return nil, err
	}
	if len(members) != len(input.TransactionIDs) {
		return nil, domain.ErrTransactionNotFound
	}
	for _, tx := range members {
		if tx.CardID == nil || *tx.CardID != card.ID {
			return nil, domain.ErrTransactionsNotInInvoice
		}
	}

	settlement := &domain.Transaction{
		WorkspaceID: workspaceID,
		Description: domain.InvoiceSettlementLabel,
		Amount:      input.TotalAmount,
		Date:        today,
		Type:        domain.TransactionTypeExpense,
		Nature:      domain.NatureVariable,
		Category:    domain.CategoryCardPayment,
		Account:     input.SourceAccount,
		Tags:        []string{domain.TagInvoice},
		IsPaid:      true,
	}

	created, err := s.transactionRepo.SettleInvoice(ctx, workspaceID, input.TransactionIDs, settlement)
	if err != nil {
		log.Error().Err(err).
			Int32("workspace_id", workspaceID).
			Str("card_id", card.ID.String()).
			Int("members", len(input.TransactionIDs)).
			Msg("Failed to settle invoice")
		return nil, fmt.Errorf("settle invoice: %w", err)
	}

	metrics.InvoicePayments.Inc()
	s.publishEvent(workspaceID, websocket.InvoicePaid(map[string]interface{}{
		"cardId":         card.ID,
		"transactionIds": input.TransactionIDs,
		"settlement":     created,
	}))
	return created, nil
}
