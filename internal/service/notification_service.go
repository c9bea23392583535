package service

import (
	"context"
	"fmt"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/dafibh/finora/finora-backend/internal/util"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const billLookaheadDays = 7

var budgetAlertRatio = decimal.NewFromFloat(0.9)

// NotificationService derives alerts from budgets and upcoming bills
type NotificationService struct {
	transactionRepo domain.TransactionRepository
	budgetRepo      domain.BudgetRepository
	clock           domain.Clock
	printer         *message.Printer
	symbol          string
}

// NewNotificationService creates a new NotificationService. Amounts in
// messages are formatted for locale.
func NewNotificationService(
	transactionRepo domain.TransactionRepository,
	budgetRepo domain.BudgetRepository,
	clock domain.Clock,
	locale language.Tag,
) *NotificationService {
	unit, _ := currency.FromTag(locale)
	return &NotificationService{
		transactionRepo: transactionRepo,
		budgetRepo:      budgetRepo,
		clock:           clock,
		printer:         message.NewPrinter(locale),
		symbol:          fmt.Sprintf("%s", currency.Symbol(unit)),
	}
}

// List loads the ledger and budgets and derives the current notifications
func (s *NotificationService) List(ctx context.Context, workspaceID int32) ([]domain.Notification, error) {
	var (
		txs     []*domain.Transaction
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
		budgets, err = s.budgetRepo.GetAll(gctx, workspaceID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return s.Generate(txs, budgets, util.ToLocalDateKey(s.clock.Now())), nil
}

// Generate derives notifications for the month containing today:
// budgets over their limit or past 90% of it, and recurring bills due within
// the next week.
func (s *NotificationService) Generate(txs []*domain.Transaction, budgets []*domain.Budget, today string) []domain.Notification {
	notifications := make([]domain.Notification, 0)

	year, month, _, err := util.SplitDateKey(today)
	if err != nil {
		return notifications
	}

	for _, b := range budgets {
		if b.Paused {
			continue
		}
		spent := decimal.Zero
		for _, tx := range txs {
			if tx.Type == domain.TransactionTypeExpense && tx.Category == b.Category && tx.InMonth(year, month) {
				spent = spent.Add(tx.Amount)
			}
		}

		switch {
		case spent.GreaterThan(b.Limit):
			notifications = append(notifications, domain.Notification{
				ID:      "budget-exceed-" + b.ID.String(),
				Title:   "Orçamento Excedido",
				Message: fmt.Sprintf("Você excedeu o limite de %s em %s.", b.Category, s.formatAmount(spent.Sub(b.Limit))),
				Type:    domain.NotificationCritical,
				Date:    today,
			})
		case spent.GreaterThan(b.Limit.Mul(budgetAlertRatio)):
			notifications = append(notifications, domain.Notification{
				ID:      "budget-warn-" + b.ID.String(),
				Title:   "Atenção ao Orçamento",
				Message: fmt.Sprintf("Você já consumiu 90%% do orçamento de %s.", b.Category),
				Type:    domain.NotificationWarning,
				Date:    today,
			})
		}
	}

	horizon, err := util.AddDays(today, billLookaheadDays)
	if err != nil {
		return notifications
	}
	for _, tx := range txs {
		if !tx.IsTemplate() || tx.Type != domain.TransactionTypeExpense {
			continue
		}
		_, _, day, err := util.SplitDateKey(tx.Date)
		if err != nil {
			continue
		}
		due := util.ClampedDateKey(year, month, day)
		if due < today || due > horizon {
			continue
		}
		notifications = append(notifications, domain.Notification{
			ID:      "bill-due-" + tx.ID.String(),
			Title:   "Conta a Vencer",
			Message: fmt.Sprintf("A conta \"%s\" vence dia %d.", tx.Description, day),
			Type:    domain.NotificationInfo,
			Date:    due,
		})
	}

	return notifications
}

func (s *NotificationService) formatAmount(amount decimal.Decimal) string {
	return s.printer.Sprintf("%s %.2f", s.symbol, amount.InexactFloat64())
}
