package service

import (
	"context"
	"testing"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/dafibh/finora/finora-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func setupNotificationService(today string) (*NotificationService, *testutil.MockTransactionRepository, *testutil.MockBudgetRepository) {
	txRepo := testutil.NewMockTransactionRepository()
	budgetRepo := testutil.NewMockBudgetRepository()
	svc := NewNotificationService(txRepo, budgetRepo, testutil.NewFixedClock(today), language.BrazilianPortuguese)
	return svc, txRepo, budgetRepo
}

func notificationIDs(notifications []domain.Notification) []string {
	ids := make([]string, 0, len(notifications))
	for _, n := range notifications {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestNotifications_BudgetThresholds(t *testing.T) {
	svc, _, _ := setupNotificationService("2024-03-15")
	exceeded := &domain.Budget{ID: uuid.New(), Category: "Mercado", Limit: decimal.NewFromInt(100)}
	warning := &domain.Budget{ID: uuid.New(), Category: "Lazer", Limit: decimal.NewFromInt(100)}
	exactlyNinety := &domain.Budget{ID: uuid.New(), Category: "Saúde", Limit: decimal.NewFromInt(100)}
	paused := &domain.Budget{ID: uuid.New(), Category: "Viagem", Limit: decimal.NewFromInt(10), Paused: true}

	txs := []*domain.Transaction{
		ledgerEntry("2024-03-02", domain.TransactionTypeExpense, 150, "Mercado"),
		ledgerEntry("2024-03-03", domain.TransactionTypeExpense, 95, "Lazer"),
		ledgerEntry("2024-03-04", domain.TransactionTypeExpense, 90, "Saúde"),
		ledgerEntry("2024-03-05", domain.TransactionTypeExpense, 500, "Viagem"),
		ledgerEntry("2024-02-05", domain.TransactionTypeExpense, 500, "Saúde"),
	}

	notifications := svc.Generate(txs, []*domain.Budget{exceeded, warning, exactlyNinety, paused}, "2024-03-15")
	require.Len(t, notifications, 2)

	assert.Equal(t, "budget-exceed-"+exceeded.ID.String(), notifications[0].ID)
	assert.Equal(t, domain.NotificationCritical, notifications[0].Type)
	assert.Contains(t, notifications[0].Message, "Mercado")

	assert.Equal(t, "budget-warn-"+warning.ID.String(), notifications[1].ID)
	assert.Equal(t, domain.NotificationWarning, notifications[1].Type)
	assert.Equal(t, "2024-03-15", notifications[1].Date)
}

func TestNotifications_BillsDueWithinAWeek(t *testing.T) {
	svc, _, _ := setupNotificationService("2024-03-25")
	freq := domain.FrequencyMonthly
	template := func(date string, txType domain.TransactionType) *domain.Transaction {
		tx := ledgerEntry(date, txType, 100, "Moradia")
		tx.ID = uuid.New()
		tx.IsRecurring = true
		tx.Frequency = &freq
		return tx
	}

	dueSoon := template("2024-01-28", domain.TransactionTypeExpense)
	dueToday := template("2023-11-25", domain.TransactionTypeExpense)
	monthEnd := template("2024-01-31", domain.TransactionTypeExpense)
	alreadyPast := template("2024-01-10", domain.TransactionTypeExpense)
	income := template("2024-01-27", domain.TransactionTypeIncome)
	occurrence := ledgerEntry("2024-03-27", domain.TransactionTypeExpense, 100, "Moradia")
	parent := dueSoon.ID
	occurrence.RecurrenceParentID = &parent

	notifications := svc.Generate([]*domain.Transaction{dueSoon, dueToday, monthEnd, alreadyPast, income, occurrence}, nil, "2024-03-25")

	assert.ElementsMatch(t, []string{
		"bill-due-" + dueSoon.ID.String(),
		"bill-due-" + dueToday.ID.String(),
		"bill-due-" + monthEnd.ID.String(),
	}, notificationIDs(notifications))
	for _, n := range notifications {
		assert.Equal(t, domain.NotificationInfo, n.Type)
	}
}

func TestNotifications_StableIDs(t *testing.T) {
	svc, _, _ := setupNotificationService("2024-03-15")
	budget := &domain.Budget{ID: uuid.New(), Category: "Mercado", Limit: decimal.NewFromInt(100)}
	txs := []*domain.Transaction{ledgerEntry("2024-03-02", domain.TransactionTypeExpense, 150, "Mercado")}

	first := svc.Generate(txs, []*domain.Budget{budget}, "2024-03-15")
	second := svc.Generate(txs, []*domain.Budget{budget}, "2024-03-15")
	assert.Equal(t, notificationIDs(first), notificationIDs(second))
}

func TestNotifications_List(t *testing.T) {
	svc, txRepo, budgetRepo := setupNotificationService("2024-03-15")
	budgetRepo.AddBudget(&domain.Budget{WorkspaceID: testWorkspaceID, Category: "Mercado", Limit: decimal.NewFromInt(100)})
	txRepo.AddTransaction(ledgerEntry("2024-03-02", domain.TransactionTypeExpense, 150, "Mercado"))

	notifications, err := svc.List(context.Background(), testWorkspaceID)
	require.NoError(t, err)
	assert.Len(t, notifications, 1)

	budgetRepo.Err = assert.AnError
	_, err = svc.List(context.Background(), testWorkspaceID)
	assert.ErrorIs(t, err, assert.AnError)
}
