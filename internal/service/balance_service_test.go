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
)

func ledgerEntry(date string, txType domain.TransactionType, amount int64, category string) *domain.Transaction {
	return &domain.Transaction{
		WorkspaceID: testWorkspaceID,
		Description: category,
		Amount:      decimal.NewFromInt(amount),
		Date:        date,
		Type:        txType,
		Category:    category,
		Account:     domain.DefaultAccount,
		IsPaid:      true,
	}
}

func cardEntry(date string, amount int64, category string) *domain.Transaction {
	cardID := uuid.New()
	tx := ledgerEntry(date, domain.TransactionTypeExpense, amount, category)
	tx.CardID = &cardID
	tx.IsPaid = false
	return tx
}

func TestComputeMonthBalance_NegativeRollover(t *testing.T) {
	txs := []*domain.Transaction{
		ledgerEntry("2024-02-10", domain.TransactionTypeIncome, 100, "Salário"),
		ledgerEntry("2024-02-20", domain.TransactionTypeExpense, 250, "Aluguel"),
		ledgerEntry("2024-03-05", domain.TransactionTypeIncome, 1000, "Salário"),
		ledgerEntry("2024-03-31", domain.TransactionTypeExpense, 400, "Mercado"),
		ledgerEntry("2024-04-01", domain.TransactionTypeExpense, 999, "Mercado"),
		cardEntry("2024-03-06", 500, "Lazer"),
	}

	balance := ComputeMonthBalance(txs, 2024, 3)
	assert.True(t, balance.Income.Equal(decimal.NewFromInt(1000)))
	assert.True(t, balance.Expense.Equal(decimal.NewFromInt(400)))
	assert.True(t, balance.Operational.Equal(decimal.NewFromInt(600)))
	assert.True(t, balance.Rollover.Equal(decimal.NewFromInt(-150)))
	assert.True(t, balance.Final.Equal(decimal.NewFromInt(450)))
}

func TestComputeMonthSummary_IncludesCardPurchases(t *testing.T) {
	txs := []*domain.Transaction{
		ledgerEntry("2024-03-05", domain.TransactionTypeIncome, 1000, "Salário"),
		cardEntry("2024-03-06", 500, "Lazer"),
		ledgerEntry("2024-02-05", domain.TransactionTypeExpense, 70, "Mercado"),
	}

	summary := ComputeMonthSummary(txs, 2024, 3)
	assert.True(t, summary.Expense.Equal(decimal.NewFromInt(500)))
	assert.True(t, summary.Net.Equal(decimal.NewFromInt(500)))
}

func TestBalanceHistory(t *testing.T) {
	txs := []*domain.Transaction{
		ledgerEntry("2024-02-01", domain.TransactionTypeIncome, 100, "Salário"),
		ledgerEntry("2024-03-09", domain.TransactionTypeExpense, 30, "Mercado"),
		cardEntry("2024-03-09", 500, "Lazer"),
	}

	points, err := BalanceHistory(txs, "2024-03-10", 3)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, "2024-03-08", points[0].Date)
	assert.True(t, points[0].Balance.Equal(decimal.NewFromInt(100)))
	assert.True(t, points[1].Balance.Equal(decimal.NewFromInt(70)))
	assert.Equal(t, "2024-03-10", points[2].Date)
	assert.True(t, points[2].Balance.Equal(decimal.NewFromInt(70)))

	empty, err := BalanceHistory(txs, "2024-03-10", 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestTopExpenseCategories(t *testing.T) {
	txs := []*domain.Transaction{
		ledgerEntry("2024-03-01", domain.TransactionTypeExpense, 100, "Mercado"),
		ledgerEntry("2024-03-02", domain.TransactionTypeExpense, 100, "Mercado"),
		ledgerEntry("2024-03-03", domain.TransactionTypeExpense, 150, "Lazer"),
		cardEntry("2024-03-04", 300, "Viagem"),
		ledgerEntry("2024-03-05", domain.TransactionTypeExpense, 10, "Farmácia"),
		ledgerEntry("2024-03-05", domain.TransactionTypeIncome, 5000, "Salário"),
	}

	top := TopExpenseCategories(txs, 2024, 3, 3)
	require.Len(t, top, 3)
	assert.Equal(t, "Viagem", top[0].Category)
	assert.Equal(t, "Mercado", top[1].Category)
	assert.Equal(t, "Lazer", top[2].Category)
}

func TestGetDashboard(t *testing.T) {
	txRepo := testutil.NewMockTransactionRepository()
	txRepo.AddTransaction(ledgerEntry("2024-03-05", domain.TransactionTypeIncome, 1000, "Salário"))
	svc := NewBalanceService(txRepo, testutil.NewFixedClock("2024-03-20"))

	dashboard, err := svc.GetDashboard(context.Background(), testWorkspaceID, 2024, 3)
	require.NoError(t, err)
	assert.Len(t, dashboard.History, BalanceHistoryDays)
	assert.Equal(t, "2024-03-20", dashboard.History[BalanceHistoryDays-1].Date)
	assert.True(t, dashboard.Balance.Final.Equal(decimal.NewFromInt(1000)))

	_, err = svc.GetMonthBalance(context.Background(), testWorkspaceID, 2024, 13)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
