package service

import (
	"context"
	"sort"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/dafibh/finora/finora-backend/internal/util"
	"github.com/shopspring/decimal"
)

const (
	// BalanceHistoryDays is the length of the dashboard balance series
	BalanceHistoryDays = 30
	topCategoryCount   = 3
)

// BalanceService derives month balances and dashboard figures from the ledger
type BalanceService struct {
	transactionRepo domain.TransactionRepository
	clock           domain.Clock
}

// NewBalanceService creates a new BalanceService
func NewBalanceService(transactionRepo domain.TransactionRepository, clock domain.Clock) *BalanceService {
	return &BalanceService{
		transactionRepo: transactionRepo,
		clock:           clock,
	}
}

// signedAmount is +amount for income, -amount for expense and zero otherwise.
func signedAmount(tx *domain.Transaction) decimal.Decimal {
	switch tx.Type {
	case domain.TransactionTypeIncome:
		return tx.Amount
	case domain.TransactionTypeExpense:
		return tx.Amount.Neg()
	}
	return decimal.Zero
}

// ComputeMonthBalance is the cash view of a month. Card-linked transactions
// only reach cash through their settlement, so they are left out. Rollover is
// the net of everything before the month and may be negative.
func ComputeMonthBalance(txs []*domain.Transaction, year, month int) domain.MonthBalance {
	start, end := util.MonthBounds(year, month)
	income, expense, rollover := decimal.Zero, decimal.Zero, decimal.Zero

	for _, tx := range txs {
		if tx.IsCardLinked() {
			continue
		}
		switch {
		case tx.Date < start:
			rollover = rollover.Add(signedAmount(tx))
		case tx.Date <= end:
			switch tx.Type {
			case domain.TransactionTypeIncome:
				income = income.Add(tx.Amount)
			case domain.TransactionTypeExpense:
				expense = expense.Add(tx.Amount)
			}
		}
	}

	operational := income.Sub(expense)
	return domain.MonthBalance{
		Year:        year,
		Month:       month,
		Income:      income,
		Expense:     expense,
		Operational: operational,
		Rollover:    rollover,
		Final:       operational.Add(rollover),
	}
}

// ComputeMonthSummary is the economic view of a month: card purchases count
// when they are made.
func ComputeMonthSummary(txs []*domain.Transaction, year, month int) domain.MonthSummary {
	income, expense := decimal.Zero, decimal.Zero
	for _, tx := range txs {
		if !tx.InMonth(year, month) {
			continue
		}
		switch tx.Type {
		case domain.TransactionTypeIncome:
			income = income.Add(tx.Amount)
		case domain.TransactionTypeExpense:
			expense = expense.Add(tx.Amount)
		}
	}
	return domain.MonthSummary{Income: income, Expense: expense, Net: income.Sub(expense)}
}

// BalanceHistory returns the running cash balance at the end of each of the
// last days days, ending with today.
func BalanceHistory(txs []*domain.Transaction, today string, days int) ([]domain.BalancePoint, error) {
	if days <= 0 {
		return []domain.BalancePoint{}, nil
	}
	first, err := util.AddDays(today, -(days - 1))
	if err != nil {
		return nil, err
	}

	running := decimal.Zero
	changes := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if tx.IsCardLinked() {
			continue
		}
		if tx.Date < first {
			running = running.Add(signedAmount(tx))
			continue
		}
		changes[tx.Date] = changes[tx.Date].Add(signedAmount(tx))
	}

	points := make([]domain.BalancePoint, 0, days)
	day := first
	for i := 0; i < days; i++ {
		running = running.Add(changes[day])
		points = append(points, domain.BalancePoint{Date: day, Balance: running})
		if day, err = util.AddDays(day, 1); err != nil {
			return nil, err
		}
	}
	return points, nil
}

// TopExpenseCategories returns the n largest expense categories of a month,
// card purchases included.
func TopExpenseCategories(txs []*domain.Transaction, year, month, n int) []domain.CategoryTotal {
	totals := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if tx.Type != domain.TransactionTypeExpense || !tx.InMonth(year, month) {
			continue
		}
		totals[tx.Category] = totals[tx.Category].Add(tx.Amount)
	}

	result := make([]domain.CategoryTotal, 0, len(totals))
	for category, total := range totals {
		result = append(result, domain.CategoryTotal{Category: category, Total: total})
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Total.Equal(result[j].Total) {
			return result[i].Total.GreaterThan(result[j].Total)
		}
		return result[i].Category < result[j].Category
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}

// GetMonthBalance returns the cash view balance of a month
func (s *BalanceService) GetMonthBalance(ctx context.Context, workspaceID int32, year, month int) (*domain.MonthBalance, error) {
	if err := validateYearMonth(year, month); err != nil {
		return nil, err
	}
	txs, err := s.transactionRepo.GetAll(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	balance := ComputeMonthBalance(txs, year, month)
	return &balance, nil
}

// GetDashboard returns the month balance, month-to-date figures, the 30 day
// balance history and the top expense categories
func (s *BalanceService) GetDashboard(ctx context.Context, workspaceID int32, year, month int) (*domain.Dashboard, error) {
	if err := validateYearMonth(year, month); err != nil {
		return nil, err
	}
	txs, err := s.transactionRepo.GetAll(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	history, err := BalanceHistory(txs, util.ToLocalDateKey(s.clock.Now()), BalanceHistoryDays)
	if err != nil {
		return nil, err
	}

	return &domain.Dashboard{
		Balance:       ComputeMonthBalance(txs, year, month),
		MonthToDate:   ComputeMonthSummary(txs, year, month),
		History:       history,
		TopCategories: TopExpenseCategories(txs, year, month, topCategoryCount),
	}, nil
}
