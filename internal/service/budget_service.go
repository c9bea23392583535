package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/dafibh/finora/finora-backend/internal/util"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	hundred          = decimal.NewFromInt(100)
	warningThreshold = decimal.NewFromInt(75)
)

// BudgetService manages budgets and evaluates them against the ledger
type BudgetService struct {
	budgetRepo      domain.BudgetRepository
	transactionRepo domain.TransactionRepository
	clock           domain.Clock
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(budgetRepo domain.BudgetRepository, transactionRepo domain.TransactionRepository, clock domain.Clock) *BudgetService {
	return &BudgetService{
		budgetRepo:      budgetRepo,
		transactionRepo: transactionRepo,
		clock:           clock,
	}
}

// PeriodBounds returns the first and last date keys of the period of the given
// frequency that contains ref. Weeks run Monday to Sunday.
func PeriodBounds(ref string, freq domain.BudgetFrequency) (start, end string, err error) {
	year, month, _, err := util.SplitDateKey(ref)
	if err != nil {
		return "", "", err
	}

	switch freq {
	case domain.BudgetWeekly:
		t, err := util.ParseDateKey(ref)
		if err != nil {
			return "", "", err
		}
		weekday := int(t.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		monday := t.AddDate(0, 0, 1-weekday)
		return monday.Format(util.DateKeyLayout), monday.AddDate(0, 0, 6).Format(util.DateKeyLayout), nil
	case domain.BudgetYearly:
		return util.DateKey(year, 1, 1), util.DateKey(year, 12, 31), nil
	case domain.BudgetMonthly, "":
		start, end = util.MonthBounds(year, month)
		return start, end, nil
	}
	return "", "", domain.ErrBudgetFrequencyInvalid
}

// PreviousPeriodBounds returns the bounds of the period just before the one
// containing ref.
func PreviousPeriodBounds(ref string, freq domain.BudgetFrequency) (start, end string, err error) {
	start, _, err = PeriodBounds(ref, freq)
	if err != nil {
		return "", "", err
	}
	dayBefore, err := util.AddDays(start, -1)
	if err != nil {
		return "", "", err
	}
	return PeriodBounds(dayBefore, freq)
}

// categorySpend sums expense transactions of a category within [start, end].
// Card purchases count on their own date.
func categorySpend(txs []*domain.Transaction, category, start, end string) decimal.Decimal {
	spent := decimal.Zero
	for _, tx := range txs {
		if tx.Type != domain.TransactionTypeExpense || tx.Category != category {
			continue
		}
		if tx.Date < start || tx.Date > end {
			continue
		}
		spent = spent.Add(tx.Amount)
	}
	return spent
}

// budgetPercent is spent relative to limit, rounded for display. A zero
// limit reads 100 once anything is spent and 0 otherwise.
func budgetPercent(spent, limit decimal.Decimal) decimal.Decimal {
	if limit.IsZero() {
		if spent.IsPositive() {
			return hundred
		}
		return decimal.Zero
	}
	return spent.Div(limit).Mul(hundred).Round(2)
}

// budgetStatus classifies on the exact ratio so spend just under a threshold
// keeps the lower status.
func budgetStatus(spent, limit decimal.Decimal) domain.BudgetStatus {
	if limit.IsZero() {
		if spent.IsPositive() {
			return domain.BudgetStatusCritical
		}
		return domain.BudgetStatusNormal
	}
	scaled := spent.Mul(hundred)
	switch {
	case scaled.GreaterThanOrEqual(limit.Mul(hundred)):
		return domain.BudgetStatusCritical
	case scaled.GreaterThanOrEqual(limit.Mul(warningThreshold)):
		return domain.BudgetStatusWarning
	}
	return domain.BudgetStatusNormal
}

// EvaluateBudget measures one budget against the period containing ref.
func EvaluateBudget(budget *domain.Budget, txs []*domain.Transaction, ref string) (*domain.BudgetEvaluation, error) {
	start, end, err := PeriodBounds(ref, budget.Frequency)
	if err != nil {
		return nil, err
	}

	eval := &domain.BudgetEvaluation{
		Budget:      budget,
		PeriodStart: start,
		PeriodEnd:   end,
		Spent:       decimal.Zero,
		Rollover:    decimal.Zero,
		Percent:     decimal.Zero,
	}

	if budget.Paused {
		eval.EffectiveLimit = budget.Limit
		eval.Remaining = decimal.Zero
		eval.Status = domain.BudgetStatusPaused
		return eval, nil
	}

	eval.Spent = categorySpend(txs, budget.Category, start, end)

	if budget.RolloverEnabled && budget.Frequency != domain.BudgetYearly {
		prevStart, prevEnd, err := PreviousPeriodBounds(ref, budget.Frequency)
		if err != nil {
			return nil, err
		}
		previous := categorySpend(txs, budget.Category, prevStart, prevEnd)
		eval.Rollover = budget.Limit.Sub(previous)
	}

	eval.EffectiveLimit = decimal.Max(decimal.Zero, budget.Limit.Add(eval.Rollover))
	eval.Remaining = eval.EffectiveLimit.Sub(eval.Spent)
	eval.Percent = budgetPercent(eval.Spent, eval.EffectiveLimit)
	eval.Status = budgetStatus(eval.Spent, eval.EffectiveLimit)
	return eval, nil
}

// activeIn reports whether the budget's optional date range overlaps [start, end].
func activeIn(budget *domain.Budget, start, end string) bool {
	if budget.StartDate != nil && *budget.StartDate > end {
		return false
	}
	if budget.EndDate != nil && *budget.EndDate < start {
		return false
	}
	return true
}

// Create validates and stores a budget
func (s *BudgetService) Create(ctx context.Context, workspaceID int32, budget *domain.Budget) (*domain.Budget, error) {
	budget.WorkspaceID = workspaceID
	if err := budget.Validate(); err != nil {
		return nil, err
	}
	return s.budgetRepo.Create(ctx, budget)
}

// GetAll returns the workspace's budgets
func (s *BudgetService) GetAll(ctx context.Context, workspaceID int32) ([]*domain.Budget, error) {
	return s.budgetRepo.GetAll(ctx, workspaceID)
}

// Update replaces a budget's settings
func (s *BudgetService) Update(ctx context.Context, workspaceID int32, id uuid.UUID, budget *domain.Budget) (*domain.Budget, error) {
	if _, err := s.budgetRepo.GetByID(ctx, workspaceID, id); err != nil {
		return nil, err
	}
	budget.ID = id
	budget.WorkspaceID = workspaceID
	if err := budget.Validate(); err != nil {
		return nil, err
	}
	return s.budgetRepo.Update(ctx, budget)
}

// Delete removes a budget
func (s *BudgetService) Delete(ctx context.Context, workspaceID int32, id uuid.UUID) error {
	return s.budgetRepo.Delete(ctx, workspaceID, id)
}

// Evaluate measures every budget of the given frequency against the period
// containing refDate (today when empty). Results are sorted by percent used,
// highest first.
func (s *BudgetService) Evaluate(ctx context.Context, workspaceID int32, periodType domain.BudgetFrequency, refDate string) (*domain.BudgetOverview, error) {
	if periodType == "" {
		periodType = domain.BudgetMonthly
	}
	if !periodType.Valid() {
		return nil, domain.ErrBudgetFrequencyInvalid
	}
	if refDate == "" {
		refDate = util.ToLocalDateKey(s.clock.Now())
	}
	start, end, err := PeriodBounds(refDate, periodType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	budgets, err := s.budgetRepo.GetAll(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	txs, err := s.transactionRepo.GetAll(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	overview := &domain.BudgetOverview{
		PeriodType:  periodType,
		Evaluations: make([]*domain.BudgetEvaluation, 0),
		TotalLimit:  decimal.Zero,
		TotalSpent:  decimal.Zero,
	}
	for _, budget := range budgets {
		if budget.Frequency != periodType || !activeIn(budget, start, end) {
			continue
		}
		eval, err := EvaluateBudget(budget, txs, refDate)
		if err != nil {
			return nil, err
		}
		overview.Evaluations = append(overview.Evaluations, eval)
		overview.TotalLimit = overview.TotalLimit.Add(eval.EffectiveLimit)
		overview.TotalSpent = overview.TotalSpent.Add(eval.Spent)
	}

	sort.SliceStable(overview.Evaluations, func(i, j int) bool {
		return overview.Evaluations[i].Percent.GreaterThan(overview.Evaluations[j].Percent)
	})
	return overview, nil
}
