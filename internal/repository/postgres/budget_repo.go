package postgres

import (
	"context"
	"fmt"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const budgetColumns = `id, workspace_id, category, limit_amount, frequency, rollover_enabled, paused,
	start_date, end_date, created_at`

// BudgetRepository implements domain.BudgetRepository using PostgreSQL
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

// Create creates a new budget
func (r *BudgetRepository) Create(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	params, err := budgetParams(budget)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO budgets (workspace_id, category, limit_amount, frequency, rollover_enabled, paused, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+budgetColumns,
		append([]any{budget.WorkspaceID}, params...)...)
	return scanBudget(row)
}

// GetByID retrieves a budget by its ID within a workspace
func (r *BudgetRepository) GetByID(ctx context.Context, workspaceID int32, id uuid.UUID) (*domain.Budget, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE workspace_id = $1 AND id = $2`,
		workspaceID, id)
	budget, err := scanBudget(row)
	if err != nil {
		return nil, notFound(err, domain.ErrBudgetNotFound)
	}
	return budget, nil
}

// GetAll retrieves all budgets of a workspace
func (r *BudgetRepository) GetAll(ctx context.Context, workspaceID int32) ([]*domain.Budget, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE workspace_id = $1 ORDER BY category, created_at`,
		workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.Budget, 0)
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, budget)
	}
	return result, rows.Err()
}

// Update updates an existing budget
func (r *BudgetRepository) Update(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	params, err := budgetParams(budget)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx,
		`UPDATE budgets SET category = $3, limit_amount = $4, frequency = $5, rollover_enabled = $6,
			paused = $7, start_date = $8, end_date = $9
		WHERE workspace_id = $1 AND id = $2
		RETURNING `+budgetColumns,
		append([]any{budget.WorkspaceID, budget.ID}, params...)...)
	updated, err := scanBudget(row)
	if err != nil {
		return nil, notFound(err, domain.ErrBudgetNotFound)
	}
	return updated, nil
}

// Delete removes a budget
func (r *BudgetRepository) Delete(ctx context.Context, workspaceID int32, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM budgets WHERE workspace_id = $1 AND id = $2`,
		workspaceID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBudgetNotFound
	}
	return nil
}

func budgetParams(budget *domain.Budget) ([]any, error) {
	limit, err := decimalToPgNumeric(budget.Limit)
	if err != nil {
		return nil, fmt.Errorf("invalid limit: %w", err)
	}
	startDate, err := dateKeyToPgDate(budget.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date: %w", err)
	}
	endDate, err := dateKeyToPgDate(budget.EndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end date: %w", err)
	}
	return []any{budget.Category, limit, string(budget.Frequency), budget.RolloverEnabled, budget.Paused, startDate, endDate}, nil
}

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var (
		budget    domain.Budget
		limit     pgtype.Numeric
		frequency string
		startDate pgtype.Date
		endDate   pgtype.Date
	)
	if err := row.Scan(&budget.ID, &budget.WorkspaceID, &budget.Category, &limit, &frequency,
		&budget.RolloverEnabled, &budget.Paused, &startDate, &endDate, &budget.CreatedAt); err != nil {
		return nil, err
	}
	budget.Limit = pgNumericToDecimal(limit)
	budget.Frequency = domain.BudgetFrequency(frequency)
	budget.StartDate = pgDateToOptionalDateKey(startDate)
	budget.EndDate = pgDateToOptionalDateKey(endDate)
	return &budget, nil
}
