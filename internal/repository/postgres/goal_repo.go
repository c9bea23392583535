package postgres

import (
	"context"
	"fmt"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const goalColumns = `id, workspace_id, name, target_amount, current_amount, deadline, color, target_account,
	auto_contribution_amount, auto_contribution_day, priority, status, created_at`

// GoalRepository implements domain.GoalRepository using PostgreSQL
type GoalRepository struct {
	pool *pgxpool.Pool
}

// NewGoalRepository creates a new GoalRepository
func NewGoalRepository(pool *pgxpool.Pool) *GoalRepository {
	return &GoalRepository{pool: pool}
}

// Create creates a new goal
func (r *GoalRepository) Create(ctx context.Context, goal *domain.Goal) (*domain.Goal, error) {
	params, err := goalParams(goal)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO goals (workspace_id, name, target_amount, current_amount, deadline, color, target_account,
			auto_contribution_amount, auto_contribution_day, priority, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+goalColumns,
		append([]any{goal.WorkspaceID}, params...)...)
	return scanGoal(row)
}

// GetByID retrieves a goal by its ID within a workspace
func (r *GoalRepository) GetByID(ctx context.Context, workspaceID int32, id uuid.UUID) (*domain.Goal, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE workspace_id = $1 AND id = $2`,
		workspaceID, id)
	goal, err := scanGoal(row)
	if err != nil {
		return nil, notFound(err, domain.ErrGoalNotFound)
	}
	return goal, nil
}

// GetAll retrieves all goals of a workspace
func (r *GoalRepository) GetAll(ctx context.Context, workspaceID int32) ([]*domain.Goal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE workspace_id = $1 ORDER BY created_at`,
		workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.Goal, 0)
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, goal)
	}
	return result, rows.Err()
}

// Update updates an existing goal
func (r *GoalRepository) Update(ctx context.Context, goal *domain.Goal) (*domain.Goal, error) {
	params, err := goalParams(goal)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx,
		`UPDATE goals SET name = $3, target_amount = $4, current_amount = $5, deadline = $6, color = $7,
			target_account = $8, auto_contribution_amount = $9, auto_contribution_day = $10,
			priority = $11, status = $12
		WHERE workspace_id = $1 AND id = $2
		RETURNING `+goalColumns,
		append([]any{goal.WorkspaceID, goal.ID}, params...)...)
	updated, err := scanGoal(row)
	if err != nil {
		return nil, notFound(err, domain.ErrGoalNotFound)
	}
	return updated, nil
}

// UpdateProgress sets the accumulated amount and status of a goal
func (r *GoalRepository) UpdateProgress(ctx context.Context, workspaceID int32, id uuid.UUID, currentAmount decimal.Decimal, status domain.GoalStatus) (*domain.Goal, error) {
	amount, err := decimalToPgNumeric(currentAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid current amount: %w", err)
	}
	row := r.pool.QueryRow(ctx,
		`UPDATE goals SET current_amount = $3, status = $4
		WHERE workspace_id = $1 AND id = $2
		RETURNING `+goalColumns,
		workspaceID, id, amount, string(status))
	updated, err := scanGoal(row)
	if err != nil {
		return nil, notFound(err, domain.ErrGoalNotFound)
	}
	return updated, nil
}

// Delete removes a goal. Contributions already in the ledger are kept.
func (r *GoalRepository) Delete(ctx context.Context, workspaceID int32, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM goals WHERE workspace_id = $1 AND id = $2`,
		workspaceID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGoalNotFound
	}
	return nil
}

func goalParams(goal *domain.Goal) ([]any, error) {
	target, err := decimalToPgNumeric(goal.TargetAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid target amount: %w", err)
	}
	current, err := decimalToPgNumeric(goal.CurrentAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid current amount: %w", err)
	}
	deadline, err := dateKeyToPgDate(goal.Deadline)
	if err != nil {
		return nil, fmt.Errorf("invalid deadline: %w", err)
	}
	autoAmount, err := optionalDecimalToPgNumeric(goal.AutoContributionAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid auto contribution amount: %w", err)
	}
	return []any{
		goal.Name, target, current, deadline, goal.Color, goal.TargetAccount,
		autoAmount, optionalInt32ToPg(goal.AutoContributionDay), string(goal.Priority), string(goal.Status),
	}, nil
}

func scanGoal(row pgx.Row) (*domain.Goal, error) {
	var (
		goal       domain.Goal
		target     pgtype.Numeric
		current    pgtype.Numeric
		deadline   pgtype.Date
		autoAmount pgtype.Numeric
		autoDay    pgtype.Int4
		priority   string
		status     string
	)
	if err := row.Scan(&goal.ID, &goal.WorkspaceID, &goal.Name, &target, &current, &deadline, &goal.Color,
		&goal.TargetAccount, &autoAmount, &autoDay, &priority, &status, &goal.CreatedAt); err != nil {
		return nil, err
	}
	goal.TargetAmount = pgNumericToDecimal(target)
	goal.CurrentAmount = pgNumericToDecimal(current)
	goal.Deadline = pgDateToOptionalDateKey(deadline)
	goal.AutoContributionAmount = pgNumericToOptionalDecimal(autoAmount)
	goal.AutoContributionDay = pgToOptionalInt32(autoDay)
	goal.Priority = domain.GoalPriority(priority)
	goal.Status = domain.GoalStatus(status)
	return &goal, nil
}
