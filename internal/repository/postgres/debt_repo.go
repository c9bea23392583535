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

const debtColumns = `id, workspace_id, name, total_amount, current_amount, interest_rate, min_payment,
	due_day, category, created_at`

// DebtRepository implements domain.DebtRepository using PostgreSQL
type DebtRepository struct {
	pool *pgxpool.Pool
}

// NewDebtRepository creates a new DebtRepository
func NewDebtRepository(pool *pgxpool.Pool) *DebtRepository {
	return &DebtRepository{pool: pool}
}

// Create creates a new debt
func (r *DebtRepository) Create(ctx context.Context, debt *domain.Debt) (*domain.Debt, error) {
	total, err := decimalToPgNumeric(debt.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid total amount: %w", err)
	}
	current, err := decimalToPgNumeric(debt.CurrentAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid current amount: %w", err)
	}
	rate, err := decimalToPgNumeric(debt.InterestRate)
	if err != nil {
		return nil, fmt.Errorf("invalid interest rate: %w", err)
	}
	minPayment, err := decimalToPgNumeric(debt.MinPayment)
	if err != nil {
		return nil, fmt.Errorf("invalid minimum payment: %w", err)
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO debts (workspace_id, name, total_amount, current_amount, interest_rate, min_payment, due_day, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+debtColumns,
		debt.WorkspaceID, debt.Name, total, current, rate, minPayment, debt.DueDay, string(debt.Category))
	return scanDebt(row)
}

// GetByID retrieves a debt by its ID within a workspace
func (r *DebtRepository) GetByID(ctx context.Context, workspaceID int32, id uuid.UUID) (*domain.Debt, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+debtColumns+` FROM debts WHERE workspace_id = $1 AND id = $2`,
		workspaceID, id)
	debt, err := scanDebt(row)
	if err != nil {
		return nil, notFound(err, domain.ErrDebtNotFound)
	}
	return debt, nil
}

// GetAll retrieves all debts of a workspace
func (r *DebtRepository) GetAll(ctx context.Context, workspaceID int32) ([]*domain.Debt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+debtColumns+` FROM debts WHERE workspace_id = $1 ORDER BY created_at`,
		workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.Debt, 0)
	for rows.Next() {
		debt, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, debt)
	}
	return result, rows.Err()
}

// Update replaces the editable fields of a debt. The original total is kept.
func (r *DebtRepository) Update(ctx context.Context, debt *domain.Debt) (*domain.Debt, error) {
	current, err := decimalToPgNumeric(debt.CurrentAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid current amount: %w", err)
	}
	rate, err := decimalToPgNumeric(debt.InterestRate)
	if err != nil {
		return nil, fmt.Errorf("invalid interest rate: %w", err)
	}
	minPayment, err := decimalToPgNumeric(debt.MinPayment)
	if err != nil {
		return nil, fmt.Errorf("invalid minimum payment: %w", err)
	}

	row := r.pool.QueryRow(ctx,
		`UPDATE debts SET name = $3, current_amount = $4, interest_rate = $5, min_payment = $6,
			due_day = $7, category = $8
		WHERE workspace_id = $1 AND id = $2
		RETURNING `+debtColumns,
		debt.WorkspaceID, debt.ID, debt.Name, current, rate, minPayment, debt.DueDay, string(debt.Category))
	updated, err := scanDebt(row)
	if err != nil {
		return nil, notFound(err, domain.ErrDebtNotFound)
	}
	return updated, nil
}

// UpdateBalance sets the outstanding balance of a debt
func (r *DebtRepository) UpdateBalance(ctx context.Context, workspaceID int32, id uuid.UUID, currentAmount decimal.Decimal) (*domain.Debt, error) {
	current, err := decimalToPgNumeric(currentAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid current amount: %w", err)
	}
	row := r.pool.QueryRow(ctx,
		`UPDATE debts SET current_amount = $3 WHERE workspace_id = $1 AND id = $2
		RETURNING `+debtColumns,
		workspaceID, id, current)
	debt, err := scanDebt(row)
	if err != nil {
		return nil, notFound(err, domain.ErrDebtNotFound)
	}
	return debt, nil
}

// Delete removes a debt
func (r *DebtRepository) Delete(ctx context.Context, workspaceID int32, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM debts WHERE workspace_id = $1 AND id = $2`,
		workspaceID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDebtNotFound
	}
	return nil
}

func scanDebt(row pgx.Row) (*domain.Debt, error) {
	var (
		debt       domain.Debt
		total      pgtype.Numeric
		current    pgtype.Numeric
		rate       pgtype.Numeric
		minPayment pgtype.Numeric
		category   string
	)
	if err := row.Scan(&debt.ID, &debt.WorkspaceID, &debt.Name, &total, &current, &rate, &minPayment,
		&debt.DueDay, &category, &debt.CreatedAt); err != nil {
		return nil, err
	}
	debt.TotalAmount = pgNumericToDecimal(total)
	debt.CurrentAmount = pgNumericToDecimal(current)
	debt.InterestRate = pgNumericToDecimal(rate)
	debt.MinPayment = pgNumericToDecimal(minPayment)
	debt.Category = domain.DebtCategory(category)
	return &debt, nil
}
