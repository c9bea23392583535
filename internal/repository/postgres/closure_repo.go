package postgres

import (
	"context"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const closureColumns = `id, workspace_id, month, year, is_closed, closed_at`

// ClosureRepository implements domain.ClosureRepository using PostgreSQL
type ClosureRepository struct {
	pool *pgxpool.Pool
}

// NewClosureRepository creates a new ClosureRepository
func NewClosureRepository(pool *pgxpool.Pool) *ClosureRepository {
	return &ClosureRepository{pool: pool}
}

// Get retrieves the closure record of a month. Months never toggled return
// ErrClosureNotFound.
func (r *ClosureRepository) Get(ctx context.Context, workspaceID int32, year, month int) (*domain.MonthlyClosure, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+closureColumns+` FROM monthly_closures
		WHERE workspace_id = $1 AND year = $2 AND month = $3`,
		workspaceID, year, month)
	closure, err := scanClosure(row)
	if err != nil {
		return nil, notFound(err, domain.ErrClosureNotFound)
	}
	return closure, nil
}

// Upsert records whether a month is closed
func (r *ClosureRepository) Upsert(ctx context.Context, workspaceID int32, year, month int, isClosed bool) (*domain.MonthlyClosure, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO monthly_closures (workspace_id, year, month, is_closed, closed_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (workspace_id, year, month)
		DO UPDATE SET is_closed = EXCLUDED.is_closed, closed_at = NOW()
		RETURNING `+closureColumns,
		workspaceID, year, month, isClosed)
	return scanClosure(row)
}

// GetAll retrieves every closure record of a workspace
func (r *ClosureRepository) GetAll(ctx context.Context, workspaceID int32) ([]*domain.MonthlyClosure, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+closureColumns+` FROM monthly_closures
		WHERE workspace_id = $1 ORDER BY year, month`,
		workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.MonthlyClosure, 0)
	for rows.Next() {
		closure, err := scanClosure(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, closure)
	}
	return result, rows.Err()
}

func scanClosure(row pgx.Row) (*domain.MonthlyClosure, error) {
	var (
		c     domain.MonthlyClosure
		month int32
		year  int32
	)
	if err := row.Scan(&c.ID, &c.WorkspaceID, &month, &year, &c.IsClosed, &c.ClosedAt); err != nil {
		return nil, err
	}
	c.Month = int(month)
	c.Year = int(year)
	return &c, nil
}
