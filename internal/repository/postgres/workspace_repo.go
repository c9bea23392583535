package postgres

import (
	"context"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const workspaceColumns = `id, auth0_id, email, name, created_at`

// WorkspaceRepository implements domain.WorkspaceRepository using PostgreSQL
type WorkspaceRepository struct {
	pool *pgxpool.Pool
}

// NewWorkspaceRepository creates a new WorkspaceRepository
func NewWorkspaceRepository(pool *pgxpool.Pool) *WorkspaceRepository {
	return &WorkspaceRepository{pool: pool}
}

// GetByAuth0ID retrieves the workspace owned by an Auth0 identity
func (r *WorkspaceRepository) GetByAuth0ID(ctx context.Context, auth0ID string) (*domain.Workspace, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+workspaceColumns+` FROM workspaces WHERE auth0_id = $1`,
		auth0ID)
	workspace, err := scanWorkspace(row)
	if err != nil {
		return nil, notFound(err, domain.ErrWorkspaceNotFound)
	}
	return workspace, nil
}

// CreateOrGetByAuth0ID returns the workspace of auth0ID, creating it on first
// login. The bool reports whether it was created.
func (r *WorkspaceRepository) CreateOrGetByAuth0ID(ctx context.Context, auth0ID, email, name string) (*domain.Workspace, bool, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO workspaces (auth0_id, email, name) VALUES ($1, $2, $3)
		ON CONFLICT (auth0_id) DO NOTHING
		RETURNING `+workspaceColumns,
		auth0ID, email, name)
	workspace, err := scanWorkspace(row)
	if err == nil {
		return workspace, true, nil
	}
	if err != pgx.ErrNoRows && !isPgUniqueViolation(err) {
		return nil, false, err
	}

	existing, err := r.GetByAuth0ID(ctx, auth0ID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// GetAll retrieves every workspace
func (r *WorkspaceRepository) GetAll(ctx context.Context) ([]*domain.Workspace, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+workspaceColumns+` FROM workspaces ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.Workspace, 0)
	for rows.Next() {
		workspace, err := scanWorkspace(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, workspace)
	}
	return result, rows.Err()
}

func scanWorkspace(row pgx.Row) (*domain.Workspace, error) {
	var w domain.Workspace
	if err := row.Scan(&w.ID, &w.Auth0ID, &w.Email, &w.Name, &w.CreatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}
