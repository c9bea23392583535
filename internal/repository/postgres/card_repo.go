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

const cardColumns = `id, workspace_id, name, credit_limit, closing_day, due_day, color, created_at`

// CardRepository implements domain.CardRepository using PostgreSQL
type CardRepository struct {
	pool *pgxpool.Pool
}

// NewCardRepository creates a new CardRepository
func NewCardRepository(pool *pgxpool.Pool) *CardRepository {
	return &CardRepository{pool: pool}
}

// Create creates a new credit card
func (r *CardRepository) Create(ctx context.Context, card *domain.CreditCard) (*domain.CreditCard, error) {
	limit, err := decimalToPgNumeric(card.Limit)
	if err != nil {
		return nil, fmt.Errorf("invalid limit: %w", err)
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO credit_cards (workspace_id, name, credit_limit, closing_day, due_day, color)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+cardColumns,
		card.WorkspaceID, card.Name, limit, card.ClosingDay, card.DueDay, card.Color)
	return scanCard(row)
}

// GetByID retrieves a card by its ID within a workspace
func (r *CardRepository) GetByID(ctx context.Context, workspaceID int32, id uuid.UUID) (*domain.CreditCard, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+cardColumns+` FROM credit_cards WHERE workspace_id = $1 AND id = $2`,
		workspaceID, id)
	card, err := scanCard(row)
	if err != nil {
		return nil, notFound(err, domain.ErrCardNotFound)
	}
	return card, nil
}

// GetAll retrieves all cards of a workspace
func (r *CardRepository) GetAll(ctx context.Context, workspaceID int32) ([]*domain.CreditCard, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+cardColumns+` FROM credit_cards WHERE workspace_id = $1 ORDER BY name`,
		workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.CreditCard, 0)
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, card)
	}
	return result, rows.Err()
}

// Update updates an existing card
func (r *CardRepository) Update(ctx context.Context, card *domain.CreditCard) (*domain.CreditCard, error) {
	limit, err := decimalToPgNumeric(card.Limit)
	if err != nil {
		return nil, fmt.Errorf("invalid limit: %w", err)
	}
	row := r.pool.QueryRow(ctx,
		`UPDATE credit_cards SET name = $3, credit_limit = $4, closing_day = $5, due_day = $6, color = $7
		WHERE workspace_id = $1 AND id = $2
		RETURNING `+cardColumns,
		card.WorkspaceID, card.ID, card.Name, limit, card.ClosingDay, card.DueDay, card.Color)
	updated, err := scanCard(row)
	if err != nil {
		return nil, notFound(err, domain.ErrCardNotFound)
	}
	return updated, nil
}

// Delete removes a card. Its transactions stay in the ledger unlinked.
func (r *CardRepository) Delete(ctx context.Context, workspaceID int32, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM credit_cards WHERE workspace_id = $1 AND id = $2`,
		workspaceID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCardNotFound
	}
	return nil
}

func scanCard(row pgx.Row) (*domain.CreditCard, error) {
	var (
		card  domain.CreditCard
		limit pgtype.Numeric
	)
	if err := row.Scan(&card.ID, &card.WorkspaceID, &card.Name, &limit, &card.ClosingDay, &card.DueDay, &card.Color, &card.CreatedAt); err != nil {
		return nil, err
	}
	card.Limit = pgNumericToDecimal(limit)
	return &card, nil
}
