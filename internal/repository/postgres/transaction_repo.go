package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const transactionColumns = `id, workspace_id, description, amount, date, type, nature, category, account,
	tags, attachment_url, is_recurring, frequency, recurrence_end_date, recurrence_parent_id,
	card_id, transaction_group_id, is_paid, installment_current, installment_total, goal_id,
	created_at, updated_at`

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create inserts every transaction in one database transaction
func (r *TransactionRepository) Create(ctx context.Context, transactions []*domain.Transaction) ([]*domain.Transaction, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	created, err := insertTransactions(ctx, tx, transactions)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a transaction by its ID within a workspace
func (r *TransactionRepository) GetByID(ctx context.Context, workspaceID int32, id uuid.UUID) (*domain.Transaction, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE workspace_id = $1 AND id = $2`,
		workspaceID, id)
	t, err := scanTransaction(row)
	if err != nil {
		return nil, notFound(err, domain.ErrTransactionNotFound)
	}
	return t, nil
}

// GetByIDs retrieves the transactions of ids that exist in the workspace
func (r *TransactionRepository) GetByIDs(ctx context.Context, workspaceID int32, ids []uuid.UUID) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		WHERE workspace_id = $1 AND id = ANY($2)
		ORDER BY date, created_at`,
		workspaceID, ids)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

// GetAll retrieves the full ledger of a workspace ordered by date
func (r *TransactionRepository) GetAll(ctx context.Context, workspaceID int32) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		WHERE workspace_id = $1
		ORDER BY date, created_at`,
		workspaceID)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

// List retrieves transactions matching filters, newest first
func (r *TransactionRepository) List(ctx context.Context, workspaceID int32, filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	conditions := []string{"workspace_id = $1"}
	args := []any{workspaceID}
	add := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filters != nil {
		if filters.StartDate != nil {
			add("date >= $%d::date", *filters.StartDate)
		}
		if filters.EndDate != nil {
			add("date <= $%d::date", *filters.EndDate)
		}
		if filters.Category != nil {
			add("category = $%d", *filters.Category)
		}
		if filters.Account != nil {
			add("account = $%d", *filters.Account)
		}
		if filters.Type != nil {
			add("type = $%d", string(*filters.Type))
		}
		if filters.CardID != nil {
			add("card_id = $%d", *filters.CardID)
		}
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		WHERE `+strings.Join(conditions, " AND ")+`
		ORDER BY date DESC, created_at DESC`,
		args...)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

// Update applies update to a stored transaction and returns the result
func (r *TransactionRepository) Update(ctx context.Context, workspaceID int32, id uuid.UUID, update *domain.TransactionUpdate) (*domain.Transaction, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	current, err := scanTransaction(tx.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE workspace_id = $1 AND id = $2 FOR UPDATE`,
		workspaceID, id))
	if err != nil {
		return nil, notFound(err, domain.ErrTransactionNotFound)
	}
	update.Apply(current)

	amount, err := decimalToPgNumeric(current.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	date, err := dateKeyToPgDate(&current.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}
	endDate, err := dateKeyToPgDate(current.RecurrenceEndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid recurrence end date: %w", err)
	}

	updated, err := scanTransaction(tx.QueryRow(ctx,
		`UPDATE transactions SET
			description = $3, amount = $4, date = $5, type = $6, nature = $7,
			category = $8, account = $9, tags = $10, is_paid = $11, card_id = $12,
			is_recurring = $13, frequency = $14, recurrence_end_date = $15,
			updated_at = NOW()
		WHERE workspace_id = $1 AND id = $2
		RETURNING `+transactionColumns,
		workspaceID, id,
		current.Description, amount, date, string(current.Type), string(current.Nature),
		current.Category, current.Account, tagsOrEmpty(current.Tags), current.IsPaid, uuidToPg(current.CardID),
		current.IsRecurring, frequencyToPg(current.Frequency), endDate,
	))
	if err != nil {
		return nil, notFound(err, domain.ErrTransactionNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a transaction
func (r *TransactionRepository) Delete(ctx context.Context, workspaceID int32, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM transactions WHERE workspace_id = $1 AND id = $2`,
		workspaceID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// MarkPaid flags ids as paid and returns how many rows changed
func (r *TransactionRepository) MarkPaid(ctx context.Context, workspaceID int32, ids []uuid.UUID) (int64, error) {
	return markPaid(ctx, r.pool, workspaceID, ids)
}

// SettleInvoice marks the invoice members paid and records the settlement
// expense in one database transaction
func (r *TransactionRepository) SettleInvoice(ctx context.Context, workspaceID int32, ids []uuid.UUID, settlement *domain.Transaction) (*domain.Transaction, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := markPaid(ctx, tx, workspaceID, ids); err != nil {
		return nil, err
	}
	created, err := insertTransactions(ctx, tx, []*domain.Transaction{settlement})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created[0], nil
}

// SetAttachment stores the attachment location of a transaction
func (r *TransactionRepository) SetAttachment(ctx context.Context, workspaceID int32, id uuid.UUID, url string) (*domain.Transaction, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE transactions SET attachment_url = $3, updated_at = NOW()
		WHERE workspace_id = $1 AND id = $2
		RETURNING `+transactionColumns,
		workspaceID, id, url)
	t, err := scanTransaction(row)
	if err != nil {
		return nil, notFound(err, domain.ErrTransactionNotFound)
	}
	return t, nil
}

func markPaid(ctx context.Context, db DBTX, workspaceID int32, ids []uuid.UUID) (int64, error) {
	tag, err := db.Exec(ctx,
		`UPDATE transactions SET is_paid = TRUE, updated_at = NOW()
		WHERE workspace_id = $1 AND id = ANY($2)`,
		workspaceID, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func insertTransactions(ctx context.Context, db DBTX, transactions []*domain.Transaction) ([]*domain.Transaction, error) {
	created := make([]*domain.Transaction, 0, len(transactions))
	for _, t := range transactions {
		amount, err := decimalToPgNumeric(t.Amount)
		if err != nil {
			return nil, fmt.Errorf("invalid amount: %w", err)
		}
		date, err := dateKeyToPgDate(&t.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid date: %w", err)
		}
		endDate, err := dateKeyToPgDate(t.RecurrenceEndDate)
		if err != nil {
			return nil, fmt.Errorf("invalid recurrence end date: %w", err)
		}

		id := t.ID
		if id == uuid.Nil {
			id = uuid.New()
		}

		row := db.QueryRow(ctx,
			`INSERT INTO transactions (
				id, workspace_id, description, amount, date, type, nature, category, account,
				tags, attachment_url, is_recurring, frequency, recurrence_end_date, recurrence_parent_id,
				card_id, transaction_group_id, is_paid, installment_current, installment_total, goal_id
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
			RETURNING `+transactionColumns,
			id, t.WorkspaceID, t.Description, amount, date, string(t.Type), string(t.Nature), t.Category, t.Account,
			tagsOrEmpty(t.Tags), optionalStringToPg(t.AttachmentURL), t.IsRecurring, frequencyToPg(t.Frequency), endDate,
			uuidToPg(t.RecurrenceParentID), uuidToPg(t.CardID), uuidToPg(t.TransactionGroupID), t.IsPaid,
			optionalInt32ToPg(t.InstallmentCurrent), optionalInt32ToPg(t.InstallmentTotal), uuidToPg(t.GoalID),
		)
		stored, err := scanTransaction(row)
		if err != nil {
			return nil, err
		}
		created = append(created, stored)
	}
	return created, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		t                  domain.Transaction
		amount             pgtype.Numeric
		date               pgtype.Date
		txType             string
		nature             string
		attachmentURL      pgtype.Text
		frequency          pgtype.Text
		recurrenceEndDate  pgtype.Date
		recurrenceParentID pgtype.UUID
		cardID             pgtype.UUID
		groupID            pgtype.UUID
		installmentCurrent pgtype.Int4
		installmentTotal   pgtype.Int4
		goalID             pgtype.UUID
	)
	err := row.Scan(
		&t.ID, &t.WorkspaceID, &t.Description, &amount, &date, &txType, &nature, &t.Category, &t.Account,
		&t.Tags, &attachmentURL, &t.IsRecurring, &frequency, &recurrenceEndDate, &recurrenceParentID,
		&cardID, &groupID, &t.IsPaid, &installmentCurrent, &installmentTotal, &goalID,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Amount = pgNumericToDecimal(amount)
	t.Date = pgDateToDateKey(date)
	t.Type = domain.TransactionType(txType)
	t.Nature = domain.TransactionNature(nature)
	if t.Tags == nil {
		t.Tags = []string{}
	}
	t.AttachmentURL = pgToOptionalString(attachmentURL)
	if frequency.Valid {
		f := domain.Frequency(frequency.String)
		t.Frequency = &f
	}
	t.RecurrenceEndDate = pgDateToOptionalDateKey(recurrenceEndDate)
	t.RecurrenceParentID = pgToOptionalUUID(recurrenceParentID)
	t.CardID = pgToOptionalUUID(cardID)
	t.TransactionGroupID = pgToOptionalUUID(groupID)
	t.InstallmentCurrent = pgToOptionalInt32(installmentCurrent)
	t.InstallmentTotal = pgToOptionalInt32(installmentTotal)
	t.GoalID = pgToOptionalUUID(goalID)
	return &t, nil
}

func collectTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	defer rows.Close()
	result := make([]*domain.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func frequencyToPg(f *domain.Frequency) pgtype.Text {
	if f == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: string(*f), Valid: true}
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
