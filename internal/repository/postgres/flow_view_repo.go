package postgres

import (
	"context"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FlowViewRepository reads the aggregated cash flow views
type FlowViewRepository struct {
	pool *pgxpool.Pool
}

// NewFlowViewRepository creates a new FlowViewRepository
func NewFlowViewRepository(pool *pgxpool.Pool) *FlowViewRepository {
	return &FlowViewRepository{pool: pool}
}

// GetDailyFlow returns one row per day with card purchases excluded
func (r *FlowViewRepository) GetDailyFlow(ctx context.Context, workspaceID int32) ([]*domain.DailyFlow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT date, total_in, total_out, day_balance, cumulative_balance
		FROM daily_flow_view WHERE workspace_id = $1 ORDER BY date`,
		workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.DailyFlow, 0)
	for rows.Next() {
		var (
			date                                  pgtype.Date
			totalIn, totalOut, balance, cumulated pgtype.Numeric
		)
		if err := rows.Scan(&date, &totalIn, &totalOut, &balance, &cumulated); err != nil {
			return nil, err
		}
		result = append(result, &domain.DailyFlow{
			Date:              pgDateToDateKey(date),
			TotalIn:           pgNumericToDecimal(totalIn),
			TotalOut:          pgNumericToDecimal(totalOut),
			DayBalance:        pgNumericToDecimal(balance),
			CumulativeBalance: pgNumericToDecimal(cumulated),
		})
	}
	return result, rows.Err()
}

// GetSemiannualFlow returns one row per half year
func (r *FlowViewRepository) GetSemiannualFlow(ctx context.Context, workspaceID int32) ([]*domain.SemiannualFlow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT year, half, total_in, total_out, net
		FROM semiannual_flow_view WHERE workspace_id = $1 ORDER BY year, half`,
		workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.SemiannualFlow, 0)
	for rows.Next() {
		var (
			year, half             int32
			totalIn, totalOut, net pgtype.Numeric
		)
		if err := rows.Scan(&year, &half, &totalIn, &totalOut, &net); err != nil {
			return nil, err
		}
		result = append(result, &domain.SemiannualFlow{
			Year:     int(year),
			Half:     int(half),
			TotalIn:  pgNumericToDecimal(totalIn),
			TotalOut: pgNumericToDecimal(totalOut),
			Net:      pgNumericToDecimal(net),
		})
	}
	return result, rows.Err()
}
