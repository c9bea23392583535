package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrClosureNotFound = errors.New("monthly closure not found")

// MonthlyClosure locks a calendar month against ledger writes. Month is 1-based.
type MonthlyClosure struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID int32     `json:"workspaceId"`
	Month       int       `json:"month"`
	Year        int       `json:"year"`
	IsClosed    bool      `json:"isClosed"`
	ClosedAt    time.Time `json:"closedAt"`
}

type ClosureRepository interface {
	Get(ctx context.Context, workspaceID int32, year, month int) (*MonthlyClosure, error)
	Upsert(ctx context.Context, workspaceID int32, year, month int, isClosed bool) (*MonthlyClosure, error)
	GetAll(ctx context.Context, workspaceID int32) ([]*MonthlyClosure, error)
}
