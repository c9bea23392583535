package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/dafibh/finora/finora-backend/internal/util"
	"github.com/dafibh/finora/finora-backend/internal/websocket"
)

// ClosureService locks and unlocks calendar months for ledger writes
type ClosureService struct {
	closureRepo    domain.ClosureRepository
	eventPublisher websocket.EventPublisher
}

// NewClosureService creates a new ClosureService
func NewClosureService(closureRepo domain.ClosureRepository) *ClosureService {
	return &ClosureService{
		closureRepo: closureRepo,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *ClosureService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func validateYearMonth(year, month int) error {
	if year < 2000 || year > 2100 {
		return fmt.Errorf("year %d out of range: %w", year, domain.ErrInvalidInput)
	}
	if month < 1 || month > 12 {
		return fmt.Errorf("month %d out of range: %w", month, domain.ErrInvalidInput)
	}
	return nil
}

// Get returns the closure state of a month. A month never toggled is open.
func (s *ClosureService) Get(ctx context.Context, workspaceID int32, year, month int) (*domain.MonthlyClosure, error) {
	if err := validateYearMonth(year, month); err != nil {
		return nil, err
	}

	closure, err := s.closureRepo.Get(ctx, workspaceID, year, month)
	if err != nil {
		if errors.Is(err, domain.ErrClosureNotFound) {
			return &domain.MonthlyClosure{WorkspaceID: workspaceID, Year: year, Month: month}, nil
		}
		return nil, err
	}
	return closure, nil
}

// List returns every month that has ever been toggled
func (s *ClosureService) List(ctx context.Context, workspaceID int32) ([]*domain.MonthlyClosure, error) {
	return s.closureRepo.GetAll(ctx, workspaceID)
}

// Toggle closes or reopens a month
func (s *ClosureService) Toggle(ctx context.Context, workspaceID int32, year, month int, closed bool) (*domain.MonthlyClosure, error) {
	if err := validateYearMonth(year, month); err != nil {
		return nil, err
	}
	closure, err := s.closureRepo.Upsert(ctx, workspaceID, year, month, closed)
	if err != nil {
		return nil, err
	}
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(workspaceID, websocket.ClosureToggled(closure))
	}
	return closure, nil
}

// EnsureOpen returns an error wrapping domain.ErrPeriodLocked when the month
// containing dateKey is closed.
func (s *ClosureService) EnsureOpen(ctx context.Context, workspaceID int32, dateKey string) error {
	year, month, _, err := util.SplitDateKey(dateKey)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidDate, err)
	}

	closure, err := s.closureRepo.Get(ctx, workspaceID, year, month)
	if err != nil {
		if errors.Is(err, domain.ErrClosureNotFound) {
			return nil
		}
		return fmt.Errorf("check closure: %w", err)
	}
	if closure.IsClosed {
		return fmt.Errorf("%s %d is closed, reopen it to make changes: %w", time.Month(month), year, domain.ErrPeriodLocked)
	}
	return nil
}
