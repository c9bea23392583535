package service

import (
	"context"

	"github.com/dafibh/finora/finora-backend/internal/domain"
)

// ReportService exposes the storage-side flow views
type ReportService struct {
	flowRepo domain.FlowViewRepository
}

// NewReportService creates a new ReportService
func NewReportService(flowRepo domain.FlowViewRepository) *ReportService {
	return &ReportService{flowRepo: flowRepo}
}

// GetDailyFlow returns per-day totals with the running cash balance
func (s *ReportService) GetDailyFlow(ctx context.Context, workspaceID int32) ([]*domain.DailyFlow, error) {
	return s.flowRepo.GetDailyFlow(ctx, workspaceID)
}

// GetSemiannualFlow returns half-year totals, most recent first
func (s *ReportService) GetSemiannualFlow(ctx context.Context, workspaceID int32) ([]*domain.SemiannualFlow, error) {
	return s.flowRepo.GetSemiannualFlow(ctx, workspaceID)
}
