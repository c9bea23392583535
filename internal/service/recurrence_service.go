package service

import (
	"context"
	"fmt"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/dafibh/finora/finora-backend/internal/metrics"
	"github.com/dafibh/finora/finora-backend/internal/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultRecurrenceHorizon is the number of months, starting with the
	// current one, that monthly templates are materialized for
	DefaultRecurrenceHorizon = 12
)

// RecurrenceService materializes monthly occurrences of recurring templates
type RecurrenceService struct {
	transactionRepo domain.TransactionRepository
	closures        *ClosureService
	clock           domain.Clock
	logger          zerolog.Logger
	horizon         int
}

// NewRecurrenceService creates a new RecurrenceService
func NewRecurrenceService(
	transactionRepo domain.TransactionRepository,
	closures *ClosureService,
	clock domain.Clock,
	logger zerolog.Logger,
	horizon int,
) *RecurrenceService {
	if horizon <= 0 {
		horizon = DefaultRecurrenceHorizon
	}
	return &RecurrenceService{
		transactionRepo: transactionRepo,
		closures:        closures,
		clock:           clock,
		logger:          logger.With().Str("component", "recurrence").Logger(),
		horizon:         horizon,
	}
}

// RecurrenceResult holds the result of one generation pass
type RecurrenceResult struct {
	Generated int                   `json:"generated"`
	Skipped   int                   `json:"skipped"`
	Errors    []string              `json:"errors,omitempty"`
	Created   []*domain.Transaction `json:"created,omitempty"`
}

// occurrenceIndex records which (template, month) pairs already have an
// occurrence. It is fed from stored rows and from rows created in this pass.
type occurrenceIndex map[uuid.UUID]map[string]bool

func (idx occurrenceIndex) add(tx *domain.Transaction) {
	if tx.RecurrenceParentID == nil || len(tx.Date) < 7 {
		return
	}
	months, ok := idx[*tx.RecurrenceParentID]
	if !ok {
		months = make(map[string]bool)
		idx[*tx.RecurrenceParentID] = months
	}
	months[tx.Date[:7]] = true
}

func (idx occurrenceIndex) has(parentID uuid.UUID, year, month int) bool {
	return idx[parentID][fmt.Sprintf("%04d-%02d", year, month)]
}

// Generate loads the ledger and fills in missing occurrences
func (s *RecurrenceService) Generate(ctx context.Context, workspaceID int32) (*RecurrenceResult, error) {
	existing, err := s.transactionRepo.GetAll(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return s.GenerateFrom(ctx, workspaceID, existing), nil
}

// GenerateFrom fills in missing occurrences given an already loaded ledger.
// A failure to create one occurrence is logged and recorded in the result;
// the pass continues with the remaining months and templates.
func (s *RecurrenceService) GenerateFrom(ctx context.Context, workspaceID int32, existing []*domain.Transaction) *RecurrenceResult {
	result := &RecurrenceResult{
		Errors:  make([]string, 0),
		Created: make([]*domain.Transaction, 0),
	}

	index := make(occurrenceIndex)
	for _, tx := range existing {
		index.add(tx)
	}

	now := s.clock.Now()
	currentYear, currentMonth := now.Year(), int(now.Month())

	for _, template := range existing {
		if !template.IsTemplate() {
			continue
		}
		if template.Frequency != nil && *template.Frequency != domain.FrequencyMonthly {
			continue
		}
		s.generateForTemplate(ctx, workspaceID, template, currentYear, currentMonth, index, result)
	}

	if result.Generated > 0 || len(result.Errors) > 0 {
		s.logger.Info().
			Int32("workspace_id", workspaceID).
			Int("generated", result.Generated).
			Int("skipped", result.Skipped).
			Int("errors", len(result.Errors)).
			Msg("Recurrence pass completed")
	}
	return result
}

func (s *RecurrenceService) generateForTemplate(
	ctx context.Context,
	workspaceID int32,
	template *domain.Transaction,
	currentYear, currentMonth int,
	index occurrenceIndex,
	result *RecurrenceResult,
) {
	_, _, dueDay, err := util.SplitDateKey(template.Date)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("template %s: %v", template.ID, err))
		return
	}

	for offset := 0; offset < s.horizon; offset++ {
		year, month := util.ShiftMonth(currentYear, currentMonth, offset)
		target := util.ClampedDateKey(year, month, dueDay)

		if target <= template.Date {
			continue
		}
		if template.RecurrenceEndDate != nil && target > *template.RecurrenceEndDate {
			continue
		}
		if index.has(template.ID, year, month) {
			result.Skipped++
			continue
		}

		occurrence := newOccurrence(template, target)
		created, err := s.createOccurrence(ctx, workspaceID, occurrence)
		if err != nil {
			metrics.RecurrenceFailures.Inc()
			s.logger.Error().
				Err(err).
				Int32("workspace_id", workspaceID).
				Str("template_id", template.ID.String()).
				Str("date", target).
				Msg("Failed to create recurring occurrence")
			result.Errors = append(result.Errors, fmt.Sprintf("template %s at %s: %v", template.ID, target, err))
			continue
		}

		index.add(created)
		result.Created = append(result.Created, created)
		result.Generated++
		metrics.RecurrencesGenerated.Inc()
	}
}

func (s *RecurrenceService) createOccurrence(ctx context.Context, workspaceID int32, occurrence *domain.Transaction) (*domain.Transaction, error) {
	if err := s.closures.EnsureOpen(ctx, workspaceID, occurrence.Date); err != nil {
		return nil, err
	}
	created, err := s.transactionRepo.Create(ctx, []*domain.Transaction{occurrence})
	if err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("store returned no rows")
	}
	return created[0], nil
}

func newOccurrence(template *domain.Transaction, date string) *domain.Transaction {
	parentID := template.ID
	tags := make([]string, 0, len(template.Tags)+1)
	tags = append(tags, template.Tags...)
	tags = append(tags, domain.TagAutoRecurring)

	return &domain.Transaction{
		WorkspaceID:        template.WorkspaceID,
		Description:        template.Description,
		Amount:             template.Amount,
		Date:               date,
		Type:               template.Type,
		Nature:             domain.NatureFixed,
		Category:           template.Category,
		Account:            template.Account,
		Tags:               tags,
		IsRecurring:        false,
		RecurrenceParentID: &parentID,
		IsPaid:             true,
	}
}
