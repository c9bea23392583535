package service

import (
	"context"
	"testing"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/dafibh/finora/finora-backend/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRecurrenceService(today string, horizon int) (*RecurrenceService, *testutil.MockTransactionRepository, *testutil.MockClosureRepository) {
	txRepo := testutil.NewMockTransactionRepository()
	closureRepo := testutil.NewMockClosureRepository()
	svc := NewRecurrenceService(txRepo, NewClosureService(closureRepo), testutil.NewFixedClock(today), zerolog.Nop(), horizon)
	return svc, txRepo, closureRepo
}

func addTemplate(repo *testutil.MockTransactionRepository, date string, endDate *string) *domain.Transaction {
	freq := domain.FrequencyMonthly
	return repo.AddTransaction(&domain.Transaction{
		WorkspaceID:       testWorkspaceID,
		Description:       "Aluguel",
		Amount:            decimal.NewFromInt(1500),
		Date:              date,
		Type:              domain.TransactionTypeExpense,
		Nature:            domain.NatureFixed,
		Category:          "Aluguel",
		Account:           "Nubank",
		Tags:              []string{"casa"},
		IsRecurring:       true,
		Frequency:         &freq,
		RecurrenceEndDate: endDate,
		IsPaid:            true,
	})
}

func TestRecurrence_GeneratesClampedOccurrences(t *testing.T) {
	svc, txRepo, _ := setupRecurrenceService("2024-03-15", 3)
	template := addTemplate(txRepo, "2024-01-31", nil)

	result, err := svc.Generate(context.Background(), testWorkspaceID)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Generated)
	assert.Empty(t, result.Errors)

	dates := make([]string, 0, len(result.Created))
	for _, occ := range result.Created {
		dates = append(dates, occ.Date)
		assert.Equal(t, template.ID, *occ.RecurrenceParentID)
		assert.False(t, occ.IsRecurring)
		assert.True(t, occ.HasTag(domain.TagAutoRecurring))
		assert.True(t, occ.HasTag("casa"))
		assert.Equal(t, "Nubank", occ.Account)
		assert.True(t, occ.Amount.Equal(template.Amount))
	}
	assert.Equal(t, []string{"2024-03-31", "2024-04-30", "2024-05-31"}, dates)
}

func TestRecurrence_Idempotent(t *testing.T) {
	svc, txRepo, _ := setupRecurrenceService("2024-03-15", 3)
	addTemplate(txRepo, "2024-01-05", nil)

	first, err := svc.Generate(context.Background(), testWorkspaceID)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Generated)

	second, err := svc.Generate(context.Background(), testWorkspaceID)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Generated)
	assert.Equal(t, 3, second.Skipped)
	assert.Equal(t, 4, txRepo.Count(testWorkspaceID))
}

func TestRecurrence_RespectsEndDateAndTemplateDate(t *testing.T) {
	svc, txRepo, _ := setupRecurrenceService("2024-03-15", 3)
	end := "2024-04-15"
	addTemplate(txRepo, "2024-01-10", &end)
	addTemplate(txRepo, "2024-04-10", nil)

	result, err := svc.Generate(context.Background(), testWorkspaceID)
	require.NoError(t, err)

	dates := make([]string, 0)
	for _, occ := range result.Created {
		dates = append(dates, occ.Date)
	}
	assert.ElementsMatch(t, []string{"2024-03-10", "2024-04-10", "2024-05-10"}, dates)
}

func TestRecurrence_SkipsNonMonthlyAndOccurrences(t *testing.T) {
	svc, txRepo, _ := setupRecurrenceService("2024-03-15", 2)
	weekly := domain.FrequencyWeekly
	txRepo.AddTransaction(&domain.Transaction{
		WorkspaceID: testWorkspaceID,
		Date:        "2024-01-01",
		IsRecurring: true,
		Frequency:   &weekly,
	})

	result, err := svc.Generate(context.Background(), testWorkspaceID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Generated)
}

func TestRecurrence_ClosedMonthIsReportedAndSkipped(t *testing.T) {
	svc, txRepo, closureRepo := setupRecurrenceService("2024-03-15", 3)
	closureRepo.Close(testWorkspaceID, 2024, 4)
	addTemplate(txRepo, "2024-01-05", nil)

	result, err := svc.Generate(context.Background(), testWorkspaceID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Generated)
	assert.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "2024-04-05")
}

func TestRecurrence_StoreFailureContinues(t *testing.T) {
	svc, txRepo, _ := setupRecurrenceService("2024-03-15", 3)
	addTemplate(txRepo, "2024-01-05", nil)
	txRepo.FailCreate = func(tx *domain.Transaction) error {
		if tx.Date == "2024-03-05" {
			return assert.AnError
		}
		return nil
	}

	result, err := svc.Generate(context.Background(), testWorkspaceID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Generated)
	assert.Len(t, result.Errors, 1)
}

func TestRecurrence_LoadError(t *testing.T) {
	svc, txRepo, _ := setupRecurrenceService("2024-03-15", 3)
	txRepo.GetAllErr = assert.AnError

	_, err := svc.Generate(context.Background(), testWorkspaceID)
	assert.ErrorIs(t, err, assert.AnError)
}
