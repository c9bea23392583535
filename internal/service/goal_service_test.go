package service

import (
	"context"
	"testing"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/dafibh/finora/finora-backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupGoalService(today string) (*GoalService, *testutil.MockGoalRepository, *testutil.MockTransactionRepository, *testutil.MockClosureRepository) {
	goalRepo := testutil.NewMockGoalRepository()
	txRepo := testutil.NewMockTransactionRepository()
	closureRepo := testutil.NewMockClosureRepository()
	transactions := NewTransactionService(txRepo, testutil.NewMockCardRepository(), NewClosureService(closureRepo))
	svc := NewGoalService(goalRepo, transactions, testutil.NewFixedClock(today))
	return svc, goalRepo, txRepo, closureRepo
}

func autoGoal(name string, target, auto int64, day int32) *domain.Goal {
	amount := decimal.NewFromInt(auto)
	return &domain.Goal{
		WorkspaceID:            testWorkspaceID,
		Name:                   name,
		TargetAmount:           decimal.NewFromInt(target),
		CurrentAmount:          decimal.Zero,
		TargetAccount:          domain.CategoryInvestment,
		AutoContributionAmount: &amount,
		AutoContributionDay:    &day,
		Status:                 domain.GoalActive,
	}
}

func TestGoalService_CreateDefaults(t *testing.T) {
	svc, _, _, _ := setupGoalService("2024-03-15")

	goal, err := svc.Create(context.Background(), testWorkspaceID, &domain.Goal{Name: "Viagem", TargetAmount: decimal.NewFromInt(5000)})
	require.NoError(t, err)
	assert.Equal(t, domain.GoalActive, goal.Status)
	assert.Equal(t, domain.PriorityMedium, goal.Priority)
	assert.Equal(t, domain.CategoryInvestment, goal.TargetAccount)
	assert.Equal(t, "#10b981", goal.Color)

	_, err = svc.Create(context.Background(), testWorkspaceID, &domain.Goal{Name: "X", TargetAmount: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrGoalTargetInvalid)
}

func TestGoalService_Contribute(t *testing.T) {
	svc, goalRepo, txRepo, _ := setupGoalService("2024-03-15")
	publisher := &testutil.MockEventPublisher{}
	svc.SetEventPublisher(publisher)
	goal := goalRepo.AddGoal(&domain.Goal{
		WorkspaceID:   testWorkspaceID,
		Name:          "Viagem",
		TargetAmount:  decimal.NewFromInt(100),
		CurrentAmount: decimal.NewFromInt(60),
		TargetAccount: domain.CategoryInvestment,
		Status:        domain.GoalActive,
	})

	updated, err := svc.Contribute(context.Background(), testWorkspaceID, goal.ID, decimal.NewFromInt(40), "")
	require.NoError(t, err)
	assert.True(t, updated.CurrentAmount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, domain.GoalCompleted, updated.Status)

	txs, err := txRepo.GetAll(context.Background(), testWorkspaceID)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	for _, tx := range txs {
		assert.Equal(t, "Aporte: Viagem", tx.Description)
		assert.Equal(t, "2024-03-15", tx.Date)
		assert.True(t, tx.HasTag(domain.GoalTag(goal.ID)))
		assert.Equal(t, goal.ID, *tx.GoalID)
	}
	assert.Equal(t, domain.DefaultAccount, txs[0].Account)
	assert.Equal(t, domain.CategoryInvestment, txs[1].Account)
	assert.Contains(t, publisher.Types(), "goal.updated")
}

func TestGoalService_ContributeInvalid(t *testing.T) {
	svc, goalRepo, txRepo, closureRepo := setupGoalService("2024-03-15")
	goal := goalRepo.AddGoal(autoGoal("Viagem", 100, 10, 5))

	_, err := svc.Contribute(context.Background(), testWorkspaceID, goal.ID, decimal.Zero, "")
	assert.ErrorIs(t, err, domain.ErrGoalContributionInvalid)

	closureRepo.Close(testWorkspaceID, 2024, 3)
	_, err = svc.Contribute(context.Background(), testWorkspaceID, goal.ID, decimal.NewFromInt(10), "")
	assert.ErrorIs(t, err, domain.ErrPeriodLocked)

	stored, err := goalRepo.GetByID(context.Background(), testWorkspaceID, goal.ID)
	require.NoError(t, err)
	assert.True(t, stored.CurrentAmount.IsZero())
	assert.Equal(t, 0, txRepo.Count(testWorkspaceID))
}

func TestGoalService_AutoContribute(t *testing.T) {
	svc, goalRepo, txRepo, _ := setupGoalService("2024-03-15")
	due := goalRepo.AddGoal(autoGoal("Reserva", 10000, 200, 10))
	notYet := goalRepo.AddGoal(autoGoal("Carro", 10000, 300, 20))
	paused := autoGoal("Casa", 10000, 300, 1)
	paused.Status = domain.GoalPaused
	goalRepo.AddGoal(paused)
	goalRepo.AddGoal(&domain.Goal{WorkspaceID: testWorkspaceID, Name: "Manual", TargetAmount: decimal.NewFromInt(10), Status: domain.GoalActive})

	goals, err := goalRepo.GetAll(context.Background(), testWorkspaceID)
	require.NoError(t, err)

	result := svc.AutoContribute(context.Background(), testWorkspaceID, goals, nil)
	assert.Equal(t, 1, result.Contributed)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Created, 2)
	assert.Equal(t, "Aporte Automático: Reserva", result.Created[0].Description)
	assert.True(t, result.Created[0].HasTag(domain.TagAuto))
	assert.Equal(t, domain.NatureFixed, result.Created[0].Nature)

	stored, err := goalRepo.GetByID(context.Background(), testWorkspaceID, due.ID)
	require.NoError(t, err)
	assert.True(t, stored.CurrentAmount.Equal(decimal.NewFromInt(200)))

	untouched, err := goalRepo.GetByID(context.Background(), testWorkspaceID, notYet.ID)
	require.NoError(t, err)
	assert.True(t, untouched.CurrentAmount.IsZero())

	// Second pass in the same month sees the tagged transfer and does nothing
	ledger, err := txRepo.GetAll(context.Background(), testWorkspaceID)
	require.NoError(t, err)
	goals, err = goalRepo.GetAll(context.Background(), testWorkspaceID)
	require.NoError(t, err)
	again := svc.AutoContribute(context.Background(), testWorkspaceID, goals, ledger)
	assert.Equal(t, 0, again.Contributed)
	assert.Equal(t, 2, txRepo.Count(testWorkspaceID))
}

func TestGoalService_AutoContributeProgressFailure(t *testing.T) {
	svc, goalRepo, _, _ := setupGoalService("2024-03-15")
	goalRepo.AddGoal(autoGoal("Reserva", 10000, 200, 10))
	goalRepo.UpdateProgressErr = assert.AnError

	goals, err := goalRepo.GetAll(context.Background(), testWorkspaceID)
	require.NoError(t, err)

	result := svc.AutoContribute(context.Background(), testWorkspaceID, goals, nil)
	assert.Equal(t, 0, result.Contributed)
	assert.Len(t, result.Errors, 1)
	assert.Len(t, result.Created, 2)
}
