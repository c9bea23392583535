package service

import (
	"context"
	"testing"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/dafibh/finora/finora-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardService_Create(t *testing.T) {
	cardRepo := testutil.NewMockCardRepository()
	svc := NewCardService(cardRepo)

	card, err := svc.Create(context.Background(), testWorkspaceID, &domain.CreditCard{
		Name:       "  Nubank ",
		Limit:      decimal.NewFromInt(5000),
		ClosingDay: 10,
		DueDay:     17,
	})
	require.NoError(t, err)
	assert.Equal(t, "Nubank", card.Name)
	assert.Equal(t, testWorkspaceID, card.WorkspaceID)
	assert.NotEmpty(t, card.Color)
	assert.NotEqual(t, uuid.Nil, card.ID)
}

func TestCardService_CreateValidation(t *testing.T) {
	tests := []struct {
		name string
		card domain.CreditCard
		want error
	}{
		{"empty name", domain.CreditCard{Name: " ", ClosingDay: 10, DueDay: 17}, domain.ErrCardNameRequired},
		{"negative limit", domain.CreditCard{Name: "X", Limit: decimal.NewFromInt(-1), ClosingDay: 10, DueDay: 17}, domain.ErrCardLimitInvalid},
		{"closing day 29", domain.CreditCard{Name: "X", ClosingDay: 29, DueDay: 17}, domain.ErrClosingDayInvalid},
		{"due day 0", domain.CreditCard{Name: "X", ClosingDay: 10, DueDay: 0}, domain.ErrDueDayInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cardRepo := testutil.NewMockCardRepository()
			svc := NewCardService(cardRepo)
			card := tt.card

			_, err := svc.Create(context.Background(), testWorkspaceID, &card)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, cardRepo.Cards)
		})
	}
}

func TestCardService_UpdateAndDelete(t *testing.T) {
	cardRepo := testutil.NewMockCardRepository()
	svc := NewCardService(cardRepo)
	card := cardRepo.AddCard(&domain.CreditCard{WorkspaceID: testWorkspaceID, Name: "Nubank", ClosingDay: 10, DueDay: 17})

	updated, err := svc.Update(context.Background(), testWorkspaceID, card.ID, &domain.CreditCard{Name: "Nubank Ultravioleta", ClosingDay: 5, DueDay: 12})
	require.NoError(t, err)
	assert.Equal(t, card.ID, updated.ID)
	assert.Equal(t, int32(5), updated.ClosingDay)

	_, err = svc.Update(context.Background(), 2, card.ID, &domain.CreditCard{Name: "Outro", ClosingDay: 5, DueDay: 12})
	assert.ErrorIs(t, err, domain.ErrCardNotFound)

	require.NoError(t, svc.Delete(context.Background(), testWorkspaceID, card.ID))
	cards, err := svc.GetAll(context.Background(), testWorkspaceID)
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestReportService_PassesThroughViews(t *testing.T) {
	flows := &testutil.MockFlowViewRepository{
		Daily: []*domain.DailyFlow{
			{Date: "2024-03-01", TotalIn: decimal.NewFromInt(100), DayBalance: decimal.NewFromInt(100), CumulativeBalance: decimal.NewFromInt(100)},
		},
		Semiannual: []*domain.SemiannualFlow{{Year: 2024, Half: 1, TotalIn: decimal.NewFromInt(100), Net: decimal.NewFromInt(100)}},
	}
	svc := NewReportService(flows)

	daily, err := svc.GetDailyFlow(context.Background(), testWorkspaceID)
	require.NoError(t, err)
	assert.Len(t, daily, 1)

	halves, err := svc.GetSemiannualFlow(context.Background(), testWorkspaceID)
	require.NoError(t, err)
	assert.Equal(t, 1, halves[0].Half)

	flows.Err = assert.AnError
	_, err = svc.GetDailyFlow(context.Background(), testWorkspaceID)
	assert.ErrorIs(t, err, assert.AnError)
}
