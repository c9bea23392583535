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

func setupInvoiceService(today string) (*InvoiceService, *testutil.MockTransactionRepository, *testutil.MockCardRepository, *testutil.MockClosureRepository) {
	txRepo := testutil.NewMockTransactionRepository()
	cardRepo := testutil.NewMockCardRepository()
	closureRepo := testutil.NewMockClosureRepository()
	svc := NewInvoiceService(txRepo, cardRepo, NewClosureService(closureRepo), testutil.NewFixedClock(today))
	return svc, txRepo, cardRepo, closureRepo
}

func addCardPurchase(repo *testutil.MockTransactionRepository, card *domain.CreditCard, date, amount string, paid bool) *domain.Transaction {
	cardID := card.ID
	return repo.AddTransaction(&domain.Transaction{
		WorkspaceID: card.WorkspaceID,
		Description: "Compra " + date,
		Amount:      decimal.RequireFromString(amount),
		Date:        date,
		Type:        domain.TransactionTypeExpense,
		Account:     domain.DefaultAccount,
		CardID:      &cardID,
		IsPaid:      paid,
	})
}

func TestInvoicePeriod_ClosingDayBoundary(t *testing.T) {
	tests := []struct {
		date      string
		wantYear  int
		wantMonth int
	}{
		{"2024-03-09", 2024, 3},
		{"2024-03-10", 2024, 4},
		{"2024-03-31", 2024, 4},
		{"2024-12-15", 2025, 1},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			year, month, err := InvoicePeriod(tt.date, 10)
			require.NoError(t, err)
			assert.Equal(t, tt.wantYear, year)
			assert.Equal(t, tt.wantMonth, month)
		})
	}
}

func TestSplitInstallments_SumsToTotal(t *testing.T) {
	totals := []string{"100", "0.05", "999.99", "10"}
	for _, raw := range totals {
		total := decimal.RequireFromString(raw)
		for count := 1; count <= 12; count++ {
			parts := SplitInstallments(total, count)
			require.Len(t, parts, count)
			sum := decimal.Zero
			for _, p := range parts {
				sum = sum.Add(p)
			}
			assert.True(t, sum.Equal(total), "total %s split %d ways sums to %s", raw, count, sum)
		}
	}
	assert.Nil(t, SplitInstallments(decimal.NewFromInt(10), 0))
}

func TestGroupInvoices(t *testing.T) {
	txRepo := testutil.NewMockTransactionRepository()
	card := &domain.CreditCard{ID: uuid.New(), WorkspaceID: testWorkspaceID, ClosingDay: 10, DueDay: 17}
	other := &domain.CreditCard{ID: uuid.New(), WorkspaceID: testWorkspaceID, ClosingDay: 10, DueDay: 17}

	addCardPurchase(txRepo, card, "2024-03-02", "50", true)
	addCardPurchase(txRepo, card, "2024-03-09", "25", false)
	addCardPurchase(txRepo, card, "2024-03-10", "40", true)
	addCardPurchase(txRepo, other, "2024-03-02", "999", false)

	invoices := GroupInvoices(card, txRepo.Transactions)
	require.Len(t, invoices, 2)

	assert.Equal(t, 3, invoices[0].Month)
	assert.True(t, invoices[0].Total.Equal(decimal.NewFromInt(75)))
	assert.False(t, invoices[0].IsPaid)
	assert.Len(t, invoices[0].Transactions, 2)

	assert.Equal(t, 4, invoices[1].Month)
	assert.True(t, invoices[1].Total.Equal(decimal.NewFromInt(40)))
	assert.True(t, invoices[1].IsPaid)
}

func TestGroupInvoices_InstallmentsKeepAllocatedMonth(t *testing.T) {
	txRepo := testutil.NewMockTransactionRepository()
	card := &domain.CreditCard{ID: uuid.New(), WorkspaceID: testWorkspaceID, ClosingDay: 1, DueDay: 10}

	purchase := &domain.Transaction{
		WorkspaceID: testWorkspaceID,
		Description: "Geladeira",
		Amount:      decimal.NewFromInt(300),
		Date:        "2024-03-15",
		Type:        domain.TransactionTypeExpense,
		Account:     domain.DefaultAccount,
	}
	installments, err := AllocateInstallments(purchase, card, 3)
	require.NoError(t, err)
	for _, inst := range installments {
		txRepo.AddTransaction(inst)
	}
	// Same date as the first installment, but a plain purchase on or after
	// the closing day rolls to the next invoice.
	addCardPurchase(txRepo, card, "2024-04-10", "7", false)

	invoices := GroupInvoices(card, txRepo.Transactions)
	require.Len(t, invoices, 3)

	assert.Equal(t, 4, invoices[0].Month)
	assert.True(t, invoices[0].Total.Equal(decimal.NewFromInt(100)))
	require.Len(t, invoices[0].Transactions, 1)
	assert.Equal(t, int32(1), *invoices[0].Transactions[0].InstallmentCurrent)

	assert.Equal(t, 5, invoices[1].Month)
	assert.True(t, invoices[1].Total.Equal(decimal.NewFromInt(107)))
	assert.Len(t, invoices[1].Transactions, 2)

	assert.Equal(t, 6, invoices[2].Month)
	assert.True(t, invoices[2].Total.Equal(decimal.NewFromInt(100)))
}

func TestAvailableLimit(t *testing.T) {
	txRepo := testutil.NewMockTransactionRepository()
	card := &domain.CreditCard{ID: uuid.New(), WorkspaceID: testWorkspaceID, Limit: decimal.NewFromInt(1000), ClosingDay: 10, DueDay: 17}
	addCardPurchase(txRepo, card, "2024-03-02", "300", false)
	addCardPurchase(txRepo, card, "2024-03-05", "200", true)

	used, available := AvailableLimit(card, txRepo.Transactions)
	assert.True(t, used.Equal(decimal.NewFromInt(300)))
	assert.True(t, available.Equal(decimal.NewFromInt(700)))
}

func TestPayInvoice_Success(t *testing.T) {
	svc, txRepo, cardRepo, _ := setupInvoiceService("2024-04-17")
	publisher := &testutil.MockEventPublisher{}
	svc.SetEventPublisher(publisher)
	card := cardRepo.AddCard(&domain.CreditCard{WorkspaceID: testWorkspaceID, Name: "Nubank", ClosingDay: 10, DueDay: 17})
	a := addCardPurchase(txRepo, card, "2024-03-02", "50", false)
	b := addCardPurchase(txRepo, card, "2024-03-05", "30", false)

	settlement, err := svc.PayInvoice(context.Background(), testWorkspaceID, domain.PayInvoiceInput{
		CardID:         card.ID,
		TotalAmount:    decimal.NewFromInt(80),
		SourceAccount:  "Inter",
		TransactionIDs: []uuid.UUID{a.ID, b.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.InvoiceSettlementLabel, settlement.Description)
	assert.Equal(t, domain.CategoryCardPayment, settlement.Category)
	assert.Equal(t, "Inter", settlement.Account)
	assert.Equal(t, "2024-04-17", settlement.Date)
	assert.Equal(t, domain.TransactionTypeExpense, settlement.Type)
	assert.True(t, settlement.HasTag(domain.TagInvoice))
	assert.Nil(t, settlement.CardID)

	for _, id := range []uuid.UUID{a.ID, b.ID} {
		tx, err := txRepo.GetByID(context.Background(), testWorkspaceID, id)
		require.NoError(t, err)
		assert.True(t, tx.IsPaid)
	}
	assert.Equal(t, 3, txRepo.Count(testWorkspaceID))
	assert.Equal(t, []string{"invoice.paid"}, publisher.Types())
}

func TestPayInvoice_StoreFailureLeavesLedgerUntouched(t *testing.T) {
	svc, txRepo, cardRepo, _ := setupInvoiceService("2024-04-17")
	card := cardRepo.AddCard(&domain.CreditCard{WorkspaceID: testWorkspaceID, Name: "Nubank", ClosingDay: 10, DueDay: 17})
	a := addCardPurchase(txRepo, card, "2024-03-02", "50", false)
	txRepo.SettleErr = assert.AnError

	_, err := svc.PayInvoice(context.Background(), testWorkspaceID, domain.PayInvoiceInput{
		CardID:         card.ID,
		TotalAmount:    decimal.NewFromInt(50),
		SourceAccount:  domain.DefaultAccount,
		TransactionIDs: []uuid.UUID{a.ID},
	})
	assert.ErrorIs(t, err, assert.AnError)

	tx, err := txRepo.GetByID(context.Background(), testWorkspaceID, a.ID)
	require.NoError(t, err)
	assert.False(t, tx.IsPaid)
	assert.Equal(t, 1, txRepo.Count(testWorkspaceID))
}

func TestPayInvoice_RejectsForeignTransactions(t *testing.T) {
	svc, txRepo, cardRepo, _ := setupInvoiceService("2024-04-17")
	card := cardRepo.AddCard(&domain.CreditCard{WorkspaceID: testWorkspaceID, Name: "Nubank", ClosingDay: 10, DueDay: 17})
	other := cardRepo.AddCard(&domain.CreditCard{WorkspaceID: testWorkspaceID, Name: "Inter", ClosingDay: 10, DueDay: 17})
	foreign := addCardPurchase(txRepo, other, "2024-03-02", "50", false)
	cash := txRepo.AddTransaction(&domain.Transaction{WorkspaceID: testWorkspaceID, Date: "2024-03-02", Amount: decimal.NewFromInt(5)})

	for _, id := range []uuid.UUID{foreign.ID, cash.ID} {
		_, err := svc.PayInvoice(context.Background(), testWorkspaceID, domain.PayInvoiceInput{
			CardID:         card.ID,
			TotalAmount:    decimal.NewFromInt(50),
			SourceAccount:  domain.DefaultAccount,
			TransactionIDs: []uuid.UUID{id},
		})
		assert.ErrorIs(t, err, domain.ErrTransactionsNotInInvoice)
	}

	_, err := svc.PayInvoice(context.Background(), testWorkspaceID, domain.PayInvoiceInput{
		CardID:         card.ID,
		TotalAmount:    decimal.NewFromInt(50),
		SourceAccount:  domain.DefaultAccount,
		TransactionIDs: []uuid.UUID{uuid.New()},
	})
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
	assert.Equal(t, 2, txRepo.Count(testWorkspaceID))
}

func TestPayInvoice_Validation(t *testing.T) {
	svc, _, cardRepo, _ := setupInvoiceService("2024-04-17")
	card := cardRepo.AddCard(&domain.CreditCard{WorkspaceID: testWorkspaceID, Name: "Nubank", ClosingDay: 10, DueDay: 17})

	_, err := svc.PayInvoice(context.Background(), testWorkspaceID, domain.PayInvoiceInput{
		CardID:        card.ID,
		TotalAmount:   decimal.NewFromInt(50),
		SourceAccount: domain.DefaultAccount,
	})
	assert.ErrorIs(t, err, domain.ErrInvoiceEmpty)

	_, err = svc.PayInvoice(context.Background(), testWorkspaceID, domain.PayInvoiceInput{
		CardID:         card.ID,
		TotalAmount:    decimal.Zero,
		SourceAccount:  domain.DefaultAccount,
		TransactionIDs: []uuid.UUID{uuid.New()},
	})
	assert.ErrorIs(t, err, domain.ErrAmountNotPositive)

	_, err = svc.PayInvoice(context.Background(), testWorkspaceID, domain.PayInvoiceInput{
		CardID:         uuid.New(),
		TotalAmount:    decimal.NewFromInt(50),
		SourceAccount:  domain.DefaultAccount,
		TransactionIDs: []uuid.UUID{uuid.New()},
	})
	assert.ErrorIs(t, err, domain.ErrCardNotFound)
}

func TestPayInvoice_ClosedMonth(t *testing.T) {
	svc, txRepo, cardRepo, closureRepo := setupInvoiceService("2024-04-17")
	closureRepo.Close(testWorkspaceID, 2024, 4)
	card := cardRepo.AddCard(&domain.CreditCard{WorkspaceID: testWorkspaceID, Name: "Nubank", ClosingDay: 10, DueDay: 17})
	a := addCardPurchase(txRepo, card, "2024-03-02", "50", false)

	_, err := svc.PayInvoice(context.Background(), testWorkspaceID, domain.PayInvoiceInput{
		CardID:         card.ID,
		TotalAmount:    decimal.NewFromInt(50),
		SourceAccount:  domain.DefaultAccount,
		TransactionIDs: []uuid.UUID{a.ID},
	})
	assert.ErrorIs(t, err, domain.ErrPeriodLocked)
}

func TestListCardSummaries(t *testing.T) {
	svc, txRepo, cardRepo, _ := setupInvoiceService("2024-04-17")
	card := cardRepo.AddCard(&domain.CreditCard{WorkspaceID: testWorkspaceID, Name: "Nubank", Limit: decimal.NewFromInt(1000), ClosingDay: 10, DueDay: 17})
	addCardPurchase(txRepo, card, "2024-03-02", "100", false)

	summaries, err := svc.ListCardSummaries(context.Background(), testWorkspaceID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.True(t, summaries[0].Available.Equal(decimal.NewFromInt(900)))
	assert.Len(t, summaries[0].Invoices, 1)
}
