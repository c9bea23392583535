package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/dafibh/finora/finora-backend/internal/service"
	"github.com/dafibh/finora/finora-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type cardHandlerFixture struct {
	handler     *CardHandler
	txRepo      *testutil.MockTransactionRepository
	cardRepo    *testutil.MockCardRepository
	closureRepo *testutil.MockClosureRepository
}

func setupCardHandler(today string) *cardHandlerFixture {
	f := &cardHandlerFixture{
		txRepo:      testutil.NewMockTransactionRepository(),
		cardRepo:    testutil.NewMockCardRepository(),
		closureRepo: testutil.NewMockClosureRepository(),
	}
	closures := service.NewClosureService(f.closureRepo)
	invoices := service.NewInvoiceService(f.txRepo, f.cardRepo, closures, testutil.NewFixedClock(today))
	f.handler = NewCardHandler(service.NewCardService(f.cardRepo), invoices, domain.DefaultCatalog())
	return f
}

func (f *cardHandlerFixture) addCard() *domain.CreditCard {
	return f.cardRepo.AddCard(&domain.CreditCard{
		WorkspaceID: testWorkspaceID,
		Name:        "Nubank",
		Limit:       decimal.NewFromInt(5000),
		ClosingDay:  10,
		DueDay:      17,
	})
}

func (f *cardHandlerFixture) addPurchase(card *domain.CreditCard, amount int64) *domain.Transaction {
	cardID := card.ID
	return f.txRepo.AddTransaction(&domain.Transaction{
		WorkspaceID: testWorkspaceID,
		Description: "Compra",
		Amount:      decimal.NewFromInt(amount),
		Date:        "2024-03-05",
		Type:        domain.TransactionTypeExpense,
		Category:    "Mercado",
		Account:     domain.DefaultAccount,
		CardID:      &cardID,
	})
}

func TestCreateCard(t *testing.T) {
	f := setupCardHandler("2024-03-15")
	body := `{"name": "Inter", "limit": "3000", "closingDay": 5, "dueDay": 12}`
	c, rec := newJSONContext(http.MethodPost, "/api/v1/cards", body, testWorkspaceID)

	if err := f.handler.CreateCard(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var card domain.CreditCard
	if err := json.Unmarshal(rec.Body.Bytes(), &card); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if card.Name != "Inter" || card.ClosingDay != 5 {
		t.Errorf("Unexpected card %+v", card)
	}
}

func TestCreateCard_InvalidDays(t *testing.T) {
	tests := []struct {
		body  string
		field string
	}{
		{`{"name": "Inter", "limit": "3000", "closingDay": 0, "dueDay": 12}`, "closingDay"},
		{`{"name": "Inter", "limit": "3000", "closingDay": 5, "dueDay": 31}`, "dueDay"},
		{`{"name": "", "limit": "3000", "closingDay": 5, "dueDay": 12}`, "name"},
		{`{"name": "Inter", "limit": "muito", "closingDay": 5, "dueDay": 12}`, "limit"},
	}

	for _, tt := range tests {
		f := setupCardHandler("2024-03-15")
		c, rec := newJSONContext(http.MethodPost, "/api/v1/cards", tt.body, testWorkspaceID)

		if err := f.handler.CreateCard(c); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", tt.field, rec.Code)
			continue
		}
		problem := decodeProblem(t, rec)
		if len(problem.Errors) != 1 || problem.Errors[0].Field != tt.field {
			t.Errorf("Expected error on %q, got %+v", tt.field, problem.Errors)
		}
	}
}

func TestPayInvoice(t *testing.T) {
	f := setupCardHandler("2024-03-20")
	card := f.addCard()
	a := f.addPurchase(card, 100)
	b := f.addPurchase(card, 50)

	body := fmt.Sprintf(`{"totalAmount": "150", "sourceAccount": "Nubank", "transactionIds": [%q, %q]}`, a.ID, b.ID)
	c, rec := newJSONContext(http.MethodPost, "/api/v1/cards/x/invoices/pay", body, testWorkspaceID)
	c.SetParamNames("id")
	c.SetParamValues(card.ID.String())

	if err := f.handler.PayInvoice(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var settlement domain.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &settlement); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if settlement.Date != "2024-03-20" || settlement.Category != domain.CategoryCardPayment {
		t.Errorf("Unexpected settlement %+v", settlement)
	}
	for _, id := range []uuid.UUID{a.ID, b.ID} {
		tx, err := f.txRepo.GetByID(c.Request().Context(), testWorkspaceID, id)
		if err != nil {
			t.Fatalf("Expected purchase, got %v", err)
		}
		if !tx.IsPaid {
			t.Errorf("Expected purchase %s paid", id)
		}
	}
}

func TestPayInvoice_Errors(t *testing.T) {
	f := setupCardHandler("2024-03-20")
	card := f.addCard()
	other := f.cardRepo.AddCard(&domain.CreditCard{WorkspaceID: testWorkspaceID, Name: "Inter", ClosingDay: 1, DueDay: 8})
	purchase := f.addPurchase(card, 100)
	foreign := f.addPurchase(other, 20)

	tests := []struct {
		name   string
		cardID string
		body   string
		status int
	}{
		{"invalid card id", "abc", `{"totalAmount": "100", "sourceAccount": "Nubank", "transactionIds": []}`, http.StatusBadRequest},
		{"unknown account", card.ID.String(), fmt.Sprintf(`{"totalAmount": "100", "sourceAccount": "Banco X", "transactionIds": [%q]}`, purchase.ID), http.StatusBadRequest},
		{"empty invoice", card.ID.String(), `{"totalAmount": "100", "sourceAccount": "Nubank", "transactionIds": []}`, http.StatusBadRequest},
		{"invalid transaction id", card.ID.String(), `{"totalAmount": "100", "sourceAccount": "Nubank", "transactionIds": ["x"]}`, http.StatusBadRequest},
		{"unknown card", uuid.New().String(), fmt.Sprintf(`{"totalAmount": "100", "sourceAccount": "Nubank", "transactionIds": [%q]}`, purchase.ID), http.StatusNotFound},
		{"other card purchase", card.ID.String(), fmt.Sprintf(`{"totalAmount": "120", "sourceAccount": "Nubank", "transactionIds": [%q, %q]}`, purchase.ID, foreign.ID), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newJSONContext(http.MethodPost, "/api/v1/cards/x/invoices/pay", tt.body, testWorkspaceID)
			c.SetParamNames("id")
			c.SetParamValues(tt.cardID)

			if err := f.handler.PayInvoice(c); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if rec.Code != tt.status {
				t.Errorf("Expected status %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}

	if f.txRepo.Count(testWorkspaceID) != 2 {
		t.Error("Expected no settlement recorded")
	}
}

func TestPayInvoice_ClosedMonth(t *testing.T) {
	f := setupCardHandler("2024-03-20")
	card := f.addCard()
	purchase := f.addPurchase(card, 100)
	f.closureRepo.Close(testWorkspaceID, 2024, 3)

	body := fmt.Sprintf(`{"totalAmount": "100", "sourceAccount": "Nubank", "transactionIds": [%q]}`, purchase.ID)
	c, rec := newJSONContext(http.MethodPost, "/api/v1/cards/x/invoices/pay", body, testWorkspaceID)
	c.SetParamNames("id")
	c.SetParamValues(card.ID.String())

	if err := f.handler.PayInvoice(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}
}
