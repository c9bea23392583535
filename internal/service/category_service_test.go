package service

import (
	"context"
	"testing"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/dafibh/finora/finora-backend/internal/repository/cache"
	"github.com/dafibh/finora/finora-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSuggest_ClassifierAnswerIsCached(t *testing.T) {
	classifier := &testutil.MockClassifier{Label: "Alimentação"}
	suggestions := testutil.NewMockSuggestionCache()
	svc := NewCategoryService(domain.DefaultCatalog(), classifier, suggestions)

	label := svc.Suggest(context.Background(), "Pão de açúcar", domain.TransactionTypeExpense)
	assert.Equal(t, "Alimentação", label)
	assert.Equal(t, "Alimentação", suggestions.Entries[cache.Key("expense", "Pão de açúcar")])

	label = svc.Suggest(context.Background(), "  PÃO DE AÇÚCAR ", domain.TransactionTypeExpense)
	assert.Equal(t, "Alimentação", label)
	assert.Equal(t, 1, classifier.Calls)
}

func TestSuggest_Fallbacks(t *testing.T) {
	catalog := domain.DefaultCatalog()

	tests := []struct {
		name        string
		classifier  *testutil.MockClassifier
		description string
		txType      domain.TransactionType
		wantCalls   int
	}{
		{"empty description", &testutil.MockClassifier{Label: "Lazer"}, "   ", domain.TransactionTypeExpense, 0},
		{"classifier error", &testutil.MockClassifier{Err: assert.AnError}, "Cinema", domain.TransactionTypeExpense, 1},
		{"label outside catalog", &testutil.MockClassifier{Label: "Diversão"}, "Cinema", domain.TransactionTypeExpense, 1},
		{"expense label for income", &testutil.MockClassifier{Label: "Lazer"}, "Bônus", domain.TransactionTypeIncome, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suggestions := testutil.NewMockSuggestionCache()
			svc := NewCategoryService(catalog, tt.classifier, suggestions)

			assert.Equal(t, domain.CategoryOther, svc.Suggest(context.Background(), tt.description, tt.txType))
			assert.Equal(t, tt.wantCalls, tt.classifier.Calls)
			assert.Empty(t, suggestions.Entries)
		})
	}
}

func TestSuggest_WithoutClassifier(t *testing.T) {
	svc := NewCategoryService(domain.DefaultCatalog(), nil, nil)
	assert.Equal(t, domain.CategoryOther, svc.Suggest(context.Background(), "Cinema", domain.TransactionTypeExpense))
}

func TestSuggest_CacheErrorFallsThroughToClassifier(t *testing.T) {
	classifier := &testutil.MockClassifier{Label: "Salário"}
	suggestions := testutil.NewMockSuggestionCache()
	suggestions.GetErr = assert.AnError
	svc := NewCategoryService(domain.DefaultCatalog(), classifier, suggestions)

	assert.Equal(t, "Salário", svc.Suggest(context.Background(), "Pagamento empresa", domain.TransactionTypeIncome))
	assert.Equal(t, 1, classifier.Calls)
}

func TestSuggest_StaleCacheEntryIsIgnored(t *testing.T) {
	classifier := &testutil.MockClassifier{Label: "Lazer"}
	suggestions := testutil.NewMockSuggestionCache()
	suggestions.Entries[cache.Key("expense", "Cinema")] = "Removida"
	svc := NewCategoryService(domain.DefaultCatalog(), classifier, suggestions)

	assert.Equal(t, "Lazer", svc.Suggest(context.Background(), "Cinema", domain.TransactionTypeExpense))
	assert.Equal(t, 1, classifier.Calls)
}
