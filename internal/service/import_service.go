package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/dafibh/finora/finora-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/ryanuber/go-glob"
	"github.com/shopspring/decimal"
)

// CategoryRule assigns Category to imported rows whose lowercased description
// matches Pattern. Patterns use * wildcards.
type CategoryRule struct {
	Pattern  string
	Category string
}

// ParseCategoryRules parses "pattern=Category" pairs separated by commas
func ParseCategoryRules(raw string) ([]CategoryRule, error) {
	rules := make([]CategoryRule, 0)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		pattern, category, ok := strings.Cut(pair, "=")
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		category = strings.TrimSpace(category)
		if !ok || pattern == "" || category == "" {
			return nil, fmt.Errorf("invalid category rule %q", pair)
		}
		rules = append(rules, CategoryRule{Pattern: pattern, Category: category})
	}
	return rules, nil
}

// ImportResult holds the outcome of a CSV import
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// ImportService turns CSV rows into ledger transactions
type ImportService struct {
	transactions *TransactionService
	rules        []CategoryRule
}

// NewImportService creates a new ImportService
func NewImportService(transactions *TransactionService, rules []CategoryRule) *ImportService {
	return &ImportService{
		transactions: transactions,
		rules:        rules,
	}
}

// Import reads rows of date,description,amount,type,category,account. A
// header row, blank rows and rows with fewer than three columns are skipped,
// as are rows with an unparseable date or amount. Rows that fail to be stored
// are reported and do not stop the import.
func (s *ImportService) Import(ctx context.Context, workspaceID int32, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	result := &ImportResult{Errors: make([]string, 0)}
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				result.Skipped++
				continue
			}
			return nil, err
		}

		input, ok := s.rowToInput(record)
		if !ok {
			result.Skipped++
			continue
		}
		if err := input.Validate(); err != nil {
			result.Skipped++
			continue
		}

		if _, err := s.transactions.Create(ctx, workspaceID, input); err != nil {
			log.Warn().
				Err(err).
				Int32("workspace_id", workspaceID).
				Int("line", line).
				Msg("Failed to import row")
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		result.Imported++
	}

	if result.Imported > 0 && s.transactions.eventPublisher != nil {
		s.transactions.eventPublisher.Publish(workspaceID, websocket.TransactionsImported(result))
	}
	return result, nil
}

func (s *ImportService) rowToInput(record []string) (domain.CreateTransactionInput, bool) {
	if len(record) < 3 {
		return domain.CreateTransactionInput{}, false
	}
	date := strings.TrimSpace(record[0])
	if date == "" || strings.EqualFold(date, "date") {
		return domain.CreateTransactionInput{}, false
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(record[2]))
	if err != nil {
		return domain.CreateTransactionInput{}, false
	}

	description := strings.TrimSpace(strings.ReplaceAll(record[1], `"`, ""))
	txType := domain.TransactionTypeExpense
	if strings.EqualFold(column(record, 3), "income") {
		txType = domain.TransactionTypeIncome
	}
	category := column(record, 4)
	if category == "" {
		category = s.categoryFor(description)
	}
	account := column(record, 5)
	if account == "" {
		account = domain.DefaultAccount
	}

	return domain.CreateTransactionInput{
		Description: description,
		Amount:      amount,
		Date:        date,
		Type:        txType,
		Nature:      domain.NatureVariable,
		Category:    category,
		Account:     account,
		Tags:        []string{domain.TagImported},
	}, true
}

// categoryFor returns the category of the first matching rule, or Outros
func (s *ImportService) categoryFor(description string) string {
	subject := strings.ToLower(description)
	for _, rule := range s.rules {
		if glob.Glob(rule.Pattern, subject) {
			return rule.Category
		}
	}
	return domain.CategoryOther
}

func column(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
