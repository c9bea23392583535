package service

import (
	"context"
	"strings"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/dafibh/finora/finora-backend/internal/metrics"
	"github.com/dafibh/finora/finora-backend/internal/repository/cache"
	"github.com/rs/zerolog/log"
)

// CategoryClassifier picks one of labels for a description
type CategoryClassifier interface {
	Classify(ctx context.Context, description string, income bool, labels []string) (string, error)
}

// SuggestionCache remembers earlier suggestions
type SuggestionCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, label string) error
}

// CategoryService exposes the category catalog and suggests categories for
// new transactions
type CategoryService struct {
	catalog    *domain.Catalog
	classifier CategoryClassifier
	cache      SuggestionCache
}

// NewCategoryService creates a new CategoryService. classifier and cache may
// be nil.
func NewCategoryService(catalog *domain.Catalog, classifier CategoryClassifier, cache SuggestionCache) *CategoryService {
	return &CategoryService{
		catalog:    catalog,
		classifier: classifier,
		cache:      cache,
	}
}

// Catalog returns the configured categories and accounts
func (s *CategoryService) Catalog() *domain.Catalog {
	return s.catalog
}

// Suggest returns a catalog label for description. It never fails: an empty
// description, a missing or failing classifier, or an answer outside the
// catalog all yield Outros.
func (s *CategoryService) Suggest(ctx context.Context, description string, txType domain.TransactionType) string {
	description = strings.TrimSpace(description)
	if txType != domain.TransactionTypeIncome {
		txType = domain.TransactionTypeExpense
	}
	if description == "" {
		metrics.CategorySuggestions.WithLabelValues("fallback").Inc()
		return domain.CategoryOther
	}

	key := cache.Key(string(txType), description)
	if s.cache != nil {
		label, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Warn().Err(err).Msg("Suggestion cache lookup failed")
		} else if ok && s.catalog.IsSuggestionLabel(txType, label) {
			metrics.CategorySuggestions.WithLabelValues("cache").Inc()
			return label
		}
	}

	if s.classifier == nil {
		metrics.CategorySuggestions.WithLabelValues("fallback").Inc()
		return domain.CategoryOther
	}

	labels := s.catalog.SuggestionLabels(txType)
	label, err := s.classifier.Classify(ctx, description, txType == domain.TransactionTypeIncome, labels)
	if err != nil {
		log.Warn().Err(err).Msg("Category classification failed")
		metrics.CategorySuggestions.WithLabelValues("fallback").Inc()
		return domain.CategoryOther
	}
	if !s.catalog.IsSuggestionLabel(txType, label) {
		metrics.CategorySuggestions.WithLabelValues("fallback").Inc()
		return domain.CategoryOther
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, label); err != nil {
			log.Warn().Err(err).Msg("Failed to cache suggestion")
		}
	}
	metrics.CategorySuggestions.WithLabelValues("classifier").Inc()
	return label
}
