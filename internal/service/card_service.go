package service

import (
	"context"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/google/uuid"
)

// CardService handles credit card configuration
type CardService struct {
	cardRepo domain.CardRepository
}

// NewCardService creates a new CardService
func NewCardService(cardRepo domain.CardRepository) *CardService {
	return &CardService{cardRepo: cardRepo}
}

// Create validates and stores a card
func (s *CardService) Create(ctx context.Context, workspaceID int32, card *domain.CreditCard) (*domain.CreditCard, error) {
	card.WorkspaceID = workspaceID
	if card.Color == "" {
		card.Color = "#6366f1"
	}
	if err := card.Validate(); err != nil {
		return nil, err
	}
	return s.cardRepo.Create(ctx, card)
}

// GetAll returns the workspace's cards
func (s *CardService) GetAll(ctx context.Context, workspaceID int32) ([]*domain.CreditCard, error) {
	return s.cardRepo.GetAll(ctx, workspaceID)
}

// Update replaces the card's settings
func (s *CardService) Update(ctx context.Context, workspaceID int32, id uuid.UUID, card *domain.CreditCard) (*domain.CreditCard, error) {
	if _, err := s.cardRepo.GetByID(ctx, workspaceID, id); err != nil {
		return nil, err
	}
	card.ID = id
	card.WorkspaceID = workspaceID
	if err := card.Validate(); err != nil {
		return nil, err
	}
	return s.cardRepo.Update(ctx, card)
}

// Delete removes a card. Its transactions keep their history and lose the link.
func (s *CardService) Delete(ctx context.Context, workspaceID int32, id uuid.UUID) error {
	return s.cardRepo.Delete(ctx, workspaceID, id)
}
