package service

import (
	"context"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// DefaultWorkspaceName is used when the identity carries no display name
const DefaultWorkspaceName = "Pessoal"

// AuthService resolves Auth0 identities to workspaces
type AuthService struct {
	workspaceRepo domain.WorkspaceRepository
}

// NewAuthService creates a new AuthService
func NewAuthService(workspaceRepo domain.WorkspaceRepository) *AuthService {
	return &AuthService{
		workspaceRepo: workspaceRepo,
	}
}

// AuthResult represents the result of an authentication operation
type AuthResult struct {
	Workspace      *domain.Workspace
	IsNewWorkspace bool
}

// AuthenticateUser handles the authentication flow after Auth0 callback. The
// workspace is created on first login.
func (s *AuthService) AuthenticateUser(ctx context.Context, auth0ID, email, name string) (*AuthResult, error) {
	if name == "" {
		name = DefaultWorkspaceName
	}

	workspace, created, err := s.workspaceRepo.CreateOrGetByAuth0ID(ctx, auth0ID, email, name)
	if err != nil {
		log.Error().Err(err).Str("auth0_id", auth0ID).Msg("Failed to create or get workspace")
		return nil, err
	}

	if created {
		log.Info().Int32("workspace_id", workspace.ID).Msg("Created workspace for new user")
	} else {
		log.Info().Int32("workspace_id", workspace.ID).Msg("Existing user authenticated")
	}

	return &AuthResult{
		Workspace:      workspace,
		IsNewWorkspace: created,
	}, nil
}

// GetWorkspaceByAuth0ID retrieves a user's workspace by their Auth0 ID
func (s *AuthService) GetWorkspaceByAuth0ID(ctx context.Context, auth0ID string) (*domain.Workspace, error) {
	return s.workspaceRepo.GetByAuth0ID(ctx, auth0ID)
}
