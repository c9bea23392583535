package websocket

import (
	"context"
	"errors"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/dafibh/finora/finora-backend/internal/domain"
)

var (
	// ErrInvalidToken is returned for tokens the identity provider rejects
	ErrInvalidToken = errors.New("invalid token")
	// ErrWorkspaceLookup is returned when the workspace store fails
	ErrWorkspaceLookup = errors.New("workspace lookup failed")
)

// ClaimsValidator checks an access token and returns its claims. The Auth0
// validator built by middleware.NewAuth0Validator satisfies it.
type ClaimsValidator interface {
	ValidateToken(ctx context.Context, token string) (interface{}, error)
}

// WorkspaceLookup finds the workspace owned by an Auth0 subject
type WorkspaceLookup interface {
	GetWorkspaceByAuth0ID(ctx context.Context, auth0ID string) (workspaceID int32, err error)
}

// TokenResolver turns the ?token= of a /ws request into a workspace id
type TokenResolver struct {
	claims     ClaimsValidator
	workspaces WorkspaceLookup
}

// NewTokenResolver creates a TokenResolver
func NewTokenResolver(claims ClaimsValidator, workspaces WorkspaceLookup) *TokenResolver {
	return &TokenResolver{claims: claims, workspaces: workspaces}
}

// ValidateToken returns the caller's workspace. A valid token whose subject
// has not created a workspace yet resolves to 0 without error.
func (r *TokenResolver) ValidateToken(ctx context.Context, token string) (int32, error) {
	raw, err := r.claims.ValidateToken(ctx, token)
	if err != nil {
		return 0, ErrInvalidToken
	}
	claims, ok := raw.(*validator.ValidatedClaims)
	if !ok || claims.RegisteredClaims.Subject == "" {
		return 0, ErrInvalidToken
	}

	workspaceID, err := r.workspaces.GetWorkspaceByAuth0ID(ctx, claims.RegisteredClaims.Subject)
	switch {
	case err == nil:
		return workspaceID, nil
	case errors.Is(err, domain.ErrWorkspaceNotFound):
		return 0, nil
	}
	return 0, errors.Join(ErrWorkspaceLookup, err)
}
