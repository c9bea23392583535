package domain

import (
	"context"
	"time"
)

// Workspace is the owner scope of every ledger record. One per Auth0 identity.
type Workspace struct {
	ID        int32     `json:"id"`
	Auth0ID   string    `json:"auth0Id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// WorkspaceRepository defines the interface for workspace persistence operations
type WorkspaceRepository interface {
	GetByAuth0ID(ctx context.Context, auth0ID string) (*Workspace, error)
	CreateOrGetByAuth0ID(ctx context.Context, auth0ID, email, name string) (*Workspace, bool, error)
	GetAll(ctx context.Context) ([]*Workspace, error)
}
