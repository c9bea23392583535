package domain

import "errors"

// Domain errors
var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrWorkspaceNotFound = errors.New("workspace not found")

	// ErrPeriodLocked is returned for writes that target a closed month.
	ErrPeriodLocked = errors.New("period is closed")
)

// Validation constants
const (
	MaxDescriptionLength = 255
	MaxNameLength        = 120
)
