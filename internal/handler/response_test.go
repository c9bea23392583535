package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/dafibh/finora/finora-backend/internal/service"
)

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		errType string
		field   string
	}{
		{"field validation", domain.ErrAmountNotPositive, http.StatusBadRequest, ErrorTypeValidation, "amount"},
		{"wrapped field validation", fmt.Errorf("goal: %w", domain.ErrGoalAutoDayInvalid), http.StatusBadRequest, ErrorTypeValidation, "autoContributionDay"},
		{"generic invalid input", domain.ErrInvalidInput, http.StatusBadRequest, ErrorTypeValidation, ""},
		{"not found", domain.ErrCardNotFound, http.StatusNotFound, ErrorTypeNotFound, ""},
		{"missing attachment", service.ErrAttachmentMissing, http.StatusNotFound, ErrorTypeNotFound, ""},
		{"closed month", fmt.Errorf("%w: 2024-03", domain.ErrPeriodLocked), http.StatusConflict, ErrorTypeConflict, ""},
		{"storage off", service.ErrAttachmentStorageUnavailable, http.StatusServiceUnavailable, ErrorTypeUnavailable, ""},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, ErrorTypeInternal, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newJSONContext(http.MethodGet, "/api/v1/anything", "", testWorkspaceID)

			if err := handleServiceError(c, tt.err, "Failed"); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if rec.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, rec.Code)
			}

			problem := decodeProblem(t, rec)
			if problem.Type != tt.errType {
				t.Errorf("Expected type %s, got %s", tt.errType, problem.Type)
			}
			if problem.Instance != "/api/v1/anything" {
				t.Errorf("Expected instance path, got %s", problem.Instance)
			}
			if tt.field != "" && (len(problem.Errors) != 1 || problem.Errors[0].Field != tt.field) {
				t.Errorf("Expected error on %q, got %+v", tt.field, problem.Errors)
			}
		})
	}
}

func TestHandleServiceError_HidesInternalDetail(t *testing.T) {
	c, rec := newJSONContext(http.MethodGet, "/api/v1/anything", "", testWorkspaceID)

	_ = handleServiceError(c, errors.New("pq: password authentication failed"), "Failed to load")

	problem := decodeProblem(t, rec)
	if problem.Detail != "Failed to load" {
		t.Errorf("Expected generic detail, got %q", problem.Detail)
	}
}
