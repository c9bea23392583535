package handler

import (
	"net/http"

	"github.com/dafibh/finora/finora-backend/internal/domain"
	"github.com/dafibh/finora/finora-backend/internal/middleware"
	"github.com/dafibh/finora/finora-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// CategoryHandler serves the category catalog and suggestions
type CategoryHandler struct {
	categoryService *service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// SuggestCategoryRequest represents the suggest request body
type SuggestCategoryRequest struct {
	Description string `json:"description"`
	Type        string `json:"type"`
}

// SuggestCategoryResponse carries the suggested label
type SuggestCategoryResponse struct {
	Category string `json:"category"`
}

// GetCatalog godoc
// @Summary Category and account catalog
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.Catalog
// @Router /categories [get]
func (h *CategoryHandler) GetCatalog(c echo.Context) error {
	return c.JSON(http.StatusOK, h.categoryService.Catalog())
}

// SuggestCategory godoc
// @Summary Suggest a category
// @Description Always answers with a catalog label, Outros when no better guess is available
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SuggestCategoryRequest true "Transaction description"
// @Success 200 {object} SuggestCategoryResponse
// @Failure 429 {object} ProblemDetails
// @Router /categories/suggest [post]
func (h *CategoryHandler) SuggestCategory(c echo.Context) error {
	if middleware.GetWorkspaceID(c) == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req SuggestCategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	label := h.categoryService.Suggest(c.Request().Context(), req.Description, domain.TransactionType(req.Type))
	return c.JSON(http.StatusOK, SuggestCategoryResponse{Category: label})
}
