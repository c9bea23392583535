package handler

import (
	"net/http"

	"github.com/dafibh/finora/finora-backend/internal/middleware"
	"github.com/dafibh/finora/finora-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// NotificationHandler serves derived notifications
type NotificationHandler struct {
	notificationService *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// GetNotifications godoc
// @Summary Current notifications
// @Description Budget alerts and bills due within the next week
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Notification
// @Router /notifications [get]
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	notifications, err := h.notificationService.List(c.Request().Context(), workspaceID)
	if err != nil {
		return handleServiceError(c, err, "Failed to get notifications")
	}
	return c.JSON(http.StatusOK, notifications)
}
