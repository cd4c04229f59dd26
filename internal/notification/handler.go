package notification

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// NotificationHandler exposes the outbox to staff.
type NotificationHandler struct {
	service *NotificationService
}

func NewNotificationHandler(service *NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// ListNotifications returns recent outbox entries, optionally filtered by ?status=.
func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	status := c.QueryParam("status")
	switch status {
	case "", StatusScheduled, StatusSent, StatusFailed:
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid status"})
	}
	notifications, err := h.service.ListNotifications(c.Request().Context(), status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list notifications"})
	}
	return c.JSON(http.StatusOK, notifications)
}
