package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetNotifications lists the caller's unread notifications, newest first.
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	userID := currentUserID(c)

	notifications, err := s.notificationService.ListUnread(c.UserContext(), userID)
	if err != nil {
		return respondAppError(c, err)
	}
	count, err := s.notificationService.CountUnread(c.UserContext(), userID)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"notifications": notifications,
		"unread_count":  count,
	})
}

// MarkNotificationRead marks one of the caller's notifications as read.
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondAppError(c, err)
	}

	notification, err := s.notificationService.MarkRead(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"notification": notification,
	})
}

// MarkAllNotificationsRead marks all of the caller's unread notifications
// as read.
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	updated, err := s.notificationService.MarkAllRead(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"updated": updated,
	})
}
