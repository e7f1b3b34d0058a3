package service

import (
	"context"
	"time"

	"stackit/internal/middleware"
	"stackit/internal/models"
	"stackit/internal/notifications"
	"stackit/internal/repository"
)

// Notification event kinds.
const (
	KindAnswer  = "answer"
	KindComment = "comment"
	KindMention = "mention"
	KindAccept  = "accept"
)

// NotifyFunc delivers a notification to a user. Implementations must not
// fail the calling operation; delivery problems are logged, not returned.
type NotifyFunc func(ctx context.Context, userID uint, kind, message string)

// NotificationService persists notifications and pushes best-effort
// real-time events to connected clients.
type NotificationService struct {
	repo     repository.NotificationRepository
	notifier *notifications.Notifier
}

// NewNotificationService creates a notification service. notifier may be nil
// when Redis is unavailable; delivery then falls back to polling.
func NewNotificationService(repo repository.NotificationRepository, notifier *notifications.Notifier) *NotificationService {
	return &NotificationService{repo: repo, notifier: notifier}
}

// Notify appends a notification row for the user and publishes a matching
// event. Both steps are best-effort: a failed insert or publish never fails
// the operation that triggered the notification.
func (s *NotificationService) Notify(ctx context.Context, userID uint, kind, message string) {
	n := &models.Notification{UserID: userID, Message: message}
	if err := s.repo.Create(ctx, n); err != nil {
		middleware.Logger.WarnContext(ctx, "Failed to store notification",
			"user_id", userID, "kind", kind, "error", err)
		return
	}
	middleware.NotificationsPublished.WithLabelValues(kind).Inc()

	if s.notifier == nil {
		return
	}
	event := notifications.Event{Kind: kind, Message: message, CreatedAt: time.Now()}
	if err := s.notifier.PublishUser(ctx, userID, event); err != nil {
		middleware.Logger.WarnContext(ctx, "Failed to publish notification event",
			"user_id", userID, "kind", kind, "error", err)
	}
}

// ListUnread returns the user's unread notifications, newest first.
func (s *NotificationService) ListUnread(ctx context.Context, userID uint) ([]models.Notification, error) {
	return s.repo.ListUnread(ctx, userID)
}

// CountUnread returns the number of unread notifications for the user.
func (s *NotificationService) CountUnread(ctx context.Context, userID uint) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead marks one of the user's notifications as read. Re-reading an
// already read notification is rejected.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uint) (*models.Notification, error) {
	n, err := s.repo.GetOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if n.IsRead {
		return nil, models.NewValidationError("Notification is already marked as read")
	}
	if err := s.repo.MarkRead(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// MarkAllRead marks every unread notification for the user as read and
// returns how many were updated.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}
