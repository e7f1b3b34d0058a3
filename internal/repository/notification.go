package repository

import (
	"context"
	"errors"

	"stackit/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository defines persistence operations for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListUnread(ctx context.Context, userID uint) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	GetOwned(ctx context.Context, userID, id uint) (*models.Notification, error)
	MarkRead(ctx context.Context, notification *models.Notification) error
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository backed by gorm.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return models.NewInternalError("create notification", err)
	}
	return nil
}

func (r *notificationRepository) ListUnread(ctx context.Context, userID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_read = ?", userID, false).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, models.NewInternalError("list notifications", err)
	}
	return notifications, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError("count notifications", err)
	}
	return count, nil
}

// GetOwned fetches a notification only if it belongs to userID; other users'
// notifications look like they do not exist.
func (r *notificationRepository) GetOwned(ctx context.Context, userID, id uint) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Notification", id)
		}
		return nil, models.NewInternalError("get notification", err)
	}
	return &notification, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, notification *models.Notification) error {
	err := r.db.WithContext(ctx).Model(notification).Update("is_read", true).Error
	if err != nil {
		return models.NewInternalError("mark notification read", err)
	}
	notification.IsRead = true
	return nil
}

// MarkAllRead flips every unread notification for the user and reports how
// many were updated.
func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, models.NewInternalError("mark all notifications read", res.Error)
	}
	return res.RowsAffected, nil
}
