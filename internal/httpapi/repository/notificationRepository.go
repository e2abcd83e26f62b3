package repository

import (
	"context"

	"issuehub/internal/httpapi/models"

	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetPageByUser(ctx context.Context, userID string, page, size int) ([]models.Notification, int64, error)
	GetByID(ctx context.Context, userID string, notificationID int64) (*models.Notification, error)
	CountUnreadByUser(ctx context.Context, userID string) (int64, error)
	MarkAsRead(ctx context.Context, userID string, notificationID int64) error
	MarkAllAsRead(ctx context.Context, userID string) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

// GetPageByUser returns one zero-indexed page of a user's notifications,
// newest first, along with the total row count.
func (r *notificationRepository) GetPageByUser(ctx context.Context, userID string, page, size int) ([]models.Notification, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(size).
		Offset(page * size).
		Find(&notifications).Error
	return notifications, total, err
}

func (r *notificationRepository) GetByID(ctx context.Context, userID string, notificationID int64) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.WithContext(ctx).
		First(&n, "id = ? AND user_id = ?", notificationID, userID).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepository) CountUnreadByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = false", userID).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, userID string, notificationID int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true).Error
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ?", userID).
		Update("is_read", true).Error
}
