package service

import (
	"context"
	"errors"
	"log/slog"

	"issuehub/internal/httpapi/dto"
	"issuehub/internal/httpapi/models"
	"issuehub/internal/httpapi/repository"
	"issuehub/internal/push"

	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

const DefaultNotificationPageSize = 5

type NotificationService interface {
	GetPage(ctx context.Context, userID string, page, size int) (*dto.NotificationPage, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkAsRead(ctx context.Context, userID string, notificationID int64) error
	MarkAllAsRead(ctx context.Context, userID string) error
	Notify(ctx context.Context, userID, senderName, title, body, forwardURL string) error
}

type notificationService struct {
	repo    repository.NotificationRepository
	pushSvc PushService
	logger  *slog.Logger
}

func NewNotificationService(repo repository.NotificationRepository, pushSvc PushService, logger *slog.Logger) NotificationService {
	return &notificationService{repo: repo, pushSvc: pushSvc, logger: logger}
}

func (s *notificationService) GetPage(ctx context.Context, userID string, page, size int) (*dto.NotificationPage, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultNotificationPageSize
	}

	notifications, total, err := s.repo.GetPageByUser(ctx, userID, page, size)
	if err != nil {
		return nil, err
	}

	content := make([]dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		content = append(content, dto.NotificationResponse{
			ID:         n.ID,
			SenderName: n.SenderName,
			Message:    n.Message,
			ForwardURL: n.ForwardURL,
			IsRead:     n.IsRead,
			CreatedAt:  n.CreatedAt,
		})
	}

	result := dto.NewNotificationPage(content, page, size, total)
	return &result, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.CountUnreadByUser(ctx, userID)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID string, notificationID int64) error {
	if _, err := s.repo.GetByID(ctx, userID, notificationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	return s.repo.MarkAsRead(ctx, userID, notificationID)
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// Notify persists a notification and dispatches it to the user's push
// subscriptions. The stored message is two-part: title and body separated
// by a newline.
func (s *notificationService) Notify(ctx context.Context, userID, senderName, title, body, forwardURL string) error {
	n := &models.Notification{
		UserID:     userID,
		SenderName: senderName,
		Message:    title + "\n" + body,
		ForwardURL: forwardURL,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}

	s.pushSvc.SendToUser(ctx, userID, push.Payload{
		Title: title,
		Body:  body,
		URL:   forwardURL,
	})
	return nil
}
