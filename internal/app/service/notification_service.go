package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"storefront-backend/internal/app/model"
	"storefront-backend/internal/app/repository"
	"storefront-backend/pkg/logger"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationPusher delivers a notification to a connected client, e.g.
// over a websocket. Delivery is best-effort; the Redis document is the
// durable copy.
type NotificationPusher interface {
	PushToUser(userID uint, payload interface{})
}

type NotificationService interface {
	Notify(ctx context.Context, userID uint, typ model.NotificationType, title, content, link string) error
	GetNotifications(ctx context.Context, userID uint) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID uint, notificationID string) error
	MarkAllRead(ctx context.Context, userID uint) error
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	pusher           NotificationPusher
}

func NewNotificationService(notificationRepo repository.NotificationRepository, pusher ...NotificationPusher) NotificationService {
	var p NotificationPusher
	if len(pusher) > 0 {
		p = pusher[0]
	}
	return &notificationService{
		notificationRepo: notificationRepo,
		pusher:           p,
	}
}

func (s *notificationService) Notify(ctx context.Context, userID uint, typ model.NotificationType, title, content, link string) error {
	notification := &model.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Content:   content,
		Link:      link,
		CreatedAt: time.Now(),
	}

	if err := s.notificationRepo.Push(ctx, notification); err != nil {
		logger.Error("Failed to store notification", err, map[string]interface{}{
			"user_id": userID,
			"type":    typ,
		})
		return err
	}

	if s.pusher != nil {
		s.pusher.PushToUser(userID, notification)
	}

	logger.Debug("Notification sent", map[string]interface{}{
		"user_id":         userID,
		"notification_id": notification.ID,
		"type":            typ,
	})
	return nil
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uint) ([]model.Notification, error) {
	notifications, err := s.notificationRepo.FindByUser(ctx, userID)
	if err != nil {
		logger.Error("Failed to fetch notifications", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return notifications, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID uint, notificationID string) error {
	if err := s.notificationRepo.MarkRead(ctx, userID, notificationID); err != nil {
		logger.Error("Failed to mark notification read", err, map[string]interface{}{
			"user_id":         userID,
			"notification_id": notificationID,
		})
		return err
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uint) error {
	if err := s.notificationRepo.MarkAllRead(ctx, userID); err != nil {
		logger.Error("Failed to mark all notifications read", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}
	return nil
}
