package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"storefront-backend/internal/app/model"
	"storefront-backend/pkg/logger"
)

const notificationLimit = 100 // most recent notifications kept per user

// NotificationRepository keeps per-user notifications in a capped Redis list,
// newest first.
type NotificationRepository interface {
	Push(ctx context.Context, notification *model.Notification) error
	FindByUser(ctx context.Context, userID uint) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID uint, notificationID string) error
	MarkAllRead(ctx context.Context, userID uint) error
}

type notificationRepository struct {
	rdb *redis.Client
}

func NewNotificationRepository(rdb *redis.Client) NotificationRepository {
	return &notificationRepository{rdb: rdb}
}

func notificationKey(userID uint) string {
	return fmt.Sprintf("notifications:%d", userID)
}

func (r *notificationRepository) Push(ctx context.Context, notification *model.Notification) error {
	data, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	key := notificationKey(notification.UserID)
	pipe := r.rdb.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, notificationLimit-1)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Error("Failed to push notification", err, map[string]interface{}{
			"user_id": notification.UserID,
			"type":    notification.Type,
		})
		return err
	}
	return nil
}

func (r *notificationRepository) FindByUser(ctx context.Context, userID uint) ([]model.Notification, error) {
	raw, err := r.rdb.LRange(ctx, notificationKey(userID), 0, -1).Result()
	if err != nil {
		logger.Error("Failed to read notifications", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	notifications := make([]model.Notification, 0, len(raw))
	for _, item := range raw {
		var notification model.Notification
		if err := json.Unmarshal([]byte(item), &notification); err != nil {
			continue
		}
		notifications = append(notifications, notification)
	}
	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID uint, notificationID string) error {
	return r.rewrite(ctx, userID, func(n *model.Notification) {
		if n.ID == notificationID {
			n.IsRead = true
		}
	})
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uint) error {
	return r.rewrite(ctx, userID, func(n *model.Notification) {
		n.IsRead = true
	})
}

// rewrite loads, mutates and rewrites the whole list. The list is small
// (capped) so this stays cheap.
func (r *notificationRepository) rewrite(ctx context.Context, userID uint, mutate func(*model.Notification)) error {
	notifications, err := r.FindByUser(ctx, userID)
	if err != nil {
		return err
	}
	if len(notifications) == 0 {
		return nil
	}

	key := notificationKey(userID)
	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, key)
	for i := len(notifications) - 1; i >= 0; i-- {
		n := notifications[i]
		mutate(&n)
		data, err := json.Marshal(n)
		if err != nil {
			return err
		}
		pipe.LPush(ctx, key, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Error("Failed to rewrite notifications", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}
	return nil
}
