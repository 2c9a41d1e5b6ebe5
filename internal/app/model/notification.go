package model

import (
	"time"
)

type NotificationType string

const (
	NotificationTypeOrderStatus  NotificationType = "order_status"
	NotificationTypePayment      NotificationType = "payment"
	NotificationTypeChatMessage  NotificationType = "chat_message"
	NotificationTypeAnnouncement NotificationType = "announcement"
)

// Notification is a per-user document kept in a capped Redis list
type Notification struct {
	ID        string           `json:"id"`
	UserID    uint             `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Content   string           `json:"content"`
	Link      string           `json:"link,omitempty"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
