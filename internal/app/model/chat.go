package model

import (
	"time"
)

// ChatRoom is a support conversation between a customer and the store,
// stored as a Redis document.
type ChatRoom struct {
	ID            string    `json:"id"`
	UserID        uint      `json:"user_id"`
	Subject       string    `json:"subject,omitempty"`
	LastMessage   string    `json:"last_message,omitempty"`
	LastMessageAt time.Time `json:"last_message_at"`
	UnreadCount   int       `json:"unread_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// ChatMessage is one message in a room, appended to a Redis list
type ChatMessage struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	SenderID  uint      `json:"sender_id"`
	FromStaff bool      `json:"from_staff"`
	Content   string    `json:"content"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
