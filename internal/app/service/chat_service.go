package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"storefront-backend/internal/app/model"
	"storefront-backend/internal/app/repository"
	"storefront-backend/pkg/logger"
)

var (
	ErrChatRoomNotFound = errors.New("chat room not found")
	ErrEmptyMessage     = errors.New("message content is empty")
)

const defaultMessageLimit = 100

type ChatService interface {
	StartRoom(ctx context.Context, userID uint, subject string) (*model.ChatRoom, error)
	GetUserRooms(ctx context.Context, userID uint) ([]model.ChatRoom, error)
	GetAllRooms(ctx context.Context) ([]model.ChatRoom, error)
	GetMessages(ctx context.Context, userID uint, isStaff bool, roomID string, limit int) ([]model.ChatMessage, error)
	SendMessage(ctx context.Context, userID uint, isStaff bool, roomID, content string) (*model.ChatMessage, error)
}

type chatService struct {
	chatRepo repository.ChatRepository
	notifier NotificationService
}

func NewChatService(chatRepo repository.ChatRepository, notifier ...NotificationService) ChatService {
	var n NotificationService
	if len(notifier) > 0 {
		n = notifier[0]
	}
	return &chatService{
		chatRepo: chatRepo,
		notifier: n,
	}
}

func (s *chatService) StartRoom(ctx context.Context, userID uint, subject string) (*model.ChatRoom, error) {
	room := &model.ChatRoom{
		ID:        uuid.NewString(),
		UserID:    userID,
		Subject:   subject,
		CreatedAt: time.Now(),
	}

	if err := s.chatRepo.SaveRoom(ctx, room); err != nil {
		logger.Error("Failed to create chat room", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("Chat room created", map[string]interface{}{
		"user_id": userID,
		"room_id": room.ID,
	})
	return room, nil
}

func (s *chatService) GetUserRooms(ctx context.Context, userID uint) ([]model.ChatRoom, error) {
	rooms, err := s.chatRepo.FindRoomsByUser(ctx, userID)
	if err != nil {
		logger.Error("Failed to fetch chat rooms", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return rooms, nil
}

func (s *chatService) GetAllRooms(ctx context.Context) ([]model.ChatRoom, error) {
	rooms, err := s.chatRepo.FindAllRooms(ctx)
	if err != nil {
		logger.Error("Failed to fetch all chat rooms", err)
		return nil, err
	}
	return rooms, nil
}

func (s *chatService) GetMessages(ctx context.Context, userID uint, isStaff bool, roomID string, limit int) ([]model.ChatMessage, error) {
	room, err := s.accessibleRoom(ctx, userID, isStaff, roomID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultMessageLimit
	}
	messages, err := s.chatRepo.FindMessages(ctx, room.ID, limit)
	if err != nil {
		logger.Error("Failed to fetch chat messages", err, map[string]interface{}{
			"room_id": roomID,
		})
		return nil, err
	}
	return messages, nil
}

func (s *chatService) SendMessage(ctx context.Context, userID uint, isStaff bool, roomID, content string) (*model.ChatMessage, error) {
	if content == "" {
		return nil, ErrEmptyMessage
	}

	room, err := s.accessibleRoom(ctx, userID, isStaff, roomID)
	if err != nil {
		return nil, err
	}

	message := &model.ChatMessage{
		ID:        uuid.NewString(),
		RoomID:    room.ID,
		SenderID:  userID,
		FromStaff: isStaff,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.chatRepo.AppendMessage(ctx, message); err != nil {
		logger.Error("Failed to append chat message", err, map[string]interface{}{
			"room_id": roomID,
		})
		return nil, err
	}

	room.LastMessage = content
	room.LastMessageAt = message.CreatedAt
	if isStaff {
		room.UnreadCount++
	} else {
		room.UnreadCount = 0
	}
	if err := s.chatRepo.SaveRoom(ctx, room); err != nil {
		logger.Error("Failed to update chat room after message", err, map[string]interface{}{
			"room_id": roomID,
		})
		return nil, err
	}

	// Notify the customer about staff replies; staff watch the room list
	if isStaff && s.notifier != nil {
		if err := s.notifier.Notify(ctx, room.UserID, model.NotificationTypeChatMessage,
			"New reply from support", content, fmt.Sprintf("/chat/%s", room.ID)); err != nil {
			logger.Error("Failed to send chat notification", err, map[string]interface{}{
				"room_id": roomID,
			})
		}
	}

	logger.Debug("Chat message sent", map[string]interface{}{
		"room_id":    roomID,
		"sender_id":  userID,
		"from_staff": isStaff,
	})
	return message, nil
}

// accessibleRoom loads a room and checks the caller may see it: owners and
// staff only. Foreign rooms read as not found.
func (s *chatService) accessibleRoom(ctx context.Context, userID uint, isStaff bool, roomID string) (*model.ChatRoom, error) {
	room, err := s.chatRepo.FindRoom(ctx, roomID)
	if err != nil {
		logger.Error("Failed to fetch chat room", err, map[string]interface{}{
			"room_id": roomID,
		})
		return nil, err
	}
	if room == nil {
		return nil, ErrChatRoomNotFound
	}
	if !isStaff && room.UserID != userID {
		logger.Warn("Chat room access denied: ownership mismatch", map[string]interface{}{
			"user_id": userID,
			"room_id": roomID,
		})
		return nil, ErrChatRoomNotFound
	}
	return room, nil
}
