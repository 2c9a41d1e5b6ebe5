package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"storefront-backend/internal/app/model"
	"storefront-backend/pkg/logger"
)

const chatHistoryLimit = 500 // messages kept per room

// ChatRepository stores support chat rooms and their messages in Redis.
// Rooms are JSON documents; messages are appended to a capped list per room.
type ChatRepository interface {
	SaveRoom(ctx context.Context, room *model.ChatRoom) error
	FindRoom(ctx context.Context, roomID string) (*model.ChatRoom, error)
	FindRoomsByUser(ctx context.Context, userID uint) ([]model.ChatRoom, error)
	FindAllRooms(ctx context.Context) ([]model.ChatRoom, error)
	AppendMessage(ctx context.Context, msg *model.ChatMessage) error
	FindMessages(ctx context.Context, roomID string, limit int) ([]model.ChatMessage, error)
}

type chatRepository struct {
	rdb *redis.Client
}

func NewChatRepository(rdb *redis.Client) ChatRepository {
	return &chatRepository{rdb: rdb}
}

func chatRoomKey(roomID string) string {
	return fmt.Sprintf("chat:room:%s", roomID)
}

func chatMessagesKey(roomID string) string {
	return fmt.Sprintf("chat:room:%s:messages", roomID)
}

func chatUserRoomsKey(userID uint) string {
	return fmt.Sprintf("chat:user:%d:rooms", userID)
}

const chatAllRoomsKey = "chat:rooms"

func (r *chatRepository) SaveRoom(ctx context.Context, room *model.ChatRoom) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}

	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, chatRoomKey(room.ID), data, 0)
	pipe.SAdd(ctx, chatUserRoomsKey(room.UserID), room.ID)
	pipe.SAdd(ctx, chatAllRoomsKey, room.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Error("Failed to save chat room document", err, map[string]interface{}{
			"room_id": room.ID,
			"user_id": room.UserID,
		})
		return err
	}
	return nil
}

func (r *chatRepository) FindRoom(ctx context.Context, roomID string) (*model.ChatRoom, error) {
	data, err := r.rdb.Get(ctx, chatRoomKey(roomID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var room model.ChatRoom
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *chatRepository) FindRoomsByUser(ctx context.Context, userID uint) ([]model.ChatRoom, error) {
	ids, err := r.rdb.SMembers(ctx, chatUserRoomsKey(userID)).Result()
	if err != nil {
		logger.Error("Failed to read chat room index", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return r.loadRooms(ctx, ids)
}

func (r *chatRepository) FindAllRooms(ctx context.Context) ([]model.ChatRoom, error) {
	ids, err := r.rdb.SMembers(ctx, chatAllRoomsKey).Result()
	if err != nil {
		logger.Error("Failed to read global chat room index", err)
		return nil, err
	}
	return r.loadRooms(ctx, ids)
}

func (r *chatRepository) loadRooms(ctx context.Context, ids []string) ([]model.ChatRoom, error) {
	rooms := make([]model.ChatRoom, 0, len(ids))
	for _, id := range ids {
		room, err := r.FindRoom(ctx, id)
		if err != nil {
			return nil, err
		}
		if room != nil {
			rooms = append(rooms, *room)
		}
	}

	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].LastMessageAt.After(rooms[j].LastMessageAt)
	})
	return rooms, nil
}

func (r *chatRepository) AppendMessage(ctx context.Context, msg *model.ChatMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	key := chatMessagesKey(msg.RoomID)
	pipe := r.rdb.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, -chatHistoryLimit, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Error("Failed to append chat message", err, map[string]interface{}{
			"room_id":   msg.RoomID,
			"sender_id": msg.SenderID,
		})
		return err
	}
	return nil
}

func (r *chatRepository) FindMessages(ctx context.Context, roomID string, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 || limit > chatHistoryLimit {
		limit = chatHistoryLimit
	}

	raw, err := r.rdb.LRange(ctx, chatMessagesKey(roomID), int64(-limit), -1).Result()
	if err != nil {
		logger.Error("Failed to read chat messages", err, map[string]interface{}{
			"room_id": roomID,
		})
		return nil, err
	}

	messages := make([]model.ChatMessage, 0, len(raw))
	for _, item := range raw {
		var msg model.ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			logger.Warn("Skipping undecodable chat message", map[string]interface{}{
				"room_id": roomID,
				"error":   err.Error(),
			})
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}
