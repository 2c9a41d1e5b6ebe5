package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/app/model"
	"storefront-backend/internal/app/repository"
)

type chatTestEnv struct {
	svc              ChatService
	notificationSvc  NotificationService
	notificationRepo repository.NotificationRepository
}

func setupChatService(t *testing.T) *chatTestEnv {
	rdb := setupTestRedis(t)

	notificationRepo := repository.NewNotificationRepository(rdb)
	notificationSvc := NewNotificationService(notificationRepo)
	chatRepo := repository.NewChatRepository(rdb)

	return &chatTestEnv{
		svc:              NewChatService(chatRepo, notificationSvc),
		notificationSvc:  notificationSvc,
		notificationRepo: notificationRepo,
	}
}

func TestChatService_StartRoomAndListRooms(t *testing.T) {
	env := setupChatService(t)
	ctx := context.Background()

	room, err := env.svc.StartRoom(ctx, 1, "Where is my order?")
	require.NoError(t, err)
	assert.NotEmpty(t, room.ID)
	assert.Equal(t, uint(1), room.UserID)
	assert.Equal(t, "Where is my order?", room.Subject)

	// another customer's room
	_, err = env.svc.StartRoom(ctx, 2, "Refund question")
	require.NoError(t, err)

	mine, err := env.svc.GetUserRooms(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, room.ID, mine[0].ID)

	all, err := env.svc.GetAllRooms(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestChatService_SendMessage(t *testing.T) {
	env := setupChatService(t)
	ctx := context.Background()

	room, err := env.svc.StartRoom(ctx, 1, "Sizing help")
	require.NoError(t, err)

	msg, err := env.svc.SendMessage(ctx, 1, false, room.ID, "Does the jacket run small?")
	require.NoError(t, err)
	assert.Equal(t, room.ID, msg.RoomID)
	assert.Equal(t, uint(1), msg.SenderID)
	assert.False(t, msg.FromStaff)

	messages, err := env.svc.GetMessages(ctx, 1, false, room.ID, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "Does the jacket run small?", messages[0].Content)

	rooms, err := env.svc.GetUserRooms(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "Does the jacket run small?", rooms[0].LastMessage)
	assert.Equal(t, 0, rooms[0].UnreadCount)
}

func TestChatService_SendMessage_EmptyContent(t *testing.T) {
	env := setupChatService(t)
	ctx := context.Background()

	room, err := env.svc.StartRoom(ctx, 1, "")
	require.NoError(t, err)

	_, err = env.svc.SendMessage(ctx, 1, false, room.ID, "")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestChatService_StaffReplyNotifiesCustomer(t *testing.T) {
	env := setupChatService(t)
	ctx := context.Background()

	room, err := env.svc.StartRoom(ctx, 1, "Broken item")
	require.NoError(t, err)

	_, err = env.svc.SendMessage(ctx, 99, true, room.ID, "We will send a replacement.")
	require.NoError(t, err)

	// unread counter reflects the staff reply
	rooms, err := env.svc.GetUserRooms(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, 1, rooms[0].UnreadCount)

	// and the customer got a notification
	notifications, err := env.notificationSvc.GetNotifications(ctx, 1)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, model.NotificationTypeChatMessage, notifications[0].Type)
	assert.Equal(t, "We will send a replacement.", notifications[0].Content)

	// customer reply resets the counter
	_, err = env.svc.SendMessage(ctx, 1, false, room.ID, "Thank you!")
	require.NoError(t, err)

	rooms, err = env.svc.GetUserRooms(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, rooms[0].UnreadCount)
}

func TestChatService_ForeignRoomReadsAsNotFound(t *testing.T) {
	env := setupChatService(t)
	ctx := context.Background()

	room, err := env.svc.StartRoom(ctx, 1, "Private matter")
	require.NoError(t, err)

	_, err = env.svc.GetMessages(ctx, 2, false, room.ID, 0)
	assert.ErrorIs(t, err, ErrChatRoomNotFound)

	_, err = env.svc.SendMessage(ctx, 2, false, room.ID, "Hello?")
	assert.ErrorIs(t, err, ErrChatRoomNotFound)

	// staff can read any room
	_, err = env.svc.GetMessages(ctx, 99, true, room.ID, 0)
	assert.NoError(t, err)
}

func TestChatService_UnknownRoom(t *testing.T) {
	env := setupChatService(t)

	_, err := env.svc.GetMessages(context.Background(), 1, false, "no-such-room", 0)
	assert.ErrorIs(t, err, ErrChatRoomNotFound)
}

func TestNotificationService_MarkRead(t *testing.T) {
	env := setupChatService(t)
	ctx := context.Background()

	err := env.notificationSvc.Notify(ctx, 1, model.NotificationTypeOrderStatus, "Order shipped", "Your order is on its way", "/orders/1")
	require.NoError(t, err)
	err = env.notificationSvc.Notify(ctx, 1, model.NotificationTypeOrderStatus, "Order delivered", "Your order arrived", "/orders/1")
	require.NoError(t, err)

	notifications, err := env.notificationSvc.GetNotifications(ctx, 1)
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	assert.False(t, notifications[0].IsRead)

	require.NoError(t, env.notificationSvc.MarkRead(ctx, 1, notifications[0].ID))

	notifications, err = env.notificationSvc.GetNotifications(ctx, 1)
	require.NoError(t, err)
	read := 0
	for _, n := range notifications {
		if n.IsRead {
			read++
		}
	}
	assert.Equal(t, 1, read)

	require.NoError(t, env.notificationSvc.MarkAllRead(ctx, 1))

	notifications, err = env.notificationSvc.GetNotifications(ctx, 1)
	require.NoError(t, err)
	for _, n := range notifications {
		assert.True(t, n.IsRead)
	}
}
