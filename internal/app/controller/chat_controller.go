package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"storefront-backend/internal/app/service"
	apperrors "storefront-backend/internal/errors"
	"storefront-backend/internal/middleware"
	ws "storefront-backend/internal/websocket"
)

var allowedWSOrigins = map[string]bool{}

// SetAllowedOrigins configures which origins may open websocket connections
func SetAllowedOrigins(origins []string) {
	for _, origin := range origins {
		allowedWSOrigins[origin] = true
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return allowedWSOrigins[r.Header.Get("Origin")]
	},
}

type ChatController struct {
	chatService service.ChatService
	hub         *ws.Hub
}

func NewChatController(chatService service.ChatService, hub *ws.Hub) *ChatController {
	return &ChatController{
		chatService: chatService,
		hub:         hub,
	}
}

type StartRoomRequest struct {
	Subject string `json:"subject"`
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// StartRoom opens a support conversation for the user
// POST /api/v1/chats/rooms
func (ctrl *ChatController) StartRoom(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req StartRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationFailed, "Invalid chat room data")
		return
	}

	room, err := ctrl.chatService.StartRoom(c.Request.Context(), userID, req.Subject)
	if err != nil {
		log.Error("Failed to start chat room", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Failed to start chat")
		return
	}

	ctrl.hub.JoinRoom(userID, room.ID)

	log.Info("Chat room started", map[string]interface{}{
		"user_id": userID,
		"room_id": room.ID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Chat room created",
		"room":    room,
	})
}

// GetRooms returns the rooms visible to the caller. Staff see every room,
// customers only their own.
// GET /api/v1/chats/rooms
func (ctrl *ChatController) GetRooms(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var rooms interface{}
	var err error
	if middleware.IsStaff(c) {
		rooms, err = ctrl.chatService.GetAllRooms(c.Request.Context())
	} else {
		rooms, err = ctrl.chatService.GetUserRooms(c.Request.Context(), userID)
	}
	if err != nil {
		log.Error("Failed to fetch chat rooms", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Failed to fetch chat rooms")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rooms": rooms,
	})
}

// GetMessages returns recent messages of a room
// GET /api/v1/chats/rooms/:id/messages
func (ctrl *ChatController) GetMessages(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	roomID := c.Param("id")
	limit := 0
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	messages, err := ctrl.chatService.GetMessages(c.Request.Context(), userID, middleware.IsStaff(c), roomID, limit)
	if err != nil {
		if errors.Is(err, service.ErrChatRoomNotFound) {
			apperrors.NotFound(c, apperrors.ChatRoomNotFound, "Chat room not found")
			return
		}
		log.Error("Failed to fetch chat messages", err, map[string]interface{}{
			"user_id": userID,
			"room_id": roomID,
		})
		apperrors.InternalError(c, "Failed to fetch messages")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
	})
}

// SendMessage posts a message to a room and fans it out over websocket
// POST /api/v1/chats/rooms/:id/messages
func (ctrl *ChatController) SendMessage(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	roomID := c.Param("id")

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationFailed, "Message content is required")
		return
	}

	message, err := ctrl.chatService.SendMessage(c.Request.Context(), userID, middleware.IsStaff(c), roomID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrChatRoomNotFound):
			apperrors.NotFound(c, apperrors.ChatRoomNotFound, "Chat room not found")
			return
		case errors.Is(err, service.ErrEmptyMessage):
			apperrors.BadRequest(c, apperrors.ValidationFailed, "Message content is empty")
			return
		default:
			log.Error("Failed to send message", err, map[string]interface{}{
				"user_id": userID,
				"room_id": roomID,
			})
			apperrors.InternalError(c, "Failed to send message")
			return
		}
	}

	if err := ctrl.hub.SendToRoom(roomID, gin.H{
		"type":    "chat_message",
		"room_id": roomID,
		"message": message,
	}, userID); err != nil {
		log.Warn("Failed to broadcast message", map[string]interface{}{
			"room_id": roomID,
			"error":   err.Error(),
		})
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": message,
	})
}

// JoinRoom subscribes the caller's websocket sessions to a room
// POST /api/v1/chats/rooms/:id/join
func (ctrl *ChatController) JoinRoom(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	roomID := c.Param("id")

	// room access is checked the same way message access is
	if _, err := ctrl.chatService.GetMessages(c.Request.Context(), userID, middleware.IsStaff(c), roomID, 1); err != nil {
		if errors.Is(err, service.ErrChatRoomNotFound) {
			apperrors.NotFound(c, apperrors.ChatRoomNotFound, "Chat room not found")
			return
		}
		log.Error("Failed to join chat room", err, map[string]interface{}{
			"user_id": userID,
			"room_id": roomID,
		})
		apperrors.InternalError(c, "Failed to join chat room")
		return
	}

	ctrl.hub.JoinRoom(userID, roomID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Joined chat room",
	})
}

// LeaveRoom unsubscribes the caller's websocket sessions from a room
// POST /api/v1/chats/rooms/:id/leave
func (ctrl *ChatController) LeaveRoom(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	ctrl.hub.LeaveRoom(userID, c.Param("id"))

	c.JSON(http.StatusOK, gin.H{
		"message": "Left chat room",
	})
}

// WebSocketHandler upgrades the connection and starts the pumps. The token
// arrives as a query parameter; it is never logged.
// GET /api/v1/chats/ws
func (ctrl *ChatController) WebSocketHandler(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err)
		return
	}

	client := &ws.Client{
		Hub:           ctrl.hub,
		Conn:          &ws.Conn{Conn: conn},
		UserID:        userID,
		Send:          make(chan []byte, 2048),
		Rooms:         make(map[string]bool),
		LastResetTime: time.Now(),
	}

	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("WebSocket connection established", map[string]interface{}{
		"user_id": userID,
	})
}
