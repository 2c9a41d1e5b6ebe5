package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"storefront-backend/pkg/logger"
)

const maxMessagesPerSecond = 10

// ClientMessage is an inbound control message (typing indicators)
type ClientMessage struct {
	Type   string `json:"type"` // typing_start, typing_stop
	RoomID string `json:"room_id"`
}

// Client is one websocket session of a user
type Client struct {
	Hub           *Hub
	Conn          *Conn
	UserID        uint
	Send          chan []byte
	Rooms         map[string]bool // chat rooms this session has joined
	mu            sync.RWMutex
	MessageCount  int
	LastResetTime time.Time
	RateMu        sync.Mutex
}

// Hub tracks connected clients and routes chat and notification traffic.
// A user may hold several sessions at once.
type Hub struct {
	clients map[uint][]*Client

	// room membership by chat room id
	rooms map[string]map[uint]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage
	direct     chan *DirectMessage

	mu sync.RWMutex
}

// BroadcastMessage targets every member of a chat room except the sender
type BroadcastMessage struct {
	RoomID   string
	Message  []byte
	SenderID uint
}

// DirectMessage targets all sessions of one user
type DirectMessage struct {
	UserID  uint
	Message []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint][]*Client),
		rooms:      make(map[string]map[uint]bool),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *BroadcastMessage, 1024),
		direct:     make(chan *DirectMessage, 1024),
	}
}

// Run processes hub events; call in its own goroutine
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"user_id":        client.UserID,
				"total_sessions": len(h.clients[client.UserID]),
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if clientList, ok := h.clients[client.UserID]; ok {
				newList := make([]*Client, 0, len(clientList))
				for _, c := range clientList {
					if c != client {
						newList = append(newList, c)
					}
				}

				if len(newList) == 0 {
					delete(h.clients, client.UserID)

					client.mu.RLock()
					for roomID := range client.Rooms {
						if users, ok := h.rooms[roomID]; ok {
							delete(users, client.UserID)
							if len(users) == 0 {
								delete(h.rooms, roomID)
							}
						}
					}
					client.mu.RUnlock()
				} else {
					h.clients[client.UserID] = newList
				}

				close(client.Send)
			}
			h.mu.Unlock()
			logger.Info("WebSocket client unregistered", map[string]interface{}{
				"user_id": client.UserID,
			})

		case message := <-h.broadcast:
			h.mu.RLock()
			if users, ok := h.rooms[message.RoomID]; ok {
				for userID := range users {
					if userID == message.SenderID {
						continue
					}
					h.deliverLocked(userID, message.Message)
				}
			}
			h.mu.RUnlock()

		case message := <-h.direct:
			h.mu.RLock()
			h.deliverLocked(message.UserID, message.Message)
			h.mu.RUnlock()
		}
	}
}

// deliverLocked sends to every session of a user; caller holds h.mu
func (h *Hub) deliverLocked(userID uint, message []byte) {
	clientList, ok := h.clients[userID]
	if !ok {
		return
	}
	for _, client := range clientList {
		select {
		case client.Send <- message:
		default:
			// Send buffer stuck; drop the session asynchronously
			go h.Unregister(client)
			logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
				"user_id": userID,
			})
		}
	}
}

// JoinRoom subscribes all of a user's sessions to a chat room
func (h *Hub) JoinRoom(userID uint, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clientList, ok := h.clients[userID]; ok {
		for _, client := range clientList {
			client.mu.Lock()
			client.Rooms[roomID] = true
			client.mu.Unlock()
		}

		if _, ok := h.rooms[roomID]; !ok {
			h.rooms[roomID] = make(map[uint]bool)
		}
		h.rooms[roomID][userID] = true

		logger.Debug("User joined chat room", map[string]interface{}{
			"user_id": userID,
			"room_id": roomID,
		})
	}
}

// LeaveRoom unsubscribes a user from a chat room
func (h *Hub) LeaveRoom(userID uint, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clientList, ok := h.clients[userID]; ok {
		for _, client := range clientList {
			client.mu.Lock()
			delete(client.Rooms, roomID)
			client.mu.Unlock()
		}
	}

	if users, ok := h.rooms[roomID]; ok {
		delete(users, userID)
		if len(users) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// SendToRoom broadcasts a payload to a chat room, excluding the sender.
// Delivery is best-effort; a full broadcast queue drops the message.
func (h *Hub) SendToRoom(roomID string, message interface{}, senderID uint) error {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Error("Failed to marshal room message", err, nil)
		return err
	}

	select {
	case h.broadcast <- &BroadcastMessage{
		RoomID:   roomID,
		Message:  data,
		SenderID: senderID,
	}:
		return nil
	default:
		logger.Warn("Broadcast channel full, message dropped", map[string]interface{}{
			"room_id": roomID,
		})
		return nil
	}
}

// PushToUser delivers a payload to all sessions of one user. Satisfies the
// notification pusher used by the services.
func (h *Hub) PushToUser(userID uint, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal user message", err, nil)
		return
	}

	select {
	case h.direct <- &DirectMessage{UserID: userID, Message: data}:
	default:
		logger.Warn("Direct channel full, message dropped", map[string]interface{}{
			"user_id": userID,
		})
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// IsUserOnline reports whether a user has at least one session
func (h *Hub) IsUserOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// HandleClientMessage processes an inbound message from a session
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	client.RateMu.Lock()
	now := time.Now()
	if now.Sub(client.LastResetTime) >= time.Second {
		client.MessageCount = 0
		client.LastResetTime = now
	}
	client.MessageCount++
	count := client.MessageCount
	client.RateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("Rate limit exceeded", map[string]interface{}{
			"user_id": client.UserID,
			"count":   count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse client message", map[string]interface{}{
			"user_id": client.UserID,
			"error":   err.Error(),
		})
		return
	}

	if msg.Type == "typing_start" || msg.Type == "typing_stop" {
		client.mu.RLock()
		_, isInRoom := client.Rooms[msg.RoomID]
		client.mu.RUnlock()

		if !isInRoom {
			return
		}

		response := map[string]interface{}{
			"type":    msg.Type,
			"room_id": msg.RoomID,
			"user_id": client.UserID,
		}
		if err := h.SendToRoom(msg.RoomID, response, client.UserID); err != nil {
			logger.Error("Failed to broadcast typing event", err, map[string]interface{}{
				"user_id": client.UserID,
				"room_id": msg.RoomID,
			})
		}
	}
}
