package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"skillswap-service/internal/models"
	"skillswap-service/internal/observability"
)

// Hub maintains active websocket subscriptions: one room per conversation and
// one event stream per user. Closing a connection is the unsubscribe handle;
// removal releases the room once it empties.
type Hub struct {
	convRooms    map[int]map[*websocket.Conn]bool
	userStreams  map[int]map[*websocket.Conn]bool
	convConnInfo map[int]map[*websocket.Conn]ConnInfo
	userConnInfo map[int]map[*websocket.Conn]ConnInfo
	mu           sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		convRooms:    make(map[int]map[*websocket.Conn]bool),
		userStreams:  make(map[int]map[*websocket.Conn]bool),
		convConnInfo: make(map[int]map[*websocket.Conn]ConnInfo),
		userConnInfo: make(map[int]map[*websocket.Conn]ConnInfo),
	}
}

// AddConversationClient registers a connection to a conversation room.
func (h *Hub) AddConversationClient(conversationID int, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.convRooms[conversationID]; !ok {
		h.convRooms[conversationID] = make(map[*websocket.Conn]bool)
	}
	h.convRooms[conversationID][conn] = true
	if _, ok := h.convConnInfo[conversationID]; !ok {
		h.convConnInfo[conversationID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.convConnInfo[conversationID][conn] = info
}

// RemoveConversationClient removes a conversation connection.
func (h *Hub) RemoveConversationClient(conversationID int, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.convRooms[conversationID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.convRooms, conversationID)
		}
	}
	if infos, ok := h.convConnInfo[conversationID]; ok {
		delete(infos, conn)
		if len(infos) == 0 {
			delete(h.convConnInfo, conversationID)
		}
	}
}

// AddUserClient registers a connection to a user's event stream.
func (h *Hub) AddUserClient(userID int, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.userStreams[userID]; !ok {
		h.userStreams[userID] = make(map[*websocket.Conn]bool)
	}
	h.userStreams[userID][conn] = true
	if _, ok := h.userConnInfo[userID]; !ok {
		h.userConnInfo[userID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.userConnInfo[userID][conn] = info
}

// RemoveUserClient removes a user-stream connection.
func (h *Hub) RemoveUserClient(userID int, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.userStreams[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.userStreams, userID)
		}
	}
	if infos, ok := h.userConnInfo[userID]; ok {
		delete(infos, conn)
		if len(infos) == 0 {
			delete(h.userConnInfo, userID)
		}
	}
}

// BroadcastMessage sends a new-message event to all clients in the
// conversation room.
func (h *Hub) BroadcastMessage(conversationID int, msg models.Message) {
	event := models.ChatEvent{Type: "message", Message: &msg}
	h.broadcastConversation(conversationID, event)
}

// BroadcastRead notifies the room that a participant marked the thread read.
func (h *Hub) BroadcastRead(conversationID, userID int) {
	event := models.ChatEvent{Type: "read", ConversationID: conversationID, UserID: userID}
	h.broadcastConversation(conversationID, event)
}

// BroadcastTyping notifies the room of a typing-indicator change.
func (h *Hub) BroadcastTyping(conversationID, userID int, typing bool) {
	event := models.ChatEvent{Type: "typing", ConversationID: conversationID, UserID: userID, Typing: typing}
	h.broadcastConversation(conversationID, event)
}

func (h *Hub) broadcastConversation(conversationID int, event models.ChatEvent) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.convRooms[conversationID]))
	for conn := range h.convRooms[conversationID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	payload, _ := json.Marshal(event)
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.RemoveConversationClient(conversationID, conn)
			observability.IncWSEvent(StreamConversation, "ws_error")
		}
	}
}

// NotifyUser pushes an event onto every active connection of the user's
// stream. Users without an open stream simply miss the push; the backing
// store remains the source of truth.
func (h *Hub) NotifyUser(userID int, event models.UserEvent) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.userStreams[userID]))
	for conn := range h.userStreams[userID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	payload, _ := json.Marshal(event)
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.RemoveUserClient(userID, conn)
			observability.IncWSEvent(StreamUser, "ws_error")
		}
	}
}
