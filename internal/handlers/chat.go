package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"skillswap-service/internal/models"
	"skillswap-service/internal/observability"
	"skillswap-service/internal/repositories"
	"skillswap-service/internal/telemetry"
	"skillswap-service/internal/ws"
)

// ChatHandler manages conversation and message endpoints.
type ChatHandler struct {
	conversationRepo repositories.ConversationRepository
	messageRepo      repositories.MessageRepository
	peerRepo         repositories.PeerRepository
	userRepo         repositories.UserRepository
	hub              *ws.Hub
	emitter          *telemetry.EventEmitter
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(conversationRepo repositories.ConversationRepository, messageRepo repositories.MessageRepository, peerRepo repositories.PeerRepository, userRepo repositories.UserRepository, hub *ws.Hub, emitter *telemetry.EventEmitter) *ChatHandler {
	return &ChatHandler{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		peerRepo:         peerRepo,
		userRepo:         userRepo,
		hub:              hub,
		emitter:          emitter,
	}
}

// ListConversations returns the caller's conversations, most recent first,
// with peer display names joined in.
func (h *ChatHandler) ListConversations(c *gin.Context) {
	userID := c.GetInt("userID")

	conversations, err := h.conversationRepo.ListForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversations"})
		return
	}

	peerIDs := make([]int, 0, len(conversations))
	for _, conv := range conversations {
		peerIDs = append(peerIDs, conv.PeerID)
	}
	users, err := h.userRepo.BulkByIDs(c.Request.Context(), peerIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load peer info"})
		return
	}
	nameByID := map[int]string{}
	for _, u := range users {
		nameByID[u.ID] = u.DisplayName()
	}

	type conversationResponse struct {
		models.ConversationSummary
		PeerName string `json:"peer_name,omitempty"`
	}
	responses := make([]conversationResponse, 0, len(conversations))
	for _, conv := range conversations {
		responses = append(responses, conversationResponse{ConversationSummary: conv, PeerName: nameByID[conv.PeerID]})
	}

	c.JSON(http.StatusOK, gin.H{"conversations": responses})
}

// StartConversation creates or returns the canonical conversation with a peer.
func (h *ChatHandler) StartConversation(c *gin.Context) {
	var req struct {
		PeerID int `json:"peer_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	if userID == req.PeerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot chat with yourself"})
		return
	}

	peers, err := h.peerRepo.ArePeers(c.Request.Context(), userID, req.PeerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify peer relation"})
		return
	}
	if !peers {
		c.JSON(http.StatusForbidden, gin.H{"error": "users are not peers"})
		return
	}

	conv, err := h.conversationRepo.CreateOrGet(c.Request.Context(), userID, req.PeerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create conversation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversation_id": conv.ID})
}

// GetMessages returns the full ordered message log of a conversation.
func (h *ChatHandler) GetMessages(c *gin.Context) {
	conv, _, ok := h.loadConversationForCaller(c)
	if !ok {
		return
	}

	msgs, err := h.messageRepo.ListByConversation(c.Request.Context(), conv.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// PostMessage appends a message to the conversation and broadcasts it.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	conv, userID, ok := h.loadConversationForCaller(c)
	if !ok {
		return
	}

	var req struct {
		Content      string             `json:"content" binding:"required"`
		Type         models.MessageType `json:"type"`
		FileURL      string             `json:"file_url"`
		FileSize     int64              `json:"file_size"`
		MimeType     string             `json:"mime_type"`
		DurationSecs *int               `json:"duration_secs"`
		ThumbnailURL *string            `json:"thumbnail_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Type == "" {
		req.Type = models.MessageText
	}
	if !models.ValidMessageType(req.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown message type"})
		return
	}

	var meta *models.FileMeta
	if req.Type != models.MessageText {
		if req.FileURL == "" || req.MimeType == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file_url and mime_type are required for non-text messages"})
			return
		}
		meta = &models.FileMeta{
			FileURL:      req.FileURL,
			FileSize:     req.FileSize,
			MimeType:     req.MimeType,
			DurationSecs: req.DurationSecs,
			ThumbnailURL: req.ThumbnailURL,
		}
	}

	msg, err := h.messageRepo.Create(c.Request.Context(), conv, userID, req.Type, req.Content, meta)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	observability.IncMessageStored(string(req.Type))
	h.emitter.Emit(c.Request.Context(), "chats.message_sent", "chat_events", "message_sent", &userID,
		gin.H{"conversation_id": conv.ID, "message_id": msg.ID, "type": msg.Type})

	h.hub.BroadcastMessage(conv.ID, msg)
	c.JSON(http.StatusCreated, msg)
}

// MarkRead zeroes the caller's unread counter and flags their received
// messages as read.
func (h *ChatHandler) MarkRead(c *gin.Context) {
	conv, userID, ok := h.loadConversationForCaller(c)
	if !ok {
		return
	}

	if err := h.messageRepo.MarkConversationRead(c.Request.Context(), conv.ID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not mark conversation read"})
		return
	}

	h.hub.BroadcastRead(conv.ID, userID)
	c.Status(http.StatusNoContent)
}

// loadConversationForCaller resolves the :conversation_id param and enforces
// that the caller is a participant.
func (h *ChatHandler) loadConversationForCaller(c *gin.Context) (models.Conversation, int, bool) {
	conversationID, err := strconv.Atoi(c.Param("conversation_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return models.Conversation{}, 0, false
	}

	userID := c.GetInt("userID")
	conv, err := h.conversationRepo.GetByID(c.Request.Context(), conversationID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrConversationNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "conversation not found"})
		return models.Conversation{}, 0, false
	}
	if !conv.HasParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a conversation participant"})
		return models.Conversation{}, 0, false
	}
	return conv, userID, true
}
