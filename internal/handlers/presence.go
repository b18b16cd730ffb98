package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"skillswap-service/internal/models"
	"skillswap-service/internal/repositories"
	"skillswap-service/internal/ws"
)

// presenceStore is the surface of the Redis presence tracker the handler
// needs; writes are fire-and-forget by contract.
type presenceStore interface {
	SetOnline(ctx context.Context, userID int, online bool)
	SetTyping(ctx context.Context, userID, conversationID int)
	Get(ctx context.Context, userID int) (models.Presence, error)
}

// PresenceHandler manages online/typing state endpoints.
type PresenceHandler struct {
	store            presenceStore
	peerRepo         repositories.PeerRepository
	conversationRepo repositories.ConversationRepository
	hub              *ws.Hub
}

// NewPresenceHandler builds a PresenceHandler.
func NewPresenceHandler(store presenceStore, peerRepo repositories.PeerRepository, conversationRepo repositories.ConversationRepository, hub *ws.Hub) *PresenceHandler {
	return &PresenceHandler{
		store:            store,
		peerRepo:         peerRepo,
		conversationRepo: conversationRepo,
		hub:              hub,
	}
}

// SetPresence upserts the caller's online flag and fans the change out to
// their peers' event streams.
func (h *PresenceHandler) SetPresence(c *gin.Context) {
	var req struct {
		Online *bool `json:"online" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	h.store.SetOnline(c.Request.Context(), userID, *req.Online)

	event := models.UserEvent{Type: "presence", UserID: userID, Online: *req.Online}
	if peers, err := h.peerRepo.ListPeers(c.Request.Context(), userID); err == nil {
		for _, peer := range peers {
			h.hub.NotifyUser(peer.PeerID, event)
		}
	}

	c.Status(http.StatusNoContent)
}

// SetTyping upserts the caller's typing indicator and broadcasts it to the
// conversation room. typing=false clears the indicator.
func (h *PresenceHandler) SetTyping(c *gin.Context) {
	var req struct {
		ConversationID int  `json:"conversation_id" binding:"required"`
		Typing         bool `json:"typing"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	conv, err := h.conversationRepo.GetByID(c.Request.Context(), req.ConversationID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		return
	}
	if !conv.HasParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a conversation participant"})
		return
	}

	if req.Typing {
		h.store.SetTyping(c.Request.Context(), userID, req.ConversationID)
	} else {
		h.store.SetTyping(c.Request.Context(), userID, 0)
	}

	h.hub.BroadcastTyping(req.ConversationID, userID, req.Typing)
	c.Status(http.StatusNoContent)
}

// GetPresence returns another user's presence; a missing record reads as
// offline.
func (h *PresenceHandler) GetPresence(c *gin.Context) {
	targetID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	p, err := h.store.Get(c.Request.Context(), targetID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load presence"})
		return
	}
	c.JSON(http.StatusOK, p)
}
