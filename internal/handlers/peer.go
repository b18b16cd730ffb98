package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"skillswap-service/internal/models"
	"skillswap-service/internal/observability"
	"skillswap-service/internal/repositories"
	"skillswap-service/internal/telemetry"
	"skillswap-service/internal/ws"
)

// PeerHandler manages the peer-connection workflow endpoints.
type PeerHandler struct {
	peerRepo         repositories.PeerRepository
	userRepo         repositories.UserRepository
	notificationRepo repositories.NotificationRepository
	hub              *ws.Hub
	emitter          *telemetry.EventEmitter
}

// NewPeerHandler builds a PeerHandler.
func NewPeerHandler(peerRepo repositories.PeerRepository, userRepo repositories.UserRepository, notificationRepo repositories.NotificationRepository, hub *ws.Hub, emitter *telemetry.EventEmitter) *PeerHandler {
	return &PeerHandler{
		peerRepo:         peerRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		hub:              hub,
		emitter:          emitter,
	}
}

// ListPeers returns the caller's accepted peers.
func (h *PeerHandler) ListPeers(c *gin.Context) {
	userID := c.GetInt("userID")

	peers, err := h.peerRepo.ListPeers(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load peers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"peers": peers})
}

// ListRequests returns the caller's pending requests, incoming or outgoing.
func (h *PeerHandler) ListRequests(c *gin.Context) {
	userID := c.GetInt("userID")
	direction := c.DefaultQuery("direction", "incoming")
	if direction != "incoming" && direction != "outgoing" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "direction must be incoming or outgoing"})
		return
	}

	requests, err := h.peerRepo.ListRequests(c.Request.Context(), userID, direction)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load requests"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// SendRequest creates a pending connection request towards another user.
func (h *PeerHandler) SendRequest(c *gin.Context) {
	var req struct {
		ReceiverID int     `json:"receiver_id" binding:"required"`
		Message    *string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	if userID == req.ReceiverID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot send request to yourself"})
		return
	}

	if _, err := h.userRepo.GetByID(c.Request.Context(), req.ReceiverID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "receiver not found"})
		return
	}

	request, err := h.peerRepo.SendRequest(c.Request.Context(), userID, req.ReceiverID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicateRequest):
			c.JSON(http.StatusConflict, gin.H{"error": "request already pending", "code": "duplicate_request"})
		case errors.Is(err, repositories.ErrAlreadyPeers):
			c.JSON(http.StatusConflict, gin.H{"error": "users are already peers", "code": "already_peers"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send request"})
		}
		return
	}

	observability.IncPeerTransition("sent")
	h.emitter.Emit(c.Request.Context(), "peers.request_sent", "peer_events", "request_sent", &userID,
		gin.H{"request_id": request.ID, "receiver_id": req.ReceiverID})

	sender, err := h.userRepo.GetByID(c.Request.Context(), userID)
	if err == nil {
		notification, nerr := h.notificationRepo.Create(c.Request.Context(), req.ReceiverID, models.NotifyPeerRequest,
			fmt.Sprintf("%s wants to connect with you", sender.DisplayName()), &sender)
		if nerr == nil {
			h.hub.NotifyUser(req.ReceiverID, models.UserEvent{Type: "peer_request", Request: &request, Notification: &notification})
		}
	}

	c.JSON(http.StatusCreated, request)
}

// RespondRequest accepts or declines a pending request addressed to the caller.
func (h *PeerHandler) RespondRequest(c *gin.Context) {
	requestID, err := strconv.Atoi(c.Param("request_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	var req struct {
		Decision string `json:"decision" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Decision != "accepted" && req.Decision != "declined" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "decision must be accepted or declined"})
		return
	}
	accept := req.Decision == "accepted"

	userID := c.GetInt("userID")
	request, err := h.peerRepo.Respond(c.Request.Context(), requestID, userID, accept)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		case errors.Is(err, repositories.ErrNotReceiver):
			c.JSON(http.StatusForbidden, gin.H{"error": "not the request receiver"})
		case errors.Is(err, repositories.ErrRequestResolved):
			c.JSON(http.StatusConflict, gin.H{"error": "request already resolved"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not resolve request"})
		}
		return
	}

	observability.IncPeerTransition(req.Decision)
	h.emitter.Emit(c.Request.Context(), "peers.request_resolved", "peer_events", "request_"+req.Decision, &userID,
		gin.H{"request_id": request.ID, "sender_id": request.SenderID})

	receiver, err := h.userRepo.GetByID(c.Request.Context(), userID)
	if err == nil {
		ntype := models.NotifyPeerRejected
		text := fmt.Sprintf("%s declined your connection request", receiver.DisplayName())
		if accept {
			ntype = models.NotifyPeerAccepted
			text = fmt.Sprintf("%s accepted your connection request", receiver.DisplayName())
		}
		notification, nerr := h.notificationRepo.Create(c.Request.Context(), request.SenderID, ntype, text, &receiver)
		if nerr == nil {
			h.hub.NotifyUser(request.SenderID, models.UserEvent{Type: string(ntype), Request: &request, Notification: &notification})
		}
	}

	c.JSON(http.StatusOK, request)
}

// RemovePeer dissolves the relation with another user. Removing a non-peer
// succeeds without effect.
func (h *PeerHandler) RemovePeer(c *gin.Context) {
	peerID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	userID := c.GetInt("userID")
	if err := h.peerRepo.RemovePeer(c.Request.Context(), userID, peerID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not remove peer"})
		return
	}

	observability.IncPeerTransition("removed")
	c.Status(http.StatusNoContent)
}
