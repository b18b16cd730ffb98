package ws

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"skillswap-service/internal/auth"
	"skillswap-service/internal/observability"
	"skillswap-service/internal/repositories"
	"skillswap-service/internal/telemetry"
)

// ConversationWSHandler handles live subscriptions to a conversation's
// message log.
type ConversationWSHandler struct {
	hub              *Hub
	conversationRepo repositories.ConversationRepository
	tokens           *auth.TokenManager
	emitter          *telemetry.EventEmitter
}

// NewConversationWSHandler constructs a ConversationWSHandler.
func NewConversationWSHandler(hub *Hub, conversationRepo repositories.ConversationRepository, tokens *auth.TokenManager, emitter *telemetry.EventEmitter) *ConversationWSHandler {
	return &ConversationWSHandler{hub: hub, conversationRepo: conversationRepo, tokens: tokens, emitter: emitter}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection and registers the client in the
// conversation room. Closing the socket is the unsubscribe handle.
func (h *ConversationWSHandler) Handle(c *gin.Context) {
	conversationID, err := strconv.Atoi(c.Param("conversation_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	ctx, span := otel.Tracer("skillswap-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, ok := authenticateWS(c, h.tokens)
	if !ok {
		return
	}

	conv, err := h.conversationRepo.GetByID(c.Request.Context(), conversationID)
	if err != nil || !conv.HasParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized for conversation"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	info := ConnInfo{
		ConnID:      newConnID(),
		Kind:        StreamConversation,
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	h.hub.AddConversationClient(conversationID, conn, info)

	observability.IncWSActive(StreamConversation)
	observability.IncWSEvent(StreamConversation, "ws_connect")
	h.emitter.Emit(ctx, "ws_events.conversations", "ws_events", "ws_connect", &userID,
		map[string]any{"conversation_id": conversationID, "conn_id": info.ConnID})

	go func() {
		defer func() {
			h.hub.RemoveConversationClient(conversationID, conn)
			observability.DecWSActive(StreamConversation)
			observability.IncWSEvent(StreamConversation, "ws_disconnect")
			h.emitter.Emit(context.Background(), "ws_events.conversations", "ws_events", "ws_disconnect", &userID,
				map[string]any{
					"conversation_id": conversationID,
					"conn_id":         info.ConnID,
					"duration_ms":     time.Since(info.ConnectedAt).Milliseconds(),
				})
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// authenticateWS resolves the bearer token from the Authorization header or
// the token query parameter.
func authenticateWS(c *gin.Context, tokens *auth.TokenManager) (int, bool) {
	token := c.GetHeader("Authorization")
	if len(token) > 7 && token[:7] == "Bearer " {
		token = token[7:]
	} else {
		token = c.Query("token")
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return 0, false
	}

	userID, err := tokens.Validate(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return 0, false
	}
	return userID, true
}
