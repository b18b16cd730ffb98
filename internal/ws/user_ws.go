package ws

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"

	"skillswap-service/internal/auth"
	"skillswap-service/internal/observability"
	"skillswap-service/internal/telemetry"
)

// UserWSHandler handles the per-user event stream: peer requests,
// notifications and peer presence changes.
type UserWSHandler struct {
	hub     *Hub
	tokens  *auth.TokenManager
	emitter *telemetry.EventEmitter
}

// NewUserWSHandler constructs a UserWSHandler.
func NewUserWSHandler(hub *Hub, tokens *auth.TokenManager, emitter *telemetry.EventEmitter) *UserWSHandler {
	return &UserWSHandler{hub: hub, tokens: tokens, emitter: emitter}
}

// Handle upgrades the connection and registers the client on its own stream.
func (h *UserWSHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("skillswap-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, ok := authenticateWS(c, h.tokens)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	info := ConnInfo{
		ConnID:      newConnID(),
		Kind:        StreamUser,
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	h.hub.AddUserClient(userID, conn, info)

	observability.IncWSActive(StreamUser)
	observability.IncWSEvent(StreamUser, "ws_connect")
	h.emitter.Emit(ctx, "ws_events.users", "ws_events", "ws_connect", &userID,
		map[string]any{"conn_id": info.ConnID})

	go func() {
		defer func() {
			h.hub.RemoveUserClient(userID, conn)
			observability.DecWSActive(StreamUser)
			observability.IncWSEvent(StreamUser, "ws_disconnect")
			h.emitter.Emit(context.Background(), "ws_events.users", "ws_events", "ws_disconnect", &userID,
				map[string]any{
					"conn_id":     info.ConnID,
					"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
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
