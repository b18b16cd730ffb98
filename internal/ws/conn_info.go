package ws

import "time"

// Stream kinds tracked by the hub.
const (
	StreamConversation = "conversation"
	StreamUser         = "user"
)

// ConnInfo carries per-connection metadata for diagnostics and disconnect
// events. It never influences routing; rooms are keyed by id alone.
type ConnInfo struct {
	ConnID      string
	Kind        string
	UserID      int
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
