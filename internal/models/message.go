package models

import "time"

// MessageType distinguishes text messages from file-backed ones.
type MessageType string

const (
	MessageText     MessageType = "text"
	MessageImage    MessageType = "image"
	MessageDocument MessageType = "document"
	MessageVoice    MessageType = "voice"
)

// ValidMessageType reports whether t is a known message type.
func ValidMessageType(t MessageType) bool {
	switch t {
	case MessageText, MessageImage, MessageDocument, MessageVoice:
		return true
	}
	return false
}

// Message represents a chat message. Content is immutable once created;
// only the read flag may change afterwards.
type Message struct {
	ID             int         `db:"id" json:"id"`
	ConversationID int         `db:"conversation_id" json:"conversation_id"`
	SenderID       int         `db:"sender_id" json:"sender_id"`
	ReceiverID     int         `db:"receiver_id" json:"receiver_id"`
	Type           MessageType `db:"msg_type" json:"type"`
	Content        string      `db:"content" json:"content"`
	FileURL        *string     `db:"file_url" json:"file_url,omitempty"`
	FileSize       *int64      `db:"file_size" json:"file_size,omitempty"`
	MimeType       *string     `db:"mime_type" json:"mime_type,omitempty"`
	DurationSecs   *int        `db:"duration_secs" json:"duration_secs,omitempty"`
	ThumbnailURL   *string     `db:"thumbnail_url" json:"thumbnail_url,omitempty"`
	Read           bool        `db:"read" json:"read"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
}

// FileMeta carries the metadata for non-text messages.
type FileMeta struct {
	FileURL      string  `json:"file_url"`
	FileSize     int64   `json:"file_size"`
	MimeType     string  `json:"mime_type"`
	DurationSecs *int    `json:"duration_secs,omitempty"`
	ThumbnailURL *string `json:"thumbnail_url,omitempty"`
}

// ChatEvent is broadcast over conversation websockets.
type ChatEvent struct {
	Type           string   `json:"type"`
	Message        *Message `json:"message,omitempty"`
	ConversationID int      `json:"conversation_id,omitempty"`
	UserID         int      `json:"user_id,omitempty"`
	Typing         bool     `json:"typing,omitempty"`
}

// UserEvent is broadcast over per-user websocket streams.
type UserEvent struct {
	Type         string        `json:"type"`
	Request      *PeerRequest  `json:"request,omitempty"`
	Notification *Notification `json:"notification,omitempty"`
	UserID       int           `json:"user_id,omitempty"`
	Online       bool          `json:"online,omitempty"`
}
