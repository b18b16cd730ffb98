package models

import "time"

// Conversation represents the canonical thread between exactly two users.
// Participant ids are stored sorted, mirroring the unique pair constraint.
type Conversation struct {
	ID                 int       `db:"id" json:"id"`
	User1ID            int       `db:"user1_id" json:"user1_id"`
	User2ID            int       `db:"user2_id" json:"user2_id"`
	LastMessagePreview string    `db:"last_message_preview" json:"last_message_preview"`
	LastSenderID       *int      `db:"last_sender_id" json:"last_sender_id,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// HasParticipant reports whether the user belongs to the conversation.
func (c Conversation) HasParticipant(userID int) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// Counterpart returns the other participant's id.
func (c Conversation) Counterpart(userID int) int {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}

// ConversationSummary is an API-friendly view of a conversation for one
// participant, carrying that participant's own unread counter.
type ConversationSummary struct {
	ConversationID     int       `db:"id" json:"conversation_id"`
	PeerID             int       `json:"peer_id"`
	LastMessagePreview string    `db:"last_message_preview" json:"last_message_preview"`
	LastSenderID       *int      `db:"last_sender_id" json:"last_sender_id,omitempty"`
	Unread             int       `db:"unread" json:"unread"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}
