package models

import "time"

// Presence is the ephemeral online/typing state of a user. It is overwritten
// freely and never persisted historically.
type Presence struct {
	UserID   int       `json:"user_id"`
	Online   bool      `json:"online"`
	LastSeen time.Time `json:"last_seen"`
	// TypingIn is the conversation the user is typing in, 0 when not typing.
	TypingIn int        `json:"typing_in,omitempty"`
	TypingAt *time.Time `json:"typing_at,omitempty"`
}
