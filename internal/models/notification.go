package models

import "time"

// NotificationType tags the workflow transition that produced a notification.
type NotificationType string

const (
	NotifyPeerRequest  NotificationType = "peer_request"
	NotifyPeerAccepted NotificationType = "peer_accepted"
	NotifyPeerRejected NotificationType = "peer_rejected"
)

// Notification is a persisted per-user notification. Source display fields
// are denormalized copies with no invalidation guarantee.
type Notification struct {
	ID           int              `db:"id" json:"id"`
	UserID       int              `db:"user_id" json:"user_id"`
	Type         NotificationType `db:"ntype" json:"type"`
	Message      string           `db:"message" json:"message"`
	SourceUserID *int             `db:"source_user_id" json:"source_user_id,omitempty"`
	SourceName   *string          `db:"source_name" json:"source_name,omitempty"`
	SourcePhoto  *string          `db:"source_photo" json:"source_photo,omitempty"`
	Read         bool             `db:"read" json:"read"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
}
