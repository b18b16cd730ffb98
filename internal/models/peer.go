package models

import "time"

// RequestStatus is the lifecycle state of a peer request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestDeclined RequestStatus = "declined"
)

// PeerRequest is a connection request between two users. The (UserLow,
// UserHigh) columns hold the sorted pair so that at most one pending request
// can exist per pair regardless of direction.
type PeerRequest struct {
	ID         int           `db:"id" json:"id"`
	UserLow    int           `db:"user_low" json:"-"`
	UserHigh   int           `db:"user_high" json:"-"`
	SenderID   int           `db:"sender_id" json:"sender_id"`
	ReceiverID int           `db:"receiver_id" json:"receiver_id"`
	Status     RequestStatus `db:"status" json:"status"`
	Message    *string       `db:"message" json:"message,omitempty"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at" json:"updated_at"`
}

// PeerRequestSummary is a request joined with the counterpart's display
// fields. The display fields are a read optimization copied from the users
// table at query time.
type PeerRequestSummary struct {
	PeerRequest
	PeerID    int     `db:"peer_id" json:"peer_id"`
	PeerName  string  `db:"peer_name" json:"peer_name"`
	PeerEmail string  `db:"peer_email" json:"peer_email"`
	PeerPhoto *string `db:"peer_photo" json:"peer_photo,omitempty"`
}

// PeerSummary is an accepted peer with display fields.
type PeerSummary struct {
	PeerID    int       `db:"peer_id" json:"peer_id"`
	PeerName  string    `db:"peer_name" json:"peer_name"`
	PeerEmail string    `db:"peer_email" json:"peer_email"`
	PeerPhoto *string   `db:"peer_photo" json:"peer_photo,omitempty"`
	Since     time.Time `db:"since" json:"since"`
}

// SortPair returns the two ids in ascending order.
func SortPair(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}
