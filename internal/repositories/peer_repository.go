package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"skillswap-service/internal/models"
)

var (
	ErrRequestNotFound  = errors.New("peer request not found")
	ErrDuplicateRequest = errors.New("active peer request already exists")
	ErrAlreadyPeers     = errors.New("users are already peers")
	ErrRequestResolved  = errors.New("peer request already resolved")
	ErrNotReceiver      = errors.New("only the receiver can resolve a request")
)

const pqUniqueViolation = "23505"

// PeerRepository implements the peer-connection workflow: pending requests,
// accept/decline transitions and the symmetric accepted-peer relation.
type PeerRepository interface {
	SendRequest(ctx context.Context, senderID, receiverID int, message *string) (models.PeerRequest, error)
	GetRequest(ctx context.Context, requestID int) (models.PeerRequest, error)
	Respond(ctx context.Context, requestID, actorID int, accept bool) (models.PeerRequest, error)
	RemovePeer(ctx context.Context, userA, userB int) error
	ArePeers(ctx context.Context, userA, userB int) (bool, error)
	ListPeers(ctx context.Context, userID int) ([]models.PeerSummary, error)
	ListRequests(ctx context.Context, userID int, direction string) ([]models.PeerRequestSummary, error)
}

// PeerRepo is a sqlx implementation of PeerRepository.
type PeerRepo struct {
	db *sqlx.DB
}

// NewPeerRepo constructs a PeerRepo.
func NewPeerRepo(db *sqlx.DB) *PeerRepo {
	return &PeerRepo{db: db}
}

const requestColumns = `id, user_low, user_high, sender_id, receiver_id, status, message, created_at, updated_at`

// SendRequest creates a pending request between the pair. The check is
// direction-agnostic: a pending request from either side, or an existing
// peer relation, rejects the attempt. The partial unique index on the sorted
// pair closes the race between two simultaneous opposite-direction sends.
func (r *PeerRepo) SendRequest(ctx context.Context, senderID, receiverID int, message *string) (models.PeerRequest, error) {
	if senderID == receiverID {
		return models.PeerRequest{}, errors.New("cannot send request to self")
	}
	low, high := models.SortPair(senderID, receiverID)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.PeerRequest{}, err
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM peers WHERE user_low=$1 AND user_high=$2)`, low, high); err != nil {
		return models.PeerRequest{}, err
	}
	if exists {
		return models.PeerRequest{}, ErrAlreadyPeers
	}

	if err := tx.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM peer_requests WHERE user_low=$1 AND user_high=$2 AND status='pending')`, low, high); err != nil {
		return models.PeerRequest{}, err
	}
	if exists {
		return models.PeerRequest{}, ErrDuplicateRequest
	}

	var req models.PeerRequest
	err = tx.GetContext(ctx, &req, `INSERT INTO peer_requests (user_low, user_high, sender_id, receiver_id, message)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING `+requestColumns, low, high, senderID, receiverID, message)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return models.PeerRequest{}, ErrDuplicateRequest
		}
		return models.PeerRequest{}, err
	}

	return req, tx.Commit()
}

// GetRequest fetches a request by id.
func (r *PeerRepo) GetRequest(ctx context.Context, requestID int) (models.PeerRequest, error) {
	var req models.PeerRequest
	err := r.db.GetContext(ctx, &req, `SELECT `+requestColumns+` FROM peer_requests WHERE id=$1`, requestID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PeerRequest{}, ErrRequestNotFound
	}
	return req, err
}

// Respond transitions a pending request to accepted or declined. On accept
// the symmetric peer relation is written in the same transaction, so the
// request status and the relationship can never disagree.
func (r *PeerRepo) Respond(ctx context.Context, requestID, actorID int, accept bool) (models.PeerRequest, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.PeerRequest{}, err
	}
	defer tx.Rollback()

	var req models.PeerRequest
	err = tx.GetContext(ctx, &req, `SELECT `+requestColumns+` FROM peer_requests WHERE id=$1 FOR UPDATE`, requestID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PeerRequest{}, ErrRequestNotFound
	}
	if err != nil {
		return models.PeerRequest{}, err
	}
	if req.ReceiverID != actorID {
		return models.PeerRequest{}, ErrNotReceiver
	}
	if req.Status != models.RequestPending {
		return models.PeerRequest{}, ErrRequestResolved
	}

	status := models.RequestDeclined
	if accept {
		status = models.RequestAccepted
	}
	err = tx.GetContext(ctx, &req, `UPDATE peer_requests SET status=$2, updated_at=NOW()
        WHERE id=$1 RETURNING `+requestColumns, requestID, status)
	if err != nil {
		return models.PeerRequest{}, err
	}

	if accept {
		if _, err := tx.ExecContext(ctx, `INSERT INTO peers (user_low, user_high) VALUES ($1, $2)
            ON CONFLICT (user_low, user_high) DO NOTHING`, req.UserLow, req.UserHigh); err != nil {
			return models.PeerRequest{}, err
		}
	}

	return req, tx.Commit()
}

// RemovePeer dissolves the relation and clears any request rows between the
// pair, stale pending ones included. A no-op on non-peers.
func (r *PeerRepo) RemovePeer(ctx context.Context, userA, userB int) error {
	low, high := models.SortPair(userA, userB)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM peers WHERE user_low=$1 AND user_high=$2`, low, high); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM peer_requests WHERE user_low=$1 AND user_high=$2`, low, high); err != nil {
		return err
	}
	return tx.Commit()
}

// ArePeers reports whether the relation exists.
func (r *PeerRepo) ArePeers(ctx context.Context, userA, userB int) (bool, error) {
	low, high := models.SortPair(userA, userB)
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM peers WHERE user_low=$1 AND user_high=$2)`, low, high)
	return exists, err
}

// ListPeers returns the user's accepted peers with display fields.
func (r *PeerRepo) ListPeers(ctx context.Context, userID int) ([]models.PeerSummary, error) {
	query := `SELECT
            CASE WHEN p.user_low=$1 THEN p.user_high ELSE p.user_low END AS peer_id,
            u.first_name || ' ' || u.last_name AS peer_name,
            u.email AS peer_email,
            u.photo_url AS peer_photo,
            p.created_at AS since
        FROM peers p
        JOIN users u ON u.id = CASE WHEN p.user_low=$1 THEN p.user_high ELSE p.user_low END
        WHERE p.user_low=$1 OR p.user_high=$1
        ORDER BY p.created_at DESC`
	var peers []models.PeerSummary
	err := r.db.SelectContext(ctx, &peers, query, userID)
	return peers, err
}

// ListRequests returns pending requests for the user, filtered by direction
// (incoming or outgoing), joined with the counterpart's display fields.
func (r *PeerRepo) ListRequests(ctx context.Context, userID int, direction string) ([]models.PeerRequestSummary, error) {
	var where, peerJoin string
	switch direction {
	case "incoming":
		where = `r.receiver_id=$1`
		peerJoin = `r.sender_id`
	case "outgoing":
		where = `r.sender_id=$1`
		peerJoin = `r.receiver_id`
	default:
		return nil, errors.New("direction must be incoming or outgoing")
	}

	query := `SELECT r.id, r.user_low, r.user_high, r.sender_id, r.receiver_id, r.status, r.message,
            r.created_at, r.updated_at,
            u.id AS peer_id,
            u.first_name || ' ' || u.last_name AS peer_name,
            u.email AS peer_email,
            u.photo_url AS peer_photo
        FROM peer_requests r
        JOIN users u ON u.id = ` + peerJoin + `
        WHERE ` + where + ` AND r.status='pending'
        ORDER BY r.created_at DESC`
	var requests []models.PeerRequestSummary
	err := r.db.SelectContext(ctx, &requests, query, userID)
	return requests, err
}
