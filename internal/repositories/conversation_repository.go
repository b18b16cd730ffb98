package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"skillswap-service/internal/models"
)

var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepository maps user pairs to their canonical conversation.
type ConversationRepository interface {
	CreateOrGet(ctx context.Context, userID, peerID int) (models.Conversation, error)
	GetByID(ctx context.Context, conversationID int) (models.Conversation, error)
	ListForUser(ctx context.Context, userID int) ([]models.ConversationSummary, error)
}

// ConversationRepo is a sqlx implementation of ConversationRepository.
type ConversationRepo struct {
	db *sqlx.DB
}

// NewConversationRepo constructs a ConversationRepo.
func NewConversationRepo(db *sqlx.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

const conversationColumns = `id, user1_id, user2_id, last_message_preview, last_sender_id, created_at, updated_at`

// CreateOrGet returns the conversation for the pair, creating it on first
// contact. The sorted-pair unique constraint makes creation idempotent under
// concurrent first contact from both sides.
func (r *ConversationRepo) CreateOrGet(ctx context.Context, userID, peerID int) (models.Conversation, error) {
	if userID == peerID {
		return models.Conversation{}, errors.New("cannot start conversation with self")
	}
	low, high := models.SortPair(userID, peerID)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Conversation{}, err
	}
	defer tx.Rollback()

	var conv models.Conversation
	err = tx.GetContext(ctx, &conv, `INSERT INTO conversations (user1_id, user2_id)
        VALUES ($1, $2)
        ON CONFLICT (user1_id, user2_id) DO UPDATE SET user1_id = EXCLUDED.user1_id
        RETURNING `+conversationColumns, low, high)
	if err != nil {
		return models.Conversation{}, err
	}

	// Seed both unread counters so reads never miss a row.
	if _, err := tx.ExecContext(ctx, `INSERT INTO conversation_unread (conversation_id, user_id)
        VALUES ($1, $2), ($1, $3)
        ON CONFLICT (conversation_id, user_id) DO NOTHING`, conv.ID, low, high); err != nil {
		return models.Conversation{}, err
	}

	return conv, tx.Commit()
}

// GetByID fetches a conversation by id.
func (r *ConversationRepo) GetByID(ctx context.Context, conversationID int) (models.Conversation, error) {
	var conv models.Conversation
	err := r.db.GetContext(ctx, &conv, `SELECT `+conversationColumns+` FROM conversations WHERE id=$1`, conversationID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, ErrConversationNotFound
	}
	return conv, err
}

// ListForUser returns conversation summaries for the user, most recently
// active first, each carrying that user's own unread counter.
func (r *ConversationRepo) ListForUser(ctx context.Context, userID int) ([]models.ConversationSummary, error) {
	query := `SELECT c.id, c.user1_id, c.user2_id, c.last_message_preview, c.last_sender_id, c.updated_at,
            COALESCE(cu.unread, 0) AS unread
        FROM conversations c
        LEFT JOIN conversation_unread cu ON cu.conversation_id = c.id AND cu.user_id=$1
        WHERE c.user1_id=$1 OR c.user2_id=$1
        ORDER BY c.updated_at DESC`
	rows, err := r.db.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.ConversationSummary
	for rows.Next() {
		var row struct {
			models.Conversation
			Unread int `db:"unread"`
		}
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		result = append(result, models.ConversationSummary{
			ConversationID:     row.ID,
			PeerID:             row.Counterpart(userID),
			LastMessagePreview: row.LastMessagePreview,
			LastSenderID:       row.LastSenderID,
			Unread:             row.Unread,
			UpdatedAt:          row.UpdatedAt,
		})
	}
	return result, rows.Err()
}
