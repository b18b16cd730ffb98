package repositories

import (
	"context"
	"database/sql"
	"errors"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"

	"skillswap-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// previewLimit caps the denormalized last-message preview length.
const previewLimit = 120

// MessageRepository owns the append-only message log and the per-participant
// unread bookkeeping.
type MessageRepository interface {
	Create(ctx context.Context, conv models.Conversation, senderID int, msgType models.MessageType, content string, meta *models.FileMeta) (models.Message, error)
	ListByConversation(ctx context.Context, conversationID int) ([]models.Message, error)
	MarkConversationRead(ctx context.Context, conversationID, userID int) error
	UnreadCount(ctx context.Context, conversationID, userID int) (int, error)
}

// MessageRepo is a sqlx implementation of MessageRepository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

const messageColumns = `id, conversation_id, sender_id, receiver_id, msg_type, content,
    file_url, file_size, mime_type, duration_secs, thumbnail_url, read, created_at`

// truncatePreview caps the preview at previewLimit bytes without splitting a
// multi-byte rune.
func truncatePreview(content string) string {
	if len(content) <= previewLimit {
		return content
	}
	cut := previewLimit
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut]
}

// Create appends a message and, in the same transaction, bumps the
// receiver's unread counter by one and refreshes the conversation preview.
func (r *MessageRepo) Create(ctx context.Context, conv models.Conversation, senderID int, msgType models.MessageType, content string, meta *models.FileMeta) (models.Message, error) {
	receiverID := conv.Counterpart(senderID)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Message{}, err
	}
	defer tx.Rollback()

	var fileURL, mimeType, thumbnailURL *string
	var fileSize *int64
	var durationSecs *int
	if meta != nil {
		fileURL = &meta.FileURL
		fileSize = &meta.FileSize
		mimeType = &meta.MimeType
		durationSecs = meta.DurationSecs
		thumbnailURL = meta.ThumbnailURL
	}

	var msg models.Message
	err = tx.GetContext(ctx, &msg, `INSERT INTO messages
            (conversation_id, sender_id, receiver_id, msg_type, content, file_url, file_size, mime_type, duration_secs, thumbnail_url)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING `+messageColumns,
		conv.ID, senderID, receiverID, msgType, content, fileURL, fileSize, mimeType, durationSecs, thumbnailURL)
	if err != nil {
		return models.Message{}, err
	}

	preview := truncatePreview(content)
	if _, err := tx.ExecContext(ctx, `UPDATE conversations
        SET last_message_preview=$2, last_sender_id=$3, updated_at=NOW()
        WHERE id=$1`, conv.ID, preview, senderID); err != nil {
		return models.Message{}, err
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO conversation_unread (conversation_id, user_id, unread)
        VALUES ($1, $2, 1)
        ON CONFLICT (conversation_id, user_id) DO UPDATE SET unread = conversation_unread.unread + 1`,
		conv.ID, receiverID); err != nil {
		return models.Message{}, err
	}

	return msg, tx.Commit()
}

// ListByConversation returns the full ordered log, ascending by send time
// with the serial id as tie-break.
func (r *MessageRepo) ListByConversation(ctx context.Context, conversationID int) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, `SELECT `+messageColumns+` FROM messages
        WHERE conversation_id=$1
        ORDER BY created_at ASC, id ASC`, conversationID)
	return msgs, err
}

// MarkConversationRead zeroes the caller's unread counter and flips the read
// flag on the caller's unread received messages, atomically. Callers only
// ever touch their own counter and their own received messages.
func (r *MessageRepo) MarkConversationRead(ctx context.Context, conversationID, userID int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE messages SET read=TRUE
        WHERE conversation_id=$1 AND receiver_id=$2 AND read=FALSE`, conversationID, userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO conversation_unread (conversation_id, user_id, unread)
        VALUES ($1, $2, 0)
        ON CONFLICT (conversation_id, user_id) DO UPDATE SET unread = 0`, conversationID, userID); err != nil {
		return err
	}
	return tx.Commit()
}

// UnreadCount reads the user's unread counter for the conversation.
func (r *MessageRepo) UnreadCount(ctx context.Context, conversationID, userID int) (int, error) {
	var unread int
	err := r.db.GetContext(ctx, &unread, `SELECT unread FROM conversation_unread
        WHERE conversation_id=$1 AND user_id=$2`, conversationID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return unread, err
}
