package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"skillswap-service/internal/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

// listNotificationsCap bounds a single listing; notifications accumulate
// unboundedly otherwise.
const listNotificationsCap = 100

// NotificationRepository stores per-user workflow notifications.
type NotificationRepository interface {
	Create(ctx context.Context, userID int, ntype models.NotificationType, message string, source *models.User) (models.Notification, error)
	List(ctx context.Context, userID int) ([]models.Notification, error)
	MarkRead(ctx context.Context, notificationID, userID int) error
	MarkAllRead(ctx context.Context, userID int) error
}

// NotificationRepo is a sqlx implementation of NotificationRepository.
type NotificationRepo struct {
	db *sqlx.DB
}

// NewNotificationRepo constructs a NotificationRepo.
func NewNotificationRepo(db *sqlx.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

const notificationColumns = `id, user_id, ntype, message, source_user_id, source_name, source_photo, read, created_at`

// Create stores an unread notification, copying the source user's display
// fields at write time. The copies are never invalidated afterwards.
func (r *NotificationRepo) Create(ctx context.Context, userID int, ntype models.NotificationType, message string, source *models.User) (models.Notification, error) {
	var sourceID *int
	var sourceName, sourcePhoto *string
	if source != nil {
		sourceID = &source.ID
		name := source.DisplayName()
		sourceName = &name
		sourcePhoto = source.PhotoURL
	}

	var n models.Notification
	err := r.db.GetContext(ctx, &n, `INSERT INTO notifications (user_id, ntype, message, source_user_id, source_name, source_photo)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING `+notificationColumns, userID, ntype, message, sourceID, sourceName, sourcePhoto)
	return n, err
}

// List returns the newest notifications first.
func (r *NotificationRepo) List(ctx context.Context, userID int) ([]models.Notification, error) {
	var list []models.Notification
	err := r.db.SelectContext(ctx, &list, `SELECT `+notificationColumns+` FROM notifications
        WHERE user_id=$1
        ORDER BY created_at DESC, id DESC
        LIMIT $2`, userID, listNotificationsCap)
	return list, err
}

// MarkRead flips the read flag; only the owner may do so.
func (r *NotificationRepo) MarkRead(ctx context.Context, notificationID, userID int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET read=TRUE WHERE id=$1 AND user_id=$2`, notificationID, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead flips every unread notification for the user in one statement,
// so the batch is all-or-nothing.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET read=TRUE WHERE user_id=$1 AND read=FALSE`, userID)
	return err
}
