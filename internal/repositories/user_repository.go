package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"skillswap-service/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository resolves user ids to profile records.
type UserRepository interface {
	Upsert(ctx context.Context, email, firstName, lastName string, photoURL *string) (models.User, error)
	GetByID(ctx context.Context, userID int) (models.User, error)
	BulkByIDs(ctx context.Context, ids []int) ([]models.User, error)
	UpdateProfile(ctx context.Context, userID int, firstName, lastName string, photoURL *string, offered, wanted []string) (models.User, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, first_name, last_name, email, photo_url, skills_offered, skills_wanted, verified, created_at`

// Upsert creates the profile on first sign-in or refreshes identity fields on
// subsequent ones. Keyed by email, which the identity provider guarantees.
func (r *UserRepo) Upsert(ctx context.Context, email, firstName, lastName string, photoURL *string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `INSERT INTO users (email, first_name, last_name, photo_url)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (email) DO UPDATE SET first_name = EXCLUDED.first_name,
            last_name = EXCLUDED.last_name,
            photo_url = COALESCE(EXCLUDED.photo_url, users.photo_url)
        RETURNING `+userColumns, email, firstName, lastName, photoURL)
	return user, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, userID int) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// BulkByIDs fetches multiple users in one query. Unknown ids are skipped.
func (r *UserRepo) BulkByIDs(ctx context.Context, ids []int) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, pq.Array(ids))
	return users, err
}

// UpdateProfile applies profile-edit changes.
func (r *UserRepo) UpdateProfile(ctx context.Context, userID int, firstName, lastName string, photoURL *string, offered, wanted []string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `UPDATE users SET first_name=$2, last_name=$3, photo_url=$4,
            skills_offered=$5, skills_wanted=$6
        WHERE id=$1
        RETURNING `+userColumns, userID, firstName, lastName, photoURL, pq.Array(offered), pq.Array(wanted))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}
