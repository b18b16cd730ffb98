package db

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            first_name TEXT NOT NULL,
            last_name TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            photo_url TEXT,
            skills_offered TEXT[] NOT NULL DEFAULT '{}',
            skills_wanted TEXT[] NOT NULL DEFAULT '{}',
            verified BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS peer_requests (
            id SERIAL PRIMARY KEY,
            user_low INT NOT NULL,
            user_high INT NOT NULL,
            sender_id INT NOT NULL,
            receiver_id INT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            message TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            CHECK (user_low < user_high),
            CHECK (status IN ('pending', 'accepted', 'declined'))
        );`,
		`CREATE UNIQUE INDEX IF NOT EXISTS peer_requests_active_pair
            ON peer_requests (user_low, user_high) WHERE status = 'pending';`,
		`CREATE TABLE IF NOT EXISTS peers (
            user_low INT NOT NULL,
            user_high INT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            PRIMARY KEY (user_low, user_high),
            CHECK (user_low < user_high)
        );`,
		`CREATE TABLE IF NOT EXISTS conversations (
            id SERIAL PRIMARY KEY,
            user1_id INT NOT NULL,
            user2_id INT NOT NULL,
            last_message_preview TEXT NOT NULL DEFAULT '',
            last_sender_id INT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            UNIQUE (user1_id, user2_id),
            CHECK (user1_id < user2_id)
        );`,
		`CREATE TABLE IF NOT EXISTS conversation_unread (
            conversation_id INT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
            user_id INT NOT NULL,
            unread INT NOT NULL DEFAULT 0,
            PRIMARY KEY (conversation_id, user_id),
            CHECK (unread >= 0)
        );`,
		`CREATE TABLE IF NOT EXISTS messages (
            id SERIAL PRIMARY KEY,
            conversation_id INT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
            sender_id INT NOT NULL,
            receiver_id INT NOT NULL,
            msg_type TEXT NOT NULL DEFAULT 'text',
            content TEXT NOT NULL,
            file_url TEXT,
            file_size BIGINT,
            mime_type TEXT,
            duration_secs INT,
            thumbnail_url TEXT,
            read BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            CHECK (msg_type IN ('text', 'image', 'document', 'voice'))
        );`,
		`CREATE INDEX IF NOT EXISTS messages_conversation_order
            ON messages (conversation_id, created_at, id);`,
		`CREATE TABLE IF NOT EXISTS notifications (
            id SERIAL PRIMARY KEY,
            user_id INT NOT NULL,
            ntype TEXT NOT NULL,
            message TEXT NOT NULL,
            source_user_id INT,
            source_name TEXT,
            source_photo TEXT,
            read BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            CHECK (ntype IN ('peer_request', 'peer_accepted', 'peer_rejected'))
        );`,
		`CREATE INDEX IF NOT EXISTS notifications_user_created
            ON notifications (user_id, created_at DESC);`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	log.Println("database migrations applied")
	return nil
}
