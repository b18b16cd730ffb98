package presence

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"skillswap-service/internal/models"
)

// presenceTTL bounds how long a presence record outlives its last write, so
// crashed clients drift back to offline without an explicit signoff.
const presenceTTL = 5 * time.Minute

// Store keeps ephemeral per-user presence in Redis. Writes are best-effort:
// errors are logged and dropped, lost updates self-heal on the next write.
type Store struct {
	rdb *redis.Client
}

// NewStore wraps a Redis client.
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func presenceKey(userID int) string {
	return "presence:" + strconv.Itoa(userID)
}

// SetOnline upserts the online flag. Going offline stamps last_seen.
func (s *Store) SetOnline(ctx context.Context, userID int, online bool) {
	fields := map[string]interface{}{
		"online": strconv.FormatBool(online),
	}
	if !online {
		fields["last_seen"] = time.Now().UTC().Format(time.RFC3339Nano)
	}

	key := presenceKey(userID)
	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, key, fields)
	if !online {
		pipe.HDel(ctx, key, "typing_in", "typing_at")
	}
	pipe.Expire(ctx, key, presenceTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("presence write failed user=%d: %v", userID, err)
	}
}

// SetTyping records the conversation the user is typing in; conversationID 0
// clears the indicator.
func (s *Store) SetTyping(ctx context.Context, userID, conversationID int) {
	key := presenceKey(userID)
	var err error
	if conversationID == 0 {
		err = s.rdb.HDel(ctx, key, "typing_in", "typing_at").Err()
	} else {
		pipe := s.rdb.Pipeline()
		pipe.HSet(ctx, key, map[string]interface{}{
			"typing_in": strconv.Itoa(conversationID),
			"typing_at": time.Now().UTC().Format(time.RFC3339Nano),
		})
		pipe.Expire(ctx, key, presenceTTL)
		_, err = pipe.Exec(ctx)
	}
	if err != nil {
		log.Printf("typing write failed user=%d: %v", userID, err)
	}
}

// Get reads the user's presence. A missing or expired key reads as offline.
func (s *Store) Get(ctx context.Context, userID int) (models.Presence, error) {
	fields, err := s.rdb.HGetAll(ctx, presenceKey(userID)).Result()
	if err != nil {
		return models.Presence{}, err
	}

	p := models.Presence{UserID: userID}
	if len(fields) == 0 {
		return p, nil
	}

	p.Online = fields["online"] == "true"
	if raw, ok := fields["last_seen"]; ok {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			p.LastSeen = ts
		}
	}
	if raw, ok := fields["typing_in"]; ok {
		if id, err := strconv.Atoi(raw); err == nil {
			p.TypingIn = id
		}
	}
	if raw, ok := fields["typing_at"]; ok {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			p.TypingAt = &ts
		}
	}
	return p, nil
}
