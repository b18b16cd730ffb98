package models

import (
	"time"

	"github.com/lib/pq"
)

// User represents a SkillSwap member profile.
type User struct {
	ID            int            `db:"id" json:"id"`
	FirstName     string         `db:"first_name" json:"first_name"`
	LastName      string         `db:"last_name" json:"last_name"`
	Email         string         `db:"email" json:"email"`
	PhotoURL      *string        `db:"photo_url" json:"photo_url,omitempty"`
	SkillsOffered pq.StringArray `db:"skills_offered" json:"skills_offered"`
	SkillsWanted  pq.StringArray `db:"skills_wanted" json:"skills_wanted"`
	Verified      bool           `db:"verified" json:"verified"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

// DisplayName renders the name shown alongside denormalized records.
func (u User) DisplayName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
