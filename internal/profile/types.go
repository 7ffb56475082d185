package profile

import "time"

// Profile is the persisted per-user preference record used to bias prompt
// text. One JSON file per user id on disk; the field set below is the file
// schema (no versioning field).
type Profile struct {
	UserID           string    `json:"user_id"`
	Name             string    `json:"name"`
	City             string    `json:"city"`
	Profession       string    `json:"profession"`
	ExpertiseLevel   string    `json:"expertise_level"` // beginner, intermediate, expert
	Interests        []string  `json:"interests"`
	PreferredTopics  []string  `json:"preferred_topics"`
	CreatedAt        time.Time `json:"created_at"`
	LastUpdated      time.Time `json:"last_updated"`
	InteractionCount int       `json:"interaction_count"`
}
