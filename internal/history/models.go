package history

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Interaction is one completed ask: the query, the prompt that was sent,
// and the model's answer.
type Interaction struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    string    `json:"user_id"`
	Query     string    `json:"query"`
	Prompt    string    `json:"prompt"`
	Model     string    `json:"model"`
	Answer    string    `json:"answer"`
	Status    string    `json:"status"`
}
