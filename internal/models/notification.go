package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a persisted record of task activity addressed to a user,
// written as a side effect of assignment. Unread until the user marks it.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	TaskID    uuid.UUID `json:"task_id"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
