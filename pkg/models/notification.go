package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a persisted in-app notification. Delivery channels
// (push, email) are handled by an external service.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Message   string    `json:"message"`
	Link      *string   `json:"link,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
