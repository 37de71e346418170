package models

import (
	"time"

	"github.com/google/uuid"
)

// Checklist template types.
const (
	ChecklistTypeDaily = "daily"
	ChecklistTypeStage = "stage"
)

// Checklist completion statuses.
const (
	CompletionStatusSubmitted = "submitted"
	CompletionStatusApproved  = "approved"
	CompletionStatusRejected  = "rejected"
)

// Checklist is a template of control questions attached to a project.
// Daily checklists must be filled every calendar day while the project is
// active; missed days feed the risk engine.
type Checklist struct {
	ID        uuid.UUID        `json:"id"`
	ProjectID uuid.UUID        `json:"project_id"`
	Name      string           `json:"name"`
	Type      string           `json:"type"`
	CreatedAt time.Time        `json:"created_at"`
	Items     []*ChecklistItem `json:"items,omitempty"`
}

// ChecklistItem is a single control question on a checklist template.
type ChecklistItem struct {
	ID          uuid.UUID `json:"id"`
	ChecklistID uuid.UUID `json:"checklist_id"`
	Text        string    `json:"text"`
	Order       int       `json:"order"`
}

// ChecklistCompletion is a filled-in checklist submitted by a foreman and
// reviewed by an inspector.
type ChecklistCompletion struct {
	ID             uuid.UUID  `json:"id"`
	ChecklistID    uuid.UUID  `json:"checklist_id"`
	ProjectID      uuid.UUID  `json:"project_id"`
	SubmittedByID  uuid.UUID  `json:"submitted_by_id"`
	Status         string     `json:"status"`
	CompletionDate time.Time  `json:"completion_date"`
	ReviewedByID   *uuid.UUID `json:"reviewed_by_id,omitempty"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
	ReviewComment  *string    `json:"review_comment,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
