package models

import (
	"time"

	"github.com/google/uuid"
)

// Task statuses.
const (
	TaskStatusPending   = "pending"
	TaskStatusCompleted = "completed"
	TaskStatusVerified  = "verified"
	TaskStatusRejected  = "rejected"
)

// Task is an executable unit of work backed by a work plan item. Foremen
// complete tasks with evidence; inspectors verify or reject the completion.
type Task struct {
	ID             uuid.UUID `json:"id"`
	ProjectID      uuid.UUID `json:"project_id"`
	WorkPlanItemID uuid.UUID `json:"work_plan_item_id"`
	Name           string    `json:"name"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	Status         string    `json:"status"`

	CompletedByID     *uuid.UUID `json:"completed_by_id,omitempty"`
	VerifiedByID      *uuid.UUID `json:"verified_by_id,omitempty"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	CompletionComment *string    `json:"completion_comment,omitempty"`
	CompletionPhotos  []string   `json:"completion_photos,omitempty"`
	Geolocation       *string    `json:"geolocation,omitempty"`
	ActualQuantity    *float64   `json:"actual_quantity,omitempty"`
}
