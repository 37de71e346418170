package models

import (
	"time"

	"github.com/google/uuid"
)

// Work plan item statuses.
const (
	WorkItemStatusNotStarted = "not_started"
	WorkItemStatusInProgress = "in_progress"
	WorkItemStatusCompleted  = "completed"
)

// WorkPlan is the agreed schedule of works for a project. One per project.
type WorkPlan struct {
	ID        uuid.UUID       `json:"id"`
	ProjectID uuid.UUID       `json:"project_id"`
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Items     []*WorkPlanItem `json:"items,omitempty"`
}

// WorkPlanItem is a single scheduled work with its own date window.
type WorkPlanItem struct {
	ID         uuid.UUID `json:"id"`
	WorkPlanID uuid.UUID `json:"work_plan_id"`
	Name       string    `json:"name"`
	Quantity   float64   `json:"quantity"`
	Unit       string    `json:"unit"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Order      int       `json:"order"`
	Status     string    `json:"status"`
	Progress   float64   `json:"progress"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsOverdue reports whether the item's window closed before the given day
// without the work being completed.
func (i *WorkPlanItem) IsOverdue(today time.Time) bool {
	return i.EndDate.Before(today) && i.Status != WorkItemStatusCompleted
}
