package models

import (
	"time"

	"github.com/google/uuid"
)

// Issue types and statuses.
const (
	IssueTypeViolation = "violation"
	IssueTypeRemark    = "remark"

	IssueStatusOpen                = "open"
	IssueStatusPendingVerification = "pending_verification"
	IssueStatusResolved            = "resolved"
	IssueStatusClosed              = "closed"
)

// Issue is an inspector's remark or violation raised against a project.
type Issue struct {
	ID           uuid.UUID  `json:"id"`
	ProjectID    uuid.UUID  `json:"project_id"`
	TaskID       *uuid.UUID `json:"task_id,omitempty"`
	Type         string     `json:"type"`
	AuthorID     uuid.UUID  `json:"author_id"`
	Status       string     `json:"status"`
	Description  string     `json:"description"`
	DueDate      *time.Time `json:"due_date,omitempty"`

	ResolutionComment *string    `json:"resolution_comment,omitempty"`
	ResolutionPhotos  []string   `json:"resolution_photos,omitempty"`
	ResolvedByID      *uuid.UUID `json:"resolved_by_id,omitempty"`
	ResolvedAt        *time.Time `json:"resolved_at,omitempty"`

	VerifiedByID        *uuid.UUID `json:"verified_by_id,omitempty"`
	VerifiedAt          *time.Time `json:"verified_at,omitempty"`
	VerificationComment *string    `json:"verification_comment,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// IsOpen reports whether the issue still counts against the project's risk.
func (i *Issue) IsOpen() bool {
	return i.Status == IssueStatusOpen || i.Status == IssueStatusPendingVerification
}

// IsOverdue reports whether the issue has a due date in the past.
func (i *Issue) IsOverdue(today time.Time) bool {
	return i.DueDate != nil && i.DueDate.Before(today)
}
