package models

import (
	"time"

	"github.com/google/uuid"
)

// Project status lifecycle.
const (
	ProjectStatusPending   = "pending"
	ProjectStatusActive    = "active"
	ProjectStatusCompleted = "completed"
)

// Project represents a construction site under supervision.
// RiskScore, RiskLevel and RiskBreakdown are owned exclusively by the risk
// service; no other code path writes them.
type Project struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address,omitempty"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`

	RiskScore     int          `json:"risk_score"`
	RiskLevel     RiskLevel    `json:"risk_level"`
	RiskBreakdown []RiskFactor `json:"risk_breakdown"`
}

// IsActive reports whether daily workflows (checklists, reports) apply.
func (p *Project) IsActive() bool {
	return p.Status == ProjectStatusActive
}
