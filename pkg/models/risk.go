package models

import (
	"time"

	"github.com/google/uuid"
)

// RiskLevel is the four-band categorical label derived from the total score.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "LOW"
	RiskLevelMedium   RiskLevel = "MEDIUM"
	RiskLevelHigh     RiskLevel = "HIGH"
	RiskLevelCritical RiskLevel = "CRITICAL"
)

// rank orders risk levels for comparisons; higher is worse.
func (l RiskLevel) rank() int {
	switch l {
	case RiskLevelLow:
		return 0
	case RiskLevelMedium:
		return 1
	case RiskLevelHigh:
		return 2
	case RiskLevelCritical:
		return 3
	}
	return -1
}

// AtLeast reports whether l is as severe as other or worse.
func (l RiskLevel) AtLeast(other RiskLevel) bool {
	return l.rank() >= other.rank()
}

// RiskFactor is one factor's snapshot inside a project's risk breakdown.
// Recomputed wholesale on every aggregation pass, never updated in place.
type RiskFactor struct {
	Name     string            `json:"name"`
	Score    int               `json:"score"`
	MaxScore int               `json:"max_score"`
	Details  RiskFactorDetails `json:"details"`
}

// RiskFactorDetails carries the human-readable justification for a factor's
// current score.
type RiskFactorDetails struct {
	Description string `json:"description"`
}

// RiskEvent is an immutable ledger entry recording one factor's score change.
// Created only by the risk service, never updated or deleted.
type RiskEvent struct {
	ID               uuid.UUID  `json:"id"`
	ProjectID        uuid.UUID  `json:"project_id"`
	Timestamp        time.Time  `json:"timestamp"`
	ScoreChange      int        `json:"score_change"`
	NewScore         int        `json:"new_score"`
	EventType        string     `json:"event_type"`
	Description      string     `json:"description"`
	TriggeringUserID *uuid.UUID `json:"triggering_user_id,omitempty"`
}

// RiskHistoryEntry is a ledger event enriched with the resolved initiator
// name. The name is a read-time join, not stored state.
type RiskHistoryEntry struct {
	RiskEvent
	InitiatorName string `json:"initiator_name"`
}

// RiskSnapshot is the result of a recomputation pass.
type RiskSnapshot struct {
	ProjectID     uuid.UUID    `json:"project_id"`
	RiskScore     int          `json:"risk_score"`
	RiskLevel     RiskLevel    `json:"risk_level"`
	RiskBreakdown []RiskFactor `json:"risk_breakdown"`
}
