package risk

import (
	"time"

	"github.com/prorab-io/prorab-engine/pkg/models"
)

// State is the persisted project state a recomputation pass runs against.
// It is loaded once, inside the recompute transaction, and handed to every
// calculator; calculators never touch storage themselves.
type State struct {
	Project       *models.Project
	WorkPlanItems []*models.WorkPlanItem
	OpenIssues    []*models.Issue

	// DailyChecklist is the project's daily checklist template, nil if none
	// is defined.
	DailyChecklist *models.Checklist

	// DailyCompletionDates are the completion dates recorded against the
	// daily checklist template (may contain several per day).
	DailyCompletionDates []time.Time

	// Today is the reference date for all overdue checks, injected so
	// calculators stay deterministic under test.
	Today time.Time
}

// truncateToDay drops the time-of-day component.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
