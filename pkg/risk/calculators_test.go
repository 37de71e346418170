package risk

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prorab-io/prorab-engine/pkg/models"
)

var testToday = time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

func activeProject(createdAt time.Time) *models.Project {
	return &models.Project{
		ID:        uuid.New(),
		Name:      "ЖК Северный",
		Status:    models.ProjectStatusActive,
		CreatedAt: createdAt,
	}
}

func planItem(endDate time.Time, status string) *models.WorkPlanItem {
	return &models.WorkPlanItem{
		ID:      uuid.New(),
		Name:    "Монтаж перекрытий",
		EndDate: endDate,
		Status:  status,
	}
}

func TestScheduleDeviation_NoItems(t *testing.T) {
	calc := scheduleDeviationCalculator{}
	state := &State{Project: activeProject(testToday), Today: testToday}

	score, desc := calc.Evaluate(state)
	assert.Zero(t, score)
	assert.Equal(t, "Нет элементов плана работ.", desc)
}

func TestScheduleDeviation_OneOfFourOverdue(t *testing.T) {
	calc := scheduleDeviationCalculator{}
	state := &State{
		Project: activeProject(testToday.AddDate(0, -1, 0)),
		WorkPlanItems: []*models.WorkPlanItem{
			planItem(testToday.AddDate(0, 0, -3), models.WorkItemStatusInProgress),
			planItem(testToday.AddDate(0, 0, 5), models.WorkItemStatusInProgress),
			planItem(testToday.AddDate(0, 0, 10), models.WorkItemStatusNotStarted),
			planItem(testToday.AddDate(0, 0, -3), models.WorkItemStatusCompleted),
		},
		Today: testToday,
	}

	score, desc := calc.Evaluate(state)
	assert.InDelta(t, 50.0, score, 0.001)
	assert.Equal(t, "1 из 4 работ просрочены.", desc)
}

func TestScheduleDeviation_CompletedItemsNeverOverdue(t *testing.T) {
	calc := scheduleDeviationCalculator{}
	state := &State{
		Project: activeProject(testToday.AddDate(0, -1, 0)),
		WorkPlanItems: []*models.WorkPlanItem{
			planItem(testToday.AddDate(0, 0, -10), models.WorkItemStatusCompleted),
			planItem(testToday.AddDate(0, 0, -5), models.WorkItemStatusCompleted),
		},
		Today: testToday,
	}

	score, _ := calc.Evaluate(state)
	assert.Zero(t, score)
}

func TestScheduleDeviation_AllOverdueHitsWeight(t *testing.T) {
	calc := scheduleDeviationCalculator{}
	state := &State{
		Project: activeProject(testToday.AddDate(0, -1, 0)),
		WorkPlanItems: []*models.WorkPlanItem{
			planItem(testToday.AddDate(0, 0, -1), models.WorkItemStatusInProgress),
			planItem(testToday.AddDate(0, 0, -2), models.WorkItemStatusNotStarted),
		},
		Today: testToday,
	}

	score, _ := calc.Evaluate(state)
	assert.InDelta(t, float64(FactorScheduleDeviation.MaxScore()), score, 0.001)
}

func openIssue(issueType string, dueDate *time.Time) *models.Issue {
	return &models.Issue{
		ID:          uuid.New(),
		Type:        issueType,
		Status:      models.IssueStatusOpen,
		Description: "Нарушение техники безопасности",
		DueDate:     dueDate,
	}
}

func TestOpenViolations_NoIssues(t *testing.T) {
	calc := openViolationsCalculator{}
	state := &State{Project: activeProject(testToday), Today: testToday}

	score, desc := calc.Evaluate(state)
	assert.Zero(t, score)
	assert.Equal(t, "Открытых нарушений и замечаний нет.", desc)
}

func TestOpenViolations_ViolationsAndOverdueRemark(t *testing.T) {
	calc := openViolationsCalculator{}
	pastDue := testToday.AddDate(0, 0, -2)
	state := &State{
		Project: activeProject(testToday),
		OpenIssues: []*models.Issue{
			openIssue(models.IssueTypeViolation, nil),
			openIssue(models.IssueTypeViolation, nil),
			openIssue(models.IssueTypeRemark, &pastDue),
		},
		Today: testToday,
	}

	// 2 violations * 20 + 1 overdue * 10
	score, desc := calc.Evaluate(state)
	assert.InDelta(t, 50.0, score, 0.001)
	assert.Equal(t, "2 открытых нарушений и 1 просроченных замечаний.", desc)
}

func TestOpenViolations_OverdueViolationCountsTwice(t *testing.T) {
	calc := openViolationsCalculator{}
	pastDue := testToday.AddDate(0, 0, -1)
	state := &State{
		Project:    activeProject(testToday),
		OpenIssues: []*models.Issue{openIssue(models.IssueTypeViolation, &pastDue)},
		Today:      testToday,
	}

	// One open violation that is also overdue: 20 + 10.
	score, _ := calc.Evaluate(state)
	assert.InDelta(t, 30.0, score, 0.001)
}

func TestOpenViolations_CappedAtWeight(t *testing.T) {
	calc := openViolationsCalculator{}
	pastDue := testToday.AddDate(0, 0, -30)
	issues := make([]*models.Issue, 0, 15)
	for i := 0; i < 15; i++ {
		issues = append(issues, openIssue(models.IssueTypeViolation, &pastDue))
	}
	state := &State{Project: activeProject(testToday), OpenIssues: issues, Today: testToday}

	// 15 * (20 + 10) = 450, capped at 200.
	score, _ := calc.Evaluate(state)
	assert.InDelta(t, float64(FactorOpenViolations.MaxScore()), score, 0.001)
}

func TestMissedDailyChecklists_InactiveProject(t *testing.T) {
	calc := missedDailyChecklistsCalculator{}
	project := activeProject(testToday.AddDate(0, 0, -10))
	project.Status = models.ProjectStatusPending
	state := &State{
		Project:        project,
		DailyChecklist: &models.Checklist{ID: uuid.New(), Type: models.ChecklistTypeDaily},
		Today:          testToday,
	}

	score, desc := calc.Evaluate(state)
	assert.Zero(t, score)
	assert.Equal(t, "Объект еще не активирован.", desc)
}

func TestMissedDailyChecklists_NoTemplate(t *testing.T) {
	calc := missedDailyChecklistsCalculator{}
	state := &State{Project: activeProject(testToday.AddDate(0, 0, -10)), Today: testToday}

	score, desc := calc.Evaluate(state)
	assert.Zero(t, score)
	assert.Equal(t, "Ежедневный чек-лист не настроен.", desc)
}

func TestMissedDailyChecklists_CreatedToday(t *testing.T) {
	calc := missedDailyChecklistsCalculator{}
	state := &State{
		Project:        activeProject(testToday.Add(-2 * time.Hour)),
		DailyChecklist: &models.Checklist{ID: uuid.New(), Type: models.ChecklistTypeDaily},
		Today:          testToday,
	}

	score, _ := calc.Evaluate(state)
	assert.Zero(t, score)
}

func TestMissedDailyChecklists_TwoOfFiveDaysCompleted(t *testing.T) {
	calc := missedDailyChecklistsCalculator{}
	state := &State{
		Project:        activeProject(testToday.AddDate(0, 0, -5)),
		DailyChecklist: &models.Checklist{ID: uuid.New(), Type: models.ChecklistTypeDaily},
		DailyCompletionDates: []time.Time{
			testToday.AddDate(0, 0, -4),
			testToday.AddDate(0, 0, -2),
		},
		Today: testToday,
	}

	// 5 days since creation, 2 distinct completed days, 3 missed * 10.
	score, desc := calc.Evaluate(state)
	assert.InDelta(t, 30.0, score, 0.001)
	assert.Equal(t, "Пропущено 3 из 5 ежедневных чек-листов.", desc)
}

func TestMissedDailyChecklists_DuplicateCompletionsSameDay(t *testing.T) {
	calc := missedDailyChecklistsCalculator{}
	sameDayMorning := testToday.AddDate(0, 0, -1).Add(-5 * time.Hour)
	sameDayEvening := testToday.AddDate(0, 0, -1).Add(5 * time.Hour)
	state := &State{
		Project:              activeProject(testToday.AddDate(0, 0, -3)),
		DailyChecklist:       &models.Checklist{ID: uuid.New(), Type: models.ChecklistTypeDaily},
		DailyCompletionDates: []time.Time{sameDayMorning, sameDayEvening},
		Today:                testToday,
	}

	// Two completions on the same calendar day count as one covered day.
	score, _ := calc.Evaluate(state)
	assert.InDelta(t, 20.0, score, 0.001)
}

func TestMissedDailyChecklists_CompletionTodayDoesNotOffsetPastDays(t *testing.T) {
	calc := missedDailyChecklistsCalculator{}
	state := &State{
		Project:              activeProject(testToday.AddDate(0, 0, -3)),
		DailyChecklist:       &models.Checklist{ID: uuid.New(), Type: models.ChecklistTypeDaily},
		DailyCompletionDates: []time.Time{testToday},
		Today:                testToday,
	}

	// Today is not a counted day yet, so its completion leaves all three
	// past days missed.
	score, desc := calc.Evaluate(state)
	assert.InDelta(t, 30.0, score, 0.001)
	assert.Equal(t, "Пропущено 3 из 3 ежедневных чек-листов.", desc)
}

func TestMissedDailyChecklists_CappedAtWeight(t *testing.T) {
	calc := missedDailyChecklistsCalculator{}
	state := &State{
		Project:        activeProject(testToday.AddDate(0, 0, -60)),
		DailyChecklist: &models.Checklist{ID: uuid.New(), Type: models.ChecklistTypeDaily},
		Today:          testToday,
	}

	// 60 missed days * 10 = 600, capped at 100.
	score, _ := calc.Evaluate(state)
	assert.InDelta(t, float64(FactorMissedDailyChecklists.MaxScore()), score, 0.001)
}

func TestDefaultCalculators_CoverAllFactors(t *testing.T) {
	calcs := DefaultCalculators()
	require.Len(t, calcs, 9)

	seen := make(map[FactorKey]bool, len(calcs))
	for _, c := range calcs {
		assert.False(t, seen[c.Key()], "duplicate factor %s", c.Key())
		seen[c.Key()] = true
		assert.Positive(t, c.Key().MaxScore(), "factor %s has no weight", c.Key())
		assert.NotEmpty(t, c.Key().DisplayName(), "factor %s has no display name", c.Key())
	}
}

func TestDefaultCalculators_WeatherStub(t *testing.T) {
	for _, c := range DefaultCalculators() {
		if c.Key() != FactorWeatherConditions {
			continue
		}
		score, desc := c.Evaluate(&State{})
		assert.InDelta(t, 10.0, score, 0.001)
		assert.NotEmpty(t, desc)
		return
	}
	t.Fatal("weather calculator not registered")
}

func TestFactorKey_EventType(t *testing.T) {
	assert.Equal(t, "SCHEDULE_DEVIATION", FactorScheduleDeviation.EventType())
	assert.Equal(t, "OPEN_VIOLATIONS", FactorOpenViolations.EventType())
	assert.Equal(t, "MISSED_DAILY_CHECKLISTS", FactorMissedDailyChecklists.EventType())
}

type panickingCalculator struct{}

func (panickingCalculator) Key() FactorKey { return FactorReportingDiscipline }

func (panickingCalculator) Evaluate(_ *State) (float64, string) {
	panic("nil state access")
}

func TestEvaluate_RecoversFromPanic(t *testing.T) {
	score, desc := Evaluate(panickingCalculator{}, &State{})
	assert.Zero(t, score)
	assert.Contains(t, desc, "Не удалось рассчитать фактор")
	assert.Contains(t, desc, "nil state access")
}

func TestEvaluate_PassesThroughNormally(t *testing.T) {
	calc := StaticCalculator{FactorKey: FactorMaterialSupply, Score: 42, Description: "тест"}
	score, desc := Evaluate(calc, &State{})
	assert.InDelta(t, 42.0, score, 0.001)
	assert.Equal(t, "тест", desc)
}
