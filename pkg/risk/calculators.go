package risk

import (
	"fmt"

	"github.com/prorab-io/prorab-engine/pkg/models"
)

// Calculator computes one risk dimension from loaded project state.
// Implementations must be pure: no storage access, no mutation, and no
// panics for "no data" conditions - those return (0, reassuring message).
type Calculator interface {
	Key() FactorKey
	// Evaluate returns the factor's raw score and a human-readable
	// justification. Scores are truncated to integers by the aggregator.
	Evaluate(s *State) (float64, string)
}

// DefaultCalculators returns the full calculator set in declaration order.
// Breakdown insertion order and ledger emission order follow this order.
// Six factors are extension points awaiting richer signals; they are kept as
// static calculators so aggregation and the ledger exercise all nine factors.
func DefaultCalculators() []Calculator {
	return []Calculator{
		scheduleDeviationCalculator{},
		openViolationsCalculator{},
		missedDailyChecklistsCalculator{},
		StaticCalculator{FactorKey: FactorReportingDiscipline, Score: 0, Description: "Отчетность в актуальном состоянии."},
		StaticCalculator{FactorKey: FactorTaskCompletionLag, Score: 0, Description: "Значительных задержек в верификации задач нет."},
		StaticCalculator{FactorKey: FactorMaterialSupply, Score: 0, Description: "Снабжение материалами стабильно."},
		StaticCalculator{FactorKey: FactorWeatherConditions, Score: 10, Description: "Погодные условия (демо-риск)."},
		StaticCalculator{FactorKey: FactorChecklistApproval, Score: 0, Description: "Проблем с утверждением чек-листов нет."},
		StaticCalculator{FactorKey: FactorPersonnelFluctuation, Score: 0, Description: "Численность персонала стабильна."},
	}
}

// Evaluate runs a calculator and converts any panic into a zero score with an
// error description, so one misbehaving factor cannot block the whole pass.
func Evaluate(c Calculator, s *State) (score float64, description string) {
	defer func() {
		if r := recover(); r != nil {
			score = 0
			description = fmt.Sprintf("Не удалось рассчитать фактор: %v", r)
		}
	}()
	return c.Evaluate(s)
}

// StaticCalculator always returns a fixed score and description. Used for
// factors whose real signals are not wired in yet.
type StaticCalculator struct {
	FactorKey   FactorKey
	Score       float64
	Description string
}

func (c StaticCalculator) Key() FactorKey { return c.FactorKey }

func (c StaticCalculator) Evaluate(_ *State) (float64, string) {
	return c.Score, c.Description
}

// scheduleDeviationCalculator scores the share of work plan items whose date
// window closed without completion.
type scheduleDeviationCalculator struct{}

func (scheduleDeviationCalculator) Key() FactorKey { return FactorScheduleDeviation }

func (scheduleDeviationCalculator) Evaluate(s *State) (float64, string) {
	if len(s.WorkPlanItems) == 0 {
		return 0, "Нет элементов плана работ."
	}

	today := truncateToDay(s.Today)
	overdue := 0
	for _, item := range s.WorkPlanItems {
		if item.IsOverdue(today) {
			overdue++
		}
	}

	if overdue == 0 {
		return 0, "Просроченных работ нет."
	}

	score := float64(overdue) / float64(len(s.WorkPlanItems)) * float64(FactorScheduleDeviation.MaxScore())
	description := fmt.Sprintf("%d из %d работ просрочены.", overdue, len(s.WorkPlanItems))
	return score, description
}

// openViolationsCalculator scores open violations and overdue remarks:
// 20 points per open violation, 10 per overdue issue, capped at the weight.
type openViolationsCalculator struct{}

func (openViolationsCalculator) Key() FactorKey { return FactorOpenViolations }

func (openViolationsCalculator) Evaluate(s *State) (float64, string) {
	if len(s.OpenIssues) == 0 {
		return 0, "Открытых нарушений и замечаний нет."
	}

	today := truncateToDay(s.Today)
	violations := 0
	overdue := 0
	for _, issue := range s.OpenIssues {
		if issue.Type == models.IssueTypeViolation {
			violations++
		}
		if issue.IsOverdue(today) {
			overdue++
		}
	}

	score := float64(violations*20 + overdue*10)
	if max := float64(FactorOpenViolations.MaxScore()); score > max {
		score = max
	}
	description := fmt.Sprintf("%d открытых нарушений и %d просроченных замечаний.", violations, overdue)
	return score, description
}

// missedDailyChecklistsCalculator scores calendar days since project creation
// with no daily checklist completion: 10 points per missed day, capped at the
// weight. Applies only to active projects with a daily template defined.
type missedDailyChecklistsCalculator struct{}

func (missedDailyChecklistsCalculator) Key() FactorKey { return FactorMissedDailyChecklists }

func (missedDailyChecklistsCalculator) Evaluate(s *State) (float64, string) {
	if !s.Project.IsActive() {
		return 0, "Объект еще не активирован."
	}
	if s.DailyChecklist == nil {
		return 0, "Ежедневный чек-лист не настроен."
	}

	today := truncateToDay(s.Today)
	start := truncateToDay(s.Project.CreatedAt)
	totalDays := int(today.Sub(start).Hours() / 24)
	if totalDays <= 0 {
		return 0, "Объект создан сегодня."
	}

	// Only days inside the counted window offset the missed total; a
	// completion dated today covers a day that is not counted yet.
	completedDays := make(map[string]bool, len(s.DailyCompletionDates))
	for _, d := range s.DailyCompletionDates {
		day := truncateToDay(d)
		if day.Before(start) || !day.Before(today) {
			continue
		}
		completedDays[day.Format("2006-01-02")] = true
	}

	missed := totalDays - len(completedDays)
	if missed <= 0 {
		return 0, "Ежедневные чек-листы заполняются вовремя."
	}

	score := float64(missed * 10)
	if max := float64(FactorMissedDailyChecklists.MaxScore()); score > max {
		score = max
	}
	description := fmt.Sprintf("Пропущено %d из %d ежедневных чек-листов.", missed, totalDays)
	return score, description
}
