// Package risk implements the project risk engine: independent factor
// calculators over loaded project state, a static weight table, and the
// score-to-level banding. Aggregation and persistence live in the risk
// service; everything here is pure.
package risk

import "strings"

// FactorKey identifies a risk factor. Keys are stable identifiers used for
// weight lookup and ledger event types; display names are user-facing.
type FactorKey string

const (
	FactorScheduleDeviation     FactorKey = "schedule_deviation"
	FactorOpenViolations        FactorKey = "open_violations"
	FactorMissedDailyChecklists FactorKey = "missed_daily_checklists"
	FactorReportingDiscipline   FactorKey = "reporting_discipline"
	FactorTaskCompletionLag     FactorKey = "task_completion_lag"
	FactorMaterialSupply        FactorKey = "material_supply"
	FactorWeatherConditions     FactorKey = "weather_conditions"
	FactorChecklistApproval     FactorKey = "checklist_approval"
	FactorPersonnelFluctuation  FactorKey = "personnel_fluctuation"
)

// weights is the per-factor maximum score. Static configuration: used for
// display and normalization, and as a hard cap only where a calculator
// applies one itself.
var weights = map[FactorKey]int{
	FactorScheduleDeviation:     200,
	FactorOpenViolations:        200,
	FactorMissedDailyChecklists: 100,
	FactorReportingDiscipline:   150,
	FactorTaskCompletionLag:     150,
	FactorMaterialSupply:        100,
	FactorWeatherConditions:     100,
	FactorChecklistApproval:     50,
	FactorPersonnelFluctuation:  50,
}

// displayNames maps factor keys to the names shown in risk breakdowns.
var displayNames = map[FactorKey]string{
	FactorScheduleDeviation:     "Отклонение от графика",
	FactorOpenViolations:        "Открытые нарушения",
	FactorMissedDailyChecklists: "Пропущенные ежедневные чек-листы",
	FactorReportingDiscipline:   "Дисциплина отчетности",
	FactorTaskCompletionLag:     "Задержка выполнения задач",
	FactorMaterialSupply:        "Снабжение материалами",
	FactorWeatherConditions:     "Погодные условия",
	FactorChecklistApproval:     "Утверждение чек-листов",
	FactorPersonnelFluctuation:  "Текучесть персонала",
}

// MaxScore returns the factor's weight ceiling, or 0 for unknown keys.
func (k FactorKey) MaxScore() int {
	return weights[k]
}

// DisplayName returns the user-facing factor name.
func (k FactorKey) DisplayName() string {
	return displayNames[k]
}

// EventType returns the normalized ledger event type for this factor.
func (k FactorKey) EventType() string {
	return strings.ToUpper(string(k))
}
