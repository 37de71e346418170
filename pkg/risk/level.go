package risk

import "github.com/prorab-io/prorab-engine/pkg/models"

// levelBand maps a closed score range to a level.
type levelBand struct {
	min, max int
	level    models.RiskLevel
}

// Bands are closed on both ends and non-overlapping; anything above the last
// band stays CRITICAL.
var levelBands = []levelBand{
	{0, 100, models.RiskLevelLow},
	{101, 300, models.RiskLevelMedium},
	{301, 600, models.RiskLevelHigh},
	{601, 1000, models.RiskLevelCritical},
}

// LevelForScore maps a total risk score to its categorical level.
func LevelForScore(score int) models.RiskLevel {
	for _, band := range levelBands {
		if score >= band.min && score <= band.max {
			return band.level
		}
	}
	if score > 1000 {
		return models.RiskLevelCritical
	}
	return models.RiskLevelLow
}
