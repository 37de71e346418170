package models

import (
	"time"

	"github.com/google/uuid"
)

// DailyReport is a foreman's end-of-day site report.
type DailyReport struct {
	ID                uuid.UUID `json:"id"`
	ProjectID         uuid.UUID `json:"project_id"`
	AuthorID          uuid.UUID `json:"author_id"`
	ReportDate        time.Time `json:"report_date"`
	WorkersCount      *int      `json:"workers_count,omitempty"`
	Equipment         *string   `json:"equipment,omitempty"`
	WeatherConditions *string   `json:"weather_conditions,omitempty"`
	Notes             *string   `json:"notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
