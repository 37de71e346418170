package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/prorab-io/prorab-engine/pkg/database"
	"github.com/prorab-io/prorab-engine/pkg/models"
)

// DailyReportRepository manages foreman daily reports.
type DailyReportRepository interface {
	Create(ctx context.Context, report *models.DailyReport) error
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.DailyReport, error)
}

type dailyReportRepository struct {
	db *database.DB
}

// NewDailyReportRepository creates a new daily report repository.
func NewDailyReportRepository(db *database.DB) DailyReportRepository {
	return &dailyReportRepository{db: db}
}

func (r *dailyReportRepository) Create(ctx context.Context, report *models.DailyReport) error {
	q := database.QuerierFrom(ctx, r.db.Pool)

	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	report.CreatedAt = time.Now()
	if report.ReportDate.IsZero() {
		report.ReportDate = report.CreatedAt
	}

	_, err := q.Exec(ctx,
		`INSERT INTO daily_reports (id, project_id, author_id, report_date, workers_count, equipment, weather_conditions, notes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		report.ID, report.ProjectID, report.AuthorID, report.ReportDate,
		report.WorkersCount, report.Equipment, report.WeatherConditions, report.Notes, report.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create daily report: %w", err)
	}

	return nil
}

func (r *dailyReportRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.DailyReport, error) {
	q := database.QuerierFrom(ctx, r.db.Pool)

	rows, err := q.Query(ctx,
		`SELECT id, project_id, author_id, report_date, workers_count, equipment, weather_conditions, notes, created_at
		 FROM daily_reports WHERE project_id = $1 ORDER BY report_date DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.DailyReport
	for rows.Next() {
		var report models.DailyReport
		err := rows.Scan(&report.ID, &report.ProjectID, &report.AuthorID, &report.ReportDate,
			&report.WorkersCount, &report.Equipment, &report.WeatherConditions, &report.Notes, &report.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily report: %w", err)
		}
		reports = append(reports, &report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate daily reports: %w", err)
	}

	return reports, nil
}
