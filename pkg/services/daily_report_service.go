package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prorab-io/prorab-engine/pkg/apperrors"
	"github.com/prorab-io/prorab-engine/pkg/models"
	"github.com/prorab-io/prorab-engine/pkg/repositories"
)

// CreateDailyReportRequest is a foreman's end-of-day report.
type CreateDailyReportRequest struct {
	// ReportDate defaults to today when zero.
	ReportDate        time.Time `json:"report_date"`
	WorkersCount      *int      `json:"workers_count,omitempty"`
	Equipment         *string   `json:"equipment,omitempty"`
	WeatherConditions *string   `json:"weather_conditions,omitempty"`
	Notes             *string   `json:"notes,omitempty"`
}

// DailyReportService records site reports, the signal source for the
// Reporting Discipline risk factor.
type DailyReportService interface {
	Create(ctx context.Context, projectID uuid.UUID, req *CreateDailyReportRequest, authorID uuid.UUID) (*models.DailyReport, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.DailyReport, error)
}

type dailyReportService struct {
	reportRepo  repositories.DailyReportRepository
	projectRepo repositories.ProjectRepository
	logger      *zap.Logger
}

var _ DailyReportService = (*dailyReportService)(nil)

func NewDailyReportService(reportRepo repositories.DailyReportRepository, projectRepo repositories.ProjectRepository, logger *zap.Logger) DailyReportService {
	return &dailyReportService{
		reportRepo:  reportRepo,
		projectRepo: projectRepo,
		logger:      logger.Named("daily-report-service"),
	}
}

func (s *dailyReportService) Create(ctx context.Context, projectID uuid.UUID, req *CreateDailyReportRequest, authorID uuid.UUID) (*models.DailyReport, error) {
	project, err := s.projectRepo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.IsActive() {
		return nil, fmt.Errorf("daily report for project %s: %w", projectID, apperrors.ErrProjectInactive)
	}

	reportDate := req.ReportDate
	if reportDate.IsZero() {
		reportDate = time.Now()
	}

	report := &models.DailyReport{
		ProjectID:         projectID,
		AuthorID:          authorID,
		ReportDate:        reportDate,
		WorkersCount:      req.WorkersCount,
		Equipment:         req.Equipment,
		WeatherConditions: req.WeatherConditions,
		Notes:             req.Notes,
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to create daily report: %w", err)
	}

	return report, nil
}

func (s *dailyReportService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.DailyReport, error) {
	return s.reportRepo.ListByProject(ctx, projectID)
}
