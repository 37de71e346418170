package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prorab-io/prorab-engine/pkg/apperrors"
	"github.com/prorab-io/prorab-engine/pkg/models"
	"github.com/prorab-io/prorab-engine/pkg/repositories"
)

// CreateProjectRequest carries the fields needed to register a project.
type CreateProjectRequest struct {
	Name      string   `json:"name"`
	Address   *string  `json:"address,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// ProjectService manages the project lifecycle. Risk fields on returned
// projects are whatever is stored; reads never trigger a recomputation.
type ProjectService interface {
	Create(ctx context.Context, req *CreateProjectRequest) (*models.Project, bool, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context) ([]*models.Project, error)
	Activate(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Project, bool, error)
}

type projectService struct {
	projectRepo repositories.ProjectRepository
	risk        RiskRecalculator
	logger      *zap.Logger
}

var _ ProjectService = (*projectService)(nil)

func NewProjectService(projectRepo repositories.ProjectRepository, risk RiskRecalculator, logger *zap.Logger) ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		risk:        risk,
		logger:      logger.Named("project-service"),
	}
}

// Create registers a project in pending status and runs an initial
// system-attributed risk pass so the stored profile is never empty.
func (s *projectService) Create(ctx context.Context, req *CreateProjectRequest) (*models.Project, bool, error) {
	if req.Name == "" {
		return nil, false, fmt.Errorf("project name is required: %w", apperrors.ErrValidation)
	}

	project := &models.Project{
		Name:      req.Name,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Status:    models.ProjectStatusPending,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, false, fmt.Errorf("failed to create project: %w", err)
	}

	recalculated := triggerRecalc(ctx, s.risk, s.logger, project.ID, nil)

	created, err := s.projectRepo.Get(ctx, project.ID)
	if err != nil {
		return nil, false, err
	}
	return created, recalculated, nil
}

func (s *projectService) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return s.projectRepo.Get(ctx, id)
}

func (s *projectService) List(ctx context.Context) ([]*models.Project, error) {
	return s.projectRepo.List(ctx)
}

// Activate moves a project into active status, from which daily checklist
// discipline starts counting against it.
func (s *projectService) Activate(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Project, bool, error) {
	project, err := s.projectRepo.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}

	if project.Status != models.ProjectStatusPending {
		return nil, false, fmt.Errorf("cannot activate project in status %q: %w", project.Status, apperrors.ErrInvalidTransition)
	}

	if err := s.projectRepo.UpdateStatus(ctx, id, models.ProjectStatusActive); err != nil {
		return nil, false, fmt.Errorf("failed to activate project: %w", err)
	}

	recalculated := triggerRecalc(ctx, s.risk, s.logger, id, &userID)

	updated, err := s.projectRepo.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return updated, recalculated, nil
}
