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

// CreateWorkPlanRequest carries a plan and its ordered items.
type CreateWorkPlanRequest struct {
	StartDate time.Time                   `json:"start_date"`
	EndDate   time.Time                   `json:"end_date"`
	Items     []CreateWorkPlanItemRequest `json:"items"`
}

type CreateWorkPlanItemRequest struct {
	Name      string    `json:"name"`
	Quantity  float64   `json:"quantity"`
	Unit      string    `json:"unit"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// UpdateWorkPlanItemRequest updates an item's progress and status.
type UpdateWorkPlanItemRequest struct {
	Status   *string  `json:"status,omitempty"`
	Progress *float64 `json:"progress,omitempty"`
}

// WorkPlanService manages the project work schedule the Schedule Deviation
// factor reads.
type WorkPlanService interface {
	Create(ctx context.Context, projectID uuid.UUID, req *CreateWorkPlanRequest, userID uuid.UUID) (*models.WorkPlan, bool, error)
	GetByProject(ctx context.Context, projectID uuid.UUID) (*models.WorkPlan, error)
	UpdateItem(ctx context.Context, itemID uuid.UUID, req *UpdateWorkPlanItemRequest, userID uuid.UUID) (*models.WorkPlanItem, bool, error)
}

type workPlanService struct {
	workPlanRepo repositories.WorkPlanRepository
	projectRepo  repositories.ProjectRepository
	risk         RiskRecalculator
	logger       *zap.Logger
}

var _ WorkPlanService = (*workPlanService)(nil)

func NewWorkPlanService(
	workPlanRepo repositories.WorkPlanRepository,
	projectRepo repositories.ProjectRepository,
	risk RiskRecalculator,
	logger *zap.Logger,
) WorkPlanService {
	return &workPlanService{
		workPlanRepo: workPlanRepo,
		projectRepo:  projectRepo,
		risk:         risk,
		logger:       logger.Named("workplan-service"),
	}
}

func (s *workPlanService) Create(ctx context.Context, projectID uuid.UUID, req *CreateWorkPlanRequest, userID uuid.UUID) (*models.WorkPlan, bool, error) {
	if _, err := s.projectRepo.Get(ctx, projectID); err != nil {
		return nil, false, err
	}
	if len(req.Items) == 0 {
		return nil, false, fmt.Errorf("work plan requires at least one item: %w", apperrors.ErrValidation)
	}
	if _, err := s.workPlanRepo.GetByProject(ctx, projectID); err == nil {
		return nil, false, fmt.Errorf("project already has a work plan: %w", apperrors.ErrConflict)
	}

	plan := &models.WorkPlan{
		ProjectID: projectID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	for i, item := range req.Items {
		plan.Items = append(plan.Items, &models.WorkPlanItem{
			Name:      item.Name,
			Quantity:  item.Quantity,
			Unit:      item.Unit,
			StartDate: item.StartDate,
			EndDate:   item.EndDate,
			Order:     i + 1,
			Status:    models.WorkItemStatusNotStarted,
		})
	}

	if err := s.workPlanRepo.Create(ctx, plan); err != nil {
		return nil, false, fmt.Errorf("failed to create work plan: %w", err)
	}

	recalculated := triggerRecalc(ctx, s.risk, s.logger, projectID, &userID)
	return plan, recalculated, nil
}

func (s *workPlanService) GetByProject(ctx context.Context, projectID uuid.UUID) (*models.WorkPlan, error) {
	return s.workPlanRepo.GetByProject(ctx, projectID)
}

func (s *workPlanService) UpdateItem(ctx context.Context, itemID uuid.UUID, req *UpdateWorkPlanItemRequest, userID uuid.UUID) (*models.WorkPlanItem, bool, error) {
	item, err := s.workPlanRepo.GetItem(ctx, itemID)
	if err != nil {
		return nil, false, err
	}

	if req.Progress != nil {
		if *req.Progress < 0 || *req.Progress > 100 {
			return nil, false, fmt.Errorf("progress must be between 0 and 100: %w", apperrors.ErrValidation)
		}
		item.Progress = *req.Progress
	}
	if req.Status != nil {
		switch *req.Status {
		case models.WorkItemStatusNotStarted, models.WorkItemStatusInProgress, models.WorkItemStatusCompleted:
			item.Status = *req.Status
		default:
			return nil, false, fmt.Errorf("unknown work item status %q: %w", *req.Status, apperrors.ErrValidation)
		}
	}
	if item.Progress >= 100 {
		item.Status = models.WorkItemStatusCompleted
	}

	if err := s.workPlanRepo.UpdateItem(ctx, item); err != nil {
		return nil, false, fmt.Errorf("failed to update work plan item: %w", err)
	}

	projectID, err := s.workPlanRepo.GetPlanProjectID(ctx, item.WorkPlanID)
	if err != nil {
		return nil, false, err
	}

	recalculated := triggerRecalc(ctx, s.risk, s.logger, projectID, &userID)
	return item, recalculated, nil
}
