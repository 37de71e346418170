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

// CreateTaskRequest creates a task backed by a work plan item.
type CreateTaskRequest struct {
	WorkPlanItemID uuid.UUID `json:"work_plan_item_id"`
	Name           string    `json:"name"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
}

// CompleteTaskRequest carries the foreman's completion evidence.
type CompleteTaskRequest struct {
	Comment        *string  `json:"comment,omitempty"`
	Photos         []string `json:"photos,omitempty"`
	Geolocation    *string  `json:"geolocation,omitempty"`
	ActualQuantity *float64 `json:"actual_quantity,omitempty"`
}

// VerifyTaskRequest records the inspector's verdict.
type VerifyTaskRequest struct {
	Approved bool    `json:"approved"`
	Comment  *string `json:"comment,omitempty"`
}

// TaskService manages task execution and verification. Verified work feeds
// the backing work plan item's progress, which the risk engine reads.
type TaskService interface {
	Create(ctx context.Context, projectID uuid.UUID, req *CreateTaskRequest) (*models.Task, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Task, error)
	Complete(ctx context.Context, taskID uuid.UUID, req *CompleteTaskRequest, userID uuid.UUID) (*models.Task, bool, error)
	Verify(ctx context.Context, taskID uuid.UUID, req *VerifyTaskRequest, userID uuid.UUID) (*models.Task, bool, error)
}

type taskService struct {
	taskRepo     repositories.TaskRepository
	workPlanRepo repositories.WorkPlanRepository
	projectRepo  repositories.ProjectRepository
	risk         RiskRecalculator
	logger       *zap.Logger
}

var _ TaskService = (*taskService)(nil)

func NewTaskService(
	taskRepo repositories.TaskRepository,
	workPlanRepo repositories.WorkPlanRepository,
	projectRepo repositories.ProjectRepository,
	risk RiskRecalculator,
	logger *zap.Logger,
) TaskService {
	return &taskService{
		taskRepo:     taskRepo,
		workPlanRepo: workPlanRepo,
		projectRepo:  projectRepo,
		risk:         risk,
		logger:       logger.Named("task-service"),
	}
}

func (s *taskService) Create(ctx context.Context, projectID uuid.UUID, req *CreateTaskRequest) (*models.Task, error) {
	if _, err := s.projectRepo.Get(ctx, projectID); err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, fmt.Errorf("task name is required: %w", apperrors.ErrValidation)
	}
	item, err := s.workPlanRepo.GetItem(ctx, req.WorkPlanItemID)
	if err != nil {
		return nil, fmt.Errorf("work plan item %s: %w", req.WorkPlanItemID, err)
	}

	task := &models.Task{
		ProjectID:      projectID,
		WorkPlanItemID: item.ID,
		Name:           req.Name,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Status:         models.TaskStatusPending,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

func (s *taskService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Task, error) {
	return s.taskRepo.ListByProject(ctx, projectID)
}

// Complete records the foreman's evidence and moves the task to completed,
// awaiting inspector verification.
func (s *taskService) Complete(ctx context.Context, taskID uuid.UUID, req *CompleteTaskRequest, userID uuid.UUID) (*models.Task, bool, error) {
	task, err := s.taskRepo.Get(ctx, taskID)
	if err != nil {
		return nil, false, err
	}
	if task.Status != models.TaskStatusPending && task.Status != models.TaskStatusRejected {
		return nil, false, fmt.Errorf("cannot complete task in status %q: %w", task.Status, apperrors.ErrInvalidTransition)
	}

	now := time.Now()
	task.Status = models.TaskStatusCompleted
	task.CompletedByID = &userID
	task.CompletedAt = &now
	task.CompletionComment = req.Comment
	task.CompletionPhotos = req.Photos
	task.Geolocation = req.Geolocation
	task.ActualQuantity = req.ActualQuantity

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, false, fmt.Errorf("failed to complete task: %w", err)
	}

	recalculated := triggerRecalc(ctx, s.risk, s.logger, task.ProjectID, &userID)
	return task, recalculated, nil
}

// Verify applies the inspector's verdict. Approval marks the task verified and
// advances the backing work plan item's progress by the verified quantity;
// rejection sends the task back to the foreman.
func (s *taskService) Verify(ctx context.Context, taskID uuid.UUID, req *VerifyTaskRequest, userID uuid.UUID) (*models.Task, bool, error) {
	task, err := s.taskRepo.Get(ctx, taskID)
	if err != nil {
		return nil, false, err
	}
	if task.Status != models.TaskStatusCompleted {
		return nil, false, fmt.Errorf("cannot verify task in status %q: %w", task.Status, apperrors.ErrInvalidTransition)
	}

	task.VerifiedByID = &userID
	if !req.Approved {
		task.Status = models.TaskStatusRejected
		if err := s.taskRepo.Update(ctx, task); err != nil {
			return nil, false, fmt.Errorf("failed to reject task: %w", err)
		}
		recalculated := triggerRecalc(ctx, s.risk, s.logger, task.ProjectID, &userID)
		return task, recalculated, nil
	}

	task.Status = models.TaskStatusVerified
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, false, fmt.Errorf("failed to verify task: %w", err)
	}

	if err := s.advanceItemProgress(ctx, task); err != nil {
		s.logger.Warn("Failed to advance work plan item progress",
			zap.String("task_id", task.ID.String()),
			zap.Error(err))
	}

	recalculated := triggerRecalc(ctx, s.risk, s.logger, task.ProjectID, &userID)
	return task, recalculated, nil
}

func (s *taskService) advanceItemProgress(ctx context.Context, task *models.Task) error {
	if task.ActualQuantity == nil {
		return nil
	}

	item, err := s.workPlanRepo.GetItem(ctx, task.WorkPlanItemID)
	if err != nil {
		return err
	}
	if item.Quantity <= 0 {
		return nil
	}

	item.Progress += *task.ActualQuantity / item.Quantity * 100
	if item.Progress >= 100 {
		item.Progress = 100
		item.Status = models.WorkItemStatusCompleted
	} else if item.Status == models.WorkItemStatusNotStarted {
		item.Status = models.WorkItemStatusInProgress
	}

	return s.workPlanRepo.UpdateItem(ctx, item)
}
