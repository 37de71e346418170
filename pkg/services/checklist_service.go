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

// CreateChecklistRequest creates a checklist template on a project.
type CreateChecklistRequest struct {
	Name  string   `json:"name"`
	Type  string   `json:"type"`
	Items []string `json:"items"`
}

// SubmitCompletionRequest submits a filled-in checklist.
type SubmitCompletionRequest struct {
	// CompletionDate defaults to today when zero.
	CompletionDate time.Time `json:"completion_date"`
}

// ReviewCompletionRequest carries the inspector's review comment.
type ReviewCompletionRequest struct {
	Comment *string `json:"comment,omitempty"`
}

// ChecklistService manages checklist completions. Daily completions feed the
// Missed Daily Checklists risk factor.
type ChecklistService interface {
	CreateChecklist(ctx context.Context, projectID uuid.UUID, req *CreateChecklistRequest) (*models.Checklist, error)
	SubmitCompletion(ctx context.Context, checklistID uuid.UUID, req *SubmitCompletionRequest, userID uuid.UUID) (*models.ChecklistCompletion, bool, error)
	ApproveCompletion(ctx context.Context, completionID uuid.UUID, req *ReviewCompletionRequest, userID uuid.UUID) (*models.ChecklistCompletion, bool, error)
	RejectCompletion(ctx context.Context, completionID uuid.UUID, req *ReviewCompletionRequest, userID uuid.UUID) (*models.ChecklistCompletion, bool, error)
}

type checklistService struct {
	checklistRepo repositories.ChecklistRepository
	projectRepo   repositories.ProjectRepository
	notifications NotificationService
	risk          RiskRecalculator
	logger        *zap.Logger
}

var _ ChecklistService = (*checklistService)(nil)

func NewChecklistService(
	checklistRepo repositories.ChecklistRepository,
	projectRepo repositories.ProjectRepository,
	notifications NotificationService,
	risk RiskRecalculator,
	logger *zap.Logger,
) ChecklistService {
	return &checklistService{
		checklistRepo: checklistRepo,
		projectRepo:   projectRepo,
		notifications: notifications,
		risk:          risk,
		logger:        logger.Named("checklist-service"),
	}
}

// CreateChecklist attaches a checklist template to a project. A daily
// template starts the missed-day clock the moment the project activates.
func (s *checklistService) CreateChecklist(ctx context.Context, projectID uuid.UUID, req *CreateChecklistRequest) (*models.Checklist, error) {
	if req.Type != models.ChecklistTypeDaily && req.Type != models.ChecklistTypeStage {
		return nil, fmt.Errorf("unknown checklist type %q: %w", req.Type, apperrors.ErrValidation)
	}
	if req.Name == "" {
		return nil, fmt.Errorf("checklist name is required: %w", apperrors.ErrValidation)
	}
	if _, err := s.projectRepo.Get(ctx, projectID); err != nil {
		return nil, err
	}

	checklist := &models.Checklist{
		ProjectID: projectID,
		Name:      req.Name,
		Type:      req.Type,
	}
	for _, text := range req.Items {
		checklist.Items = append(checklist.Items, &models.ChecklistItem{Text: text})
	}

	if err := s.checklistRepo.Create(ctx, checklist); err != nil {
		return nil, fmt.Errorf("failed to create checklist: %w", err)
	}
	return checklist, nil
}

// SubmitCompletion records a filled-in checklist. Daily checklists can only
// be submitted against an active project.
func (s *checklistService) SubmitCompletion(ctx context.Context, checklistID uuid.UUID, req *SubmitCompletionRequest, userID uuid.UUID) (*models.ChecklistCompletion, bool, error) {
	checklist, err := s.checklistRepo.Get(ctx, checklistID)
	if err != nil {
		return nil, false, err
	}

	project, err := s.projectRepo.Get(ctx, checklist.ProjectID)
	if err != nil {
		return nil, false, err
	}
	if checklist.Type == models.ChecklistTypeDaily && !project.IsActive() {
		return nil, false, fmt.Errorf("daily checklist for project %s: %w", project.ID, apperrors.ErrProjectInactive)
	}

	completionDate := req.CompletionDate
	if completionDate.IsZero() {
		completionDate = time.Now()
	}

	completion := &models.ChecklistCompletion{
		ChecklistID:    checklist.ID,
		ProjectID:      checklist.ProjectID,
		SubmittedByID:  userID,
		Status:         models.CompletionStatusSubmitted,
		CompletionDate: completionDate,
	}
	if err := s.checklistRepo.CreateCompletion(ctx, completion); err != nil {
		return nil, false, fmt.Errorf("failed to submit checklist completion: %w", err)
	}

	recalculated := triggerRecalc(ctx, s.risk, s.logger, checklist.ProjectID, &userID)
	return completion, recalculated, nil
}

func (s *checklistService) ApproveCompletion(ctx context.Context, completionID uuid.UUID, req *ReviewCompletionRequest, userID uuid.UUID) (*models.ChecklistCompletion, bool, error) {
	return s.reviewCompletion(ctx, completionID, req, userID, models.CompletionStatusApproved)
}

// RejectCompletion sends the completion back and notifies the submitter.
func (s *checklistService) RejectCompletion(ctx context.Context, completionID uuid.UUID, req *ReviewCompletionRequest, userID uuid.UUID) (*models.ChecklistCompletion, bool, error) {
	completion, recalculated, err := s.reviewCompletion(ctx, completionID, req, userID, models.CompletionStatusRejected)
	if err != nil {
		return nil, false, err
	}

	link := fmt.Sprintf("/projects/%s/checklists/%s", completion.ProjectID, completion.ChecklistID)
	s.notifications.Notify(ctx, completion.SubmittedByID, "Чек-лист отклонен инспектором.", &link)

	return completion, recalculated, nil
}

func (s *checklistService) reviewCompletion(ctx context.Context, completionID uuid.UUID, req *ReviewCompletionRequest, userID uuid.UUID, status string) (*models.ChecklistCompletion, bool, error) {
	completion, err := s.checklistRepo.GetCompletion(ctx, completionID)
	if err != nil {
		return nil, false, err
	}
	if completion.Status != models.CompletionStatusSubmitted {
		return nil, false, fmt.Errorf("cannot review completion in status %q: %w", completion.Status, apperrors.ErrInvalidTransition)
	}

	now := time.Now()
	completion.Status = status
	completion.ReviewedByID = &userID
	completion.ReviewedAt = &now
	completion.ReviewComment = req.Comment

	if err := s.checklistRepo.UpdateCompletion(ctx, completion); err != nil {
		return nil, false, fmt.Errorf("failed to review checklist completion: %w", err)
	}

	recalculated := triggerRecalc(ctx, s.risk, s.logger, completion.ProjectID, &userID)
	return completion, recalculated, nil
}
