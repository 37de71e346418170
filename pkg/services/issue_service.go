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

// CreateIssueRequest raises a violation or remark against a project.
type CreateIssueRequest struct {
	Type        string     `json:"type"`
	Description string     `json:"description"`
	TaskID      *uuid.UUID `json:"task_id,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	// AssigneeID receives an in-app notification about the new issue.
	AssigneeID *uuid.UUID `json:"assignee_id,omitempty"`
}

// ResolveIssueRequest carries the foreman's fix evidence.
type ResolveIssueRequest struct {
	Comment *string  `json:"comment,omitempty"`
	Photos  []string `json:"photos,omitempty"`
}

// VerifyIssueRequest records the inspector's verdict on a resolution.
type VerifyIssueRequest struct {
	Approved bool    `json:"approved"`
	Comment  *string `json:"comment,omitempty"`
}

// IssueService manages violations and remarks. Open issues feed the Open
// Violations risk factor, so every transition triggers a recomputation.
type IssueService interface {
	Create(ctx context.Context, projectID uuid.UUID, req *CreateIssueRequest, authorID uuid.UUID) (*models.Issue, bool, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Issue, error)
	Resolve(ctx context.Context, issueID uuid.UUID, req *ResolveIssueRequest, userID uuid.UUID) (*models.Issue, bool, error)
	Verify(ctx context.Context, issueID uuid.UUID, req *VerifyIssueRequest, userID uuid.UUID) (*models.Issue, bool, error)
}

type issueService struct {
	issueRepo     repositories.IssueRepository
	projectRepo   repositories.ProjectRepository
	notifications NotificationService
	risk          RiskRecalculator
	logger        *zap.Logger
}

var _ IssueService = (*issueService)(nil)

func NewIssueService(
	issueRepo repositories.IssueRepository,
	projectRepo repositories.ProjectRepository,
	notifications NotificationService,
	risk RiskRecalculator,
	logger *zap.Logger,
) IssueService {
	return &issueService{
		issueRepo:     issueRepo,
		projectRepo:   projectRepo,
		notifications: notifications,
		risk:          risk,
		logger:        logger.Named("issue-service"),
	}
}

func (s *issueService) Create(ctx context.Context, projectID uuid.UUID, req *CreateIssueRequest, authorID uuid.UUID) (*models.Issue, bool, error) {
	if req.Type != models.IssueTypeViolation && req.Type != models.IssueTypeRemark {
		return nil, false, fmt.Errorf("unknown issue type %q: %w", req.Type, apperrors.ErrValidation)
	}
	if req.Description == "" {
		return nil, false, fmt.Errorf("issue description is required: %w", apperrors.ErrValidation)
	}
	project, err := s.projectRepo.Get(ctx, projectID)
	if err != nil {
		return nil, false, err
	}

	issue := &models.Issue{
		ProjectID:   projectID,
		TaskID:      req.TaskID,
		Type:        req.Type,
		AuthorID:    authorID,
		Status:      models.IssueStatusOpen,
		Description: req.Description,
		DueDate:     req.DueDate,
	}
	if err := s.issueRepo.Create(ctx, issue); err != nil {
		return nil, false, fmt.Errorf("failed to create issue: %w", err)
	}

	if req.AssigneeID != nil {
		link := fmt.Sprintf("/projects/%s/issues/%s", projectID, issue.ID)
		message := fmt.Sprintf("Новое нарушение на объекте «%s»", project.Name)
		if issue.Type == models.IssueTypeRemark {
			message = fmt.Sprintf("Новое замечание на объекте «%s»", project.Name)
		}
		s.notifications.Notify(ctx, *req.AssigneeID, message, &link)
	}

	recalculated := triggerRecalc(ctx, s.risk, s.logger, projectID, &authorID)
	return issue, recalculated, nil
}

func (s *issueService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Issue, error) {
	return s.issueRepo.ListByProject(ctx, projectID)
}

// Resolve submits the foreman's fix; the issue stays open for risk purposes
// until the inspector confirms it.
func (s *issueService) Resolve(ctx context.Context, issueID uuid.UUID, req *ResolveIssueRequest, userID uuid.UUID) (*models.Issue, bool, error) {
	issue, err := s.issueRepo.Get(ctx, issueID)
	if err != nil {
		return nil, false, err
	}
	if issue.Status != models.IssueStatusOpen {
		return nil, false, fmt.Errorf("cannot resolve issue in status %q: %w", issue.Status, apperrors.ErrInvalidTransition)
	}

	now := time.Now()
	issue.Status = models.IssueStatusPendingVerification
	issue.ResolutionComment = req.Comment
	issue.ResolutionPhotos = req.Photos
	issue.ResolvedByID = &userID
	issue.ResolvedAt = &now

	if err := s.issueRepo.Update(ctx, issue); err != nil {
		return nil, false, fmt.Errorf("failed to resolve issue: %w", err)
	}

	recalculated := triggerRecalc(ctx, s.risk, s.logger, issue.ProjectID, &userID)
	return issue, recalculated, nil
}

// Verify closes the loop: approval moves the issue to resolved and it stops
// counting against the project; rejection reopens it.
func (s *issueService) Verify(ctx context.Context, issueID uuid.UUID, req *VerifyIssueRequest, userID uuid.UUID) (*models.Issue, bool, error) {
	issue, err := s.issueRepo.Get(ctx, issueID)
	if err != nil {
		return nil, false, err
	}
	if issue.Status != models.IssueStatusPendingVerification {
		return nil, false, fmt.Errorf("cannot verify issue in status %q: %w", issue.Status, apperrors.ErrInvalidTransition)
	}

	now := time.Now()
	issue.VerifiedByID = &userID
	issue.VerifiedAt = &now
	issue.VerificationComment = req.Comment
	if req.Approved {
		issue.Status = models.IssueStatusResolved
	} else {
		issue.Status = models.IssueStatusOpen
	}

	if err := s.issueRepo.Update(ctx, issue); err != nil {
		return nil, false, fmt.Errorf("failed to verify issue: %w", err)
	}

	recalculated := triggerRecalc(ctx, s.risk, s.logger, issue.ProjectID, &userID)
	return issue, recalculated, nil
}
