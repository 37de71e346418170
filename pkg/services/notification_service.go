package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prorab-io/prorab-engine/pkg/models"
	"github.com/prorab-io/prorab-engine/pkg/repositories"
)

// NotificationService persists in-app notifications. Notify is best-effort:
// a failed write is logged and dropped, it never fails the emitting workflow.
type NotificationService interface {
	Notify(ctx context.Context, userID uuid.UUID, message string, link *string)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
}

type notificationService struct {
	repo   repositories.NotificationRepository
	logger *zap.Logger
}

var _ NotificationService = (*notificationService)(nil)

func NewNotificationService(repo repositories.NotificationRepository, logger *zap.Logger) NotificationService {
	return &notificationService{
		repo:   repo,
		logger: logger.Named("notification-service"),
	}
}

func (s *notificationService) Notify(ctx context.Context, userID uuid.UUID, message string, link *string) {
	notification := &models.Notification{
		UserID:  userID,
		Message: message,
		Link:    link,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		s.logger.Warn("Failed to create notification",
			zap.String("user_id", userID.String()),
			zap.Error(err))
	}
}

func (s *notificationService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.MarkRead(ctx, id, userID)
}
