package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prorab-io/prorab-engine/pkg/auth"
	"github.com/prorab-io/prorab-engine/pkg/models"
	"github.com/prorab-io/prorab-engine/pkg/repositories"
)

// UserService mirrors authenticated identities into the users table so the
// risk ledger can resolve initiator names.
type UserService interface {
	auth.UserSync
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
	logger   *zap.Logger
}

var _ UserService = (*userService)(nil)

func NewUserService(userRepo repositories.UserRepository, logger *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger.Named("user-service"),
	}
}

// Sync upserts the profile from token claims. Failures are logged and
// swallowed; request handling never depends on the mirror being current.
func (s *userService) Sync(ctx context.Context, claims *auth.Claims) {
	userID := claims.UserID()
	if userID == uuid.Nil {
		return
	}

	user := &models.User{
		ID:        userID,
		Email:     claims.Email,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
		Role:      claims.Role,
		IsActive:  true,
	}
	if err := s.userRepo.Upsert(ctx, user); err != nil {
		s.logger.Warn("Failed to sync user profile",
			zap.String("user_id", userID.String()),
			zap.Error(err))
	}
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.userRepo.Get(ctx, id)
}
