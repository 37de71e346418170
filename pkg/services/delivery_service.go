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

// CreateDeliveryRequest records a material delivery with its positions.
type CreateDeliveryRequest struct {
	// DeliveryDate defaults to today when zero.
	DeliveryDate time.Time                   `json:"delivery_date"`
	Items        []CreateDeliveryItemRequest `json:"items"`
}

type CreateDeliveryItemRequest struct {
	MaterialID uuid.UUID `json:"material_id"`
	Quantity   float64   `json:"quantity"`
}

// CreateMaterialRequest adds a catalog entry deliveries can reference.
type CreateMaterialRequest struct {
	Name string `json:"name"`
	Unit string `json:"unit"`
}

// DeliveryService manages the material catalog and deliveries, the signal
// source for the Material Supply risk factor.
type DeliveryService interface {
	Create(ctx context.Context, projectID uuid.UUID, req *CreateDeliveryRequest, userID uuid.UUID) (*models.MaterialDelivery, bool, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.MaterialDelivery, error)
	Delete(ctx context.Context, deliveryID uuid.UUID, userID uuid.UUID) (bool, error)
	CreateMaterial(ctx context.Context, req *CreateMaterialRequest) (*models.Material, error)
	ListMaterials(ctx context.Context) ([]*models.Material, error)
}

type deliveryService struct {
	deliveryRepo repositories.DeliveryRepository
	materialRepo repositories.MaterialRepository
	projectRepo  repositories.ProjectRepository
	risk         RiskRecalculator
	logger       *zap.Logger
}

var _ DeliveryService = (*deliveryService)(nil)

func NewDeliveryService(
	deliveryRepo repositories.DeliveryRepository,
	materialRepo repositories.MaterialRepository,
	projectRepo repositories.ProjectRepository,
	risk RiskRecalculator,
	logger *zap.Logger,
) DeliveryService {
	return &deliveryService{
		deliveryRepo: deliveryRepo,
		materialRepo: materialRepo,
		projectRepo:  projectRepo,
		risk:         risk,
		logger:       logger.Named("delivery-service"),
	}
}

func (s *deliveryService) Create(ctx context.Context, projectID uuid.UUID, req *CreateDeliveryRequest, userID uuid.UUID) (*models.MaterialDelivery, bool, error) {
	if _, err := s.projectRepo.Get(ctx, projectID); err != nil {
		return nil, false, err
	}
	if len(req.Items) == 0 {
		return nil, false, fmt.Errorf("delivery requires at least one item: %w", apperrors.ErrValidation)
	}

	deliveryDate := req.DeliveryDate
	if deliveryDate.IsZero() {
		deliveryDate = time.Now()
	}

	delivery := &models.MaterialDelivery{
		ProjectID:    projectID,
		ForemanID:    userID,
		DeliveryDate: deliveryDate,
	}
	for _, item := range req.Items {
		delivery.Items = append(delivery.Items, &models.MaterialDeliveryItem{
			MaterialID: item.MaterialID,
			Quantity:   item.Quantity,
		})
	}

	if err := s.deliveryRepo.Create(ctx, delivery); err != nil {
		return nil, false, fmt.Errorf("failed to create delivery: %w", err)
	}

	recalculated := triggerRecalc(ctx, s.risk, s.logger, projectID, &userID)
	return delivery, recalculated, nil
}

func (s *deliveryService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.MaterialDelivery, error) {
	return s.deliveryRepo.ListByProject(ctx, projectID)
}

func (s *deliveryService) Delete(ctx context.Context, deliveryID uuid.UUID, userID uuid.UUID) (bool, error) {
	delivery, err := s.deliveryRepo.Get(ctx, deliveryID)
	if err != nil {
		return false, err
	}

	if err := s.deliveryRepo.Delete(ctx, deliveryID); err != nil {
		return false, fmt.Errorf("failed to delete delivery: %w", err)
	}

	recalculated := triggerRecalc(ctx, s.risk, s.logger, delivery.ProjectID, &userID)
	return recalculated, nil
}

func (s *deliveryService) CreateMaterial(ctx context.Context, req *CreateMaterialRequest) (*models.Material, error) {
	if req.Name == "" || req.Unit == "" {
		return nil, fmt.Errorf("material name and unit are required: %w", apperrors.ErrValidation)
	}

	material := &models.Material{Name: req.Name, Unit: req.Unit}
	if err := s.materialRepo.Create(ctx, material); err != nil {
		return nil, fmt.Errorf("failed to create material: %w", err)
	}
	return material, nil
}

func (s *deliveryService) ListMaterials(ctx context.Context) ([]*models.Material, error) {
	return s.materialRepo.List(ctx)
}
