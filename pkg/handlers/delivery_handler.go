package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/prorab-io/prorab-engine/pkg/auth"
	"github.com/prorab-io/prorab-engine/pkg/models"
	"github.com/prorab-io/prorab-engine/pkg/services"
)

// DeliveryHandler handles material delivery HTTP requests.
type DeliveryHandler struct {
	deliveryService services.DeliveryService
	logger          *zap.Logger
}

// NewDeliveryHandler creates a new delivery handler.
func NewDeliveryHandler(deliveryService services.DeliveryService, logger *zap.Logger) *DeliveryHandler {
	return &DeliveryHandler{
		deliveryService: deliveryService,
		logger:          logger,
	}
}

// RegisterRoutes registers the delivery handler's routes on the given mux.
func (h *DeliveryHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/projects/{id}/deliveries", authMiddleware.RequireRole(auth.RoleForeman)(h.Create))
	mux.HandleFunc("GET /api/projects/{id}/deliveries", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("DELETE /api/deliveries/{id}", authMiddleware.RequireRole(auth.RoleForeman)(h.Delete))
	mux.HandleFunc("POST /api/materials", authMiddleware.RequireRole(auth.RoleInspector)(h.CreateMaterial))
	mux.HandleFunc("GET /api/materials", authMiddleware.RequireAuth(h.ListMaterials))
}

type deliveryResponse struct {
	Delivery         *models.MaterialDelivery `json:"delivery"`
	RiskRecalculated bool                     `json:"risk_recalculated"`
}

// Create handles POST /api/projects/{id}/deliveries
func (h *DeliveryHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parsePathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req services.CreateDeliveryRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	userID := auth.GetUserIDFromContext(r.Context())

	delivery, recalculated, err := h.deliveryService.Create(r.Context(), projectID, &req, userID)
	if err != nil {
		handleServiceError(w, h.logger, "create_delivery_failed", err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, deliveryResponse{
		Delivery:         delivery,
		RiskRecalculated: recalculated,
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/projects/{id}/deliveries
func (h *DeliveryHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parsePathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	deliveries, err := h.deliveryService.ListByProject(r.Context(), projectID)
	if err != nil {
		handleServiceError(w, h.logger, "list_deliveries_failed", err)
		return
	}

	if deliveries == nil {
		deliveries = make([]*models.MaterialDelivery, 0)
	}

	if err := WriteJSON(w, http.StatusOK, deliveries); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/deliveries/{id}
func (h *DeliveryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	deliveryID, ok := parsePathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	userID := auth.GetUserIDFromContext(r.Context())

	recalculated, err := h.deliveryService.Delete(r.Context(), deliveryID, userID)
	if err != nil {
		handleServiceError(w, h.logger, "delete_delivery_failed", err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]bool{
		"deleted":           true,
		"risk_recalculated": recalculated,
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// CreateMaterial handles POST /api/materials
func (h *DeliveryHandler) CreateMaterial(w http.ResponseWriter, r *http.Request) {
	var req services.CreateMaterialRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	material, err := h.deliveryService.CreateMaterial(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, "create_material_failed", err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, material); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListMaterials handles GET /api/materials
func (h *DeliveryHandler) ListMaterials(w http.ResponseWriter, r *http.Request) {
	materials, err := h.deliveryService.ListMaterials(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, "list_materials_failed", err)
		return
	}

	if materials == nil {
		materials = make([]*models.Material, 0)
	}

	if err := WriteJSON(w, http.StatusOK, materials); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
