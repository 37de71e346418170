package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/prorab-io/prorab-engine/pkg/auth"
	"github.com/prorab-io/prorab-engine/pkg/models"
	"github.com/prorab-io/prorab-engine/pkg/services"
)

// WorkPlanHandler handles work plan HTTP requests.
type WorkPlanHandler struct {
	workPlanService services.WorkPlanService
	logger          *zap.Logger
}

// NewWorkPlanHandler creates a new work plan handler.
func NewWorkPlanHandler(workPlanService services.WorkPlanService, logger *zap.Logger) *WorkPlanHandler {
	return &WorkPlanHandler{
		workPlanService: workPlanService,
		logger:          logger,
	}
}

// RegisterRoutes registers the work plan handler's routes on the given mux.
func (h *WorkPlanHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/projects/{id}/workplan", authMiddleware.RequireRole(auth.RoleInspector)(h.Create))
	mux.HandleFunc("GET /api/projects/{id}/workplan", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("PUT /api/workplan-items/{id}", authMiddleware.RequireAuth(h.UpdateItem))
}

type workPlanResponse struct {
	WorkPlan         *models.WorkPlan `json:"work_plan"`
	RiskRecalculated bool             `json:"risk_recalculated"`
}

type workPlanItemResponse struct {
	Item             *models.WorkPlanItem `json:"item"`
	RiskRecalculated bool                 `json:"risk_recalculated"`
}

// Create handles POST /api/projects/{id}/workplan
func (h *WorkPlanHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parsePathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req services.CreateWorkPlanRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	userID := auth.GetUserIDFromContext(r.Context())

	plan, recalculated, err := h.workPlanService.Create(r.Context(), projectID, &req, userID)
	if err != nil {
		handleServiceError(w, h.logger, "create_work_plan_failed", err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, workPlanResponse{
		WorkPlan:         plan,
		RiskRecalculated: recalculated,
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/projects/{id}/workplan
func (h *WorkPlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parsePathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	plan, err := h.workPlanService.GetByProject(r.Context(), projectID)
	if err != nil {
		handleServiceError(w, h.logger, "get_work_plan_failed", err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, plan); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// UpdateItem handles PUT /api/workplan-items/{id}
func (h *WorkPlanHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := parsePathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req services.UpdateWorkPlanItemRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	userID := auth.GetUserIDFromContext(r.Context())

	item, recalculated, err := h.workPlanService.UpdateItem(r.Context(), itemID, &req, userID)
	if err != nil {
		handleServiceError(w, h.logger, "update_work_plan_item_failed", err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, workPlanItemResponse{
		Item:             item,
		RiskRecalculated: recalculated,
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
