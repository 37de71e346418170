package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prorab-io/prorab-engine/pkg/auth"
	"github.com/prorab-io/prorab-engine/pkg/models"
	"github.com/prorab-io/prorab-engine/pkg/services"
)

// ChecklistHandler handles checklist completion HTTP requests.
type ChecklistHandler struct {
	checklistService services.ChecklistService
	logger           *zap.Logger
}

// NewChecklistHandler creates a new checklist handler.
func NewChecklistHandler(checklistService services.ChecklistService, logger *zap.Logger) *ChecklistHandler {
	return &ChecklistHandler{
		checklistService: checklistService,
		logger:           logger,
	}
}

// RegisterRoutes registers the checklist handler's routes on the given mux.
func (h *ChecklistHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/projects/{id}/checklists", authMiddleware.RequireRole(auth.RoleInspector)(h.CreateChecklist))
	mux.HandleFunc("POST /api/checklists/{id}/completions", authMiddleware.RequireRole(auth.RoleForeman)(h.SubmitCompletion))
	mux.HandleFunc("POST /api/checklist-completions/{id}/approve", authMiddleware.RequireRole(auth.RoleInspector)(h.ApproveCompletion))
	mux.HandleFunc("POST /api/checklist-completions/{id}/reject", authMiddleware.RequireRole(auth.RoleInspector)(h.RejectCompletion))
}

type completionResponse struct {
	Completion       *models.ChecklistCompletion `json:"completion"`
	RiskRecalculated bool                        `json:"risk_recalculated"`
}

// CreateChecklist handles POST /api/projects/{id}/checklists
func (h *ChecklistHandler) CreateChecklist(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parsePathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req services.CreateChecklistRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	checklist, err := h.checklistService.CreateChecklist(r.Context(), projectID, &req)
	if err != nil {
		handleServiceError(w, h.logger, "create_checklist_failed", err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, checklist); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// SubmitCompletion handles POST /api/checklists/{id}/completions
func (h *ChecklistHandler) SubmitCompletion(w http.ResponseWriter, r *http.Request) {
	checklistID, ok := parsePathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req services.SubmitCompletionRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	userID := auth.GetUserIDFromContext(r.Context())

	completion, recalculated, err := h.checklistService.SubmitCompletion(r.Context(), checklistID, &req, userID)
	if err != nil {
		handleServiceError(w, h.logger, "submit_completion_failed", err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, completionResponse{
		Completion:       completion,
		RiskRecalculated: recalculated,
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ApproveCompletion handles POST /api/checklist-completions/{id}/approve
func (h *ChecklistHandler) ApproveCompletion(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.checklistService.ApproveCompletion, "approve_completion_failed")
}

// RejectCompletion handles POST /api/checklist-completions/{id}/reject
func (h *ChecklistHandler) RejectCompletion(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.checklistService.RejectCompletion, "reject_completion_failed")
}

type reviewFunc func(ctx context.Context, completionID uuid.UUID, req *services.ReviewCompletionRequest, userID uuid.UUID) (*models.ChecklistCompletion, bool, error)

func (h *ChecklistHandler) review(w http.ResponseWriter, r *http.Request, fn reviewFunc, errorCode string) {
	completionID, ok := parsePathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req services.ReviewCompletionRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	userID := auth.GetUserIDFromContext(r.Context())

	completion, recalculated, err := fn(r.Context(), completionID, &req, userID)
	if err != nil {
		handleServiceError(w, h.logger, errorCode, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, completionResponse{
		Completion:       completion,
		RiskRecalculated: recalculated,
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
