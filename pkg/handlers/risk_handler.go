package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prorab-io/prorab-engine/pkg/auth"
	"github.com/prorab-io/prorab-engine/pkg/models"
	"github.com/prorab-io/prorab-engine/pkg/services"
)

// RiskHandler exposes the risk score, the high-risk dashboard list and the
// event ledger over HTTP.
type RiskHandler struct {
	riskService services.RiskService
	logger      *zap.Logger
}

// NewRiskHandler creates a new risk handler.
func NewRiskHandler(riskService services.RiskService, logger *zap.Logger) *RiskHandler {
	return &RiskHandler{
		riskService: riskService,
		logger:      logger,
	}
}

// RegisterRoutes registers the risk handler's routes on the given mux.
// The literal high-risk route must be registered alongside the {id} routes;
// the router prefers the more specific pattern.
func (h *RiskHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/projects/high-risk", authMiddleware.RequireAuth(h.ListHighRisk))
	mux.HandleFunc("GET /api/projects/{id}/risk", authMiddleware.RequireAuth(h.GetRisk))
	mux.HandleFunc("POST /api/projects/{id}/risk/recalculate", authMiddleware.RequireAuth(h.Recalculate))
	mux.HandleFunc("GET /api/projects/{id}/risk/history", authMiddleware.RequireAuth(h.GetHistory))
}

// riskResponse is the stored risk profile of one project.
type riskResponse struct {
	ProjectID     uuid.UUID           `json:"project_id"`
	ProjectName   string              `json:"project_name,omitempty"`
	RiskScore     int                 `json:"risk_score"`
	RiskLevel     models.RiskLevel    `json:"risk_level"`
	RiskBreakdown []models.RiskFactor `json:"risk_breakdown"`
}

// highRiskProject is one row of the high-risk dashboard list.
type highRiskProject struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	RiskScore int              `json:"risk_score"`
	RiskLevel models.RiskLevel `json:"risk_level"`
}

// GetRisk handles GET /api/projects/{id}/risk
func (h *RiskHandler) GetRisk(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parsePathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	project, err := h.riskService.GetCurrent(r.Context(), projectID)
	if err != nil {
		handleServiceError(w, h.logger, "get_risk_failed", err)
		return
	}

	breakdown := project.RiskBreakdown
	if breakdown == nil {
		breakdown = []models.RiskFactor{}
	}

	if err := WriteJSON(w, http.StatusOK, riskResponse{
		ProjectID:     project.ID,
		ProjectName:   project.Name,
		RiskScore:     project.RiskScore,
		RiskLevel:     project.RiskLevel,
		RiskBreakdown: breakdown,
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Recalculate handles POST /api/projects/{id}/risk/recalculate
func (h *RiskHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parsePathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	snapshot, err := h.riskService.ForceRecalculate(r.Context(), projectID)
	if err != nil {
		handleServiceError(w, h.logger, "recalculate_failed", err)
		return
	}
	if snapshot == nil {
		if err := ErrorResponse(w, http.StatusNotFound, "project_not_found", "Project not found"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, riskResponse{
		ProjectID:     snapshot.ProjectID,
		RiskScore:     snapshot.RiskScore,
		RiskLevel:     snapshot.RiskLevel,
		RiskBreakdown: snapshot.RiskBreakdown,
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListHighRisk handles GET /api/projects/high-risk
func (h *RiskHandler) ListHighRisk(w http.ResponseWriter, r *http.Request) {
	projects, err := h.riskService.ListHighRisk(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, "list_high_risk_failed", err)
		return
	}

	results := make([]highRiskProject, 0, len(projects))
	for _, p := range projects {
		results = append(results, highRiskProject{
			ID:        p.ID,
			Name:      p.Name,
			RiskScore: p.RiskScore,
			RiskLevel: p.RiskLevel,
		})
	}

	if err := WriteJSON(w, http.StatusOK, results); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// GetHistory handles GET /api/projects/{id}/risk/history
func (h *RiskHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parsePathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	entries, err := h.riskService.History(r.Context(), projectID)
	if err != nil {
		handleServiceError(w, h.logger, "get_risk_history_failed", err)
		return
	}

	if entries == nil {
		entries = make([]*models.RiskHistoryEntry, 0)
	}

	if err := WriteJSON(w, http.StatusOK, entries); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
