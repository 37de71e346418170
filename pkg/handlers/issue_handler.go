package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/prorab-io/prorab-engine/pkg/auth"
	"github.com/prorab-io/prorab-engine/pkg/models"
	"github.com/prorab-io/prorab-engine/pkg/services"
)

// IssueHandler handles violation and remark HTTP requests.
type IssueHandler struct {
	issueService services.IssueService
	logger       *zap.Logger
}

// NewIssueHandler creates a new issue handler.
func NewIssueHandler(issueService services.IssueService, logger *zap.Logger) *IssueHandler {
	return &IssueHandler{
		issueService: issueService,
		logger:       logger,
	}
}

// RegisterRoutes registers the issue handler's routes on the given mux.
func (h *IssueHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/projects/{id}/issues", authMiddleware.RequireRole(auth.RoleInspector)(h.Create))
	mux.HandleFunc("GET /api/projects/{id}/issues", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST /api/issues/{id}/resolve", authMiddleware.RequireRole(auth.RoleForeman)(h.Resolve))
	mux.HandleFunc("POST /api/issues/{id}/verify", authMiddleware.RequireRole(auth.RoleInspector)(h.Verify))
}

type issueResponse struct {
	Issue            *models.Issue `json:"issue"`
	RiskRecalculated bool          `json:"risk_recalculated"`
}

// Create handles POST /api/projects/{id}/issues
func (h *IssueHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parsePathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req services.CreateIssueRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	authorID := auth.GetUserIDFromContext(r.Context())

	issue, recalculated, err := h.issueService.Create(r.Context(), projectID, &req, authorID)
	if err != nil {
		handleServiceError(w, h.logger, "create_issue_failed", err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, issueResponse{
		Issue:            issue,
		RiskRecalculated: recalculated,
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/projects/{id}/issues
func (h *IssueHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parsePathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	issues, err := h.issueService.ListByProject(r.Context(), projectID)
	if err != nil {
		handleServiceError(w, h.logger, "list_issues_failed", err)
		return
	}

	if issues == nil {
		issues = make([]*models.Issue, 0)
	}

	if err := WriteJSON(w, http.StatusOK, issues); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Resolve handles POST /api/issues/{id}/resolve
func (h *IssueHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	issueID, ok := parsePathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req services.ResolveIssueRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	userID := auth.GetUserIDFromContext(r.Context())

	issue, recalculated, err := h.issueService.Resolve(r.Context(), issueID, &req, userID)
	if err != nil {
		handleServiceError(w, h.logger, "resolve_issue_failed", err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, issueResponse{
		Issue:            issue,
		RiskRecalculated: recalculated,
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Verify handles POST /api/issues/{id}/verify
func (h *IssueHandler) Verify(w http.ResponseWriter, r *http.Request) {
	issueID, ok := parsePathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req services.VerifyIssueRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	userID := auth.GetUserIDFromContext(r.Context())

	issue, recalculated, err := h.issueService.Verify(r.Context(), issueID, &req, userID)
	if err != nil {
		handleServiceError(w, h.logger, "verify_issue_failed", err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, issueResponse{
		Issue:            issue,
		RiskRecalculated: recalculated,
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
