package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/prorab-io/prorab-engine/pkg/auth"
	"github.com/prorab-io/prorab-engine/pkg/models"
	"github.com/prorab-io/prorab-engine/pkg/services"
)

// ProjectHandler handles project lifecycle HTTP requests.
type ProjectHandler struct {
	projectService services.ProjectService
	logger         *zap.Logger
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(projectService services.ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		logger:         logger,
	}
}

// RegisterRoutes registers the project handler's routes on the given mux.
func (h *ProjectHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/projects", authMiddleware.RequireRole(auth.RoleInspector)(h.Create))
	mux.HandleFunc("GET /api/projects", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("GET /api/projects/{id}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("POST /api/projects/{id}/activate", authMiddleware.RequireRole(auth.RoleInspector)(h.Activate))
}

// projectResponse pairs the project with the recalculation outcome of the
// triggering action.
type projectResponse struct {
	Project          *models.Project `json:"project"`
	RiskRecalculated bool            `json:"risk_recalculated"`
}

// Create handles POST /api/projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateProjectRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	project, recalculated, err := h.projectService.Create(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, "create_project_failed", err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, projectResponse{
		Project:          project,
		RiskRecalculated: recalculated,
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/projects
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectService.List(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, "list_projects_failed", err)
		return
	}

	if projects == nil {
		projects = make([]*models.Project, 0)
	}

	if err := WriteJSON(w, http.StatusOK, projects); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/projects/{id}
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parsePathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	project, err := h.projectService.Get(r.Context(), projectID)
	if err != nil {
		handleServiceError(w, h.logger, "get_project_failed", err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, project); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Activate handles POST /api/projects/{id}/activate
func (h *ProjectHandler) Activate(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parsePathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	userID := auth.GetUserIDFromContext(r.Context())

	project, recalculated, err := h.projectService.Activate(r.Context(), projectID, userID)
	if err != nil {
		handleServiceError(w, h.logger, "activate_project_failed", err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, projectResponse{
		Project:          project,
		RiskRecalculated: recalculated,
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
