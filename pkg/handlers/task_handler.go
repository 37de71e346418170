package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/prorab-io/prorab-engine/pkg/auth"
	"github.com/prorab-io/prorab-engine/pkg/models"
	"github.com/prorab-io/prorab-engine/pkg/services"
)

// TaskHandler handles task HTTP requests.
type TaskHandler struct {
	taskService services.TaskService
	logger      *zap.Logger
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(taskService services.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// RegisterRoutes registers the task handler's routes on the given mux.
func (h *TaskHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/projects/{id}/tasks", authMiddleware.RequireRole(auth.RoleInspector)(h.Create))
	mux.HandleFunc("GET /api/projects/{id}/tasks", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST /api/tasks/{id}/complete", authMiddleware.RequireRole(auth.RoleForeman)(h.Complete))
	mux.HandleFunc("POST /api/tasks/{id}/verify", authMiddleware.RequireRole(auth.RoleInspector)(h.Verify))
}

type taskResponse struct {
	Task             *models.Task `json:"task"`
	RiskRecalculated bool         `json:"risk_recalculated"`
}

// Create handles POST /api/projects/{id}/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parsePathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req services.CreateTaskRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	task, err := h.taskService.Create(r.Context(), projectID, &req)
	if err != nil {
		handleServiceError(w, h.logger, "create_task_failed", err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, task); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/projects/{id}/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parsePathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListByProject(r.Context(), projectID)
	if err != nil {
		handleServiceError(w, h.logger, "list_tasks_failed", err)
		return
	}

	if tasks == nil {
		tasks = make([]*models.Task, 0)
	}

	if err := WriteJSON(w, http.StatusOK, tasks); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Complete handles POST /api/tasks/{id}/complete
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	taskID, ok := parsePathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req services.CompleteTaskRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	userID := auth.GetUserIDFromContext(r.Context())

	task, recalculated, err := h.taskService.Complete(r.Context(), taskID, &req, userID)
	if err != nil {
		handleServiceError(w, h.logger, "complete_task_failed", err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, taskResponse{
		Task:             task,
		RiskRecalculated: recalculated,
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Verify handles POST /api/tasks/{id}/verify
func (h *TaskHandler) Verify(w http.ResponseWriter, r *http.Request) {
	taskID, ok := parsePathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req services.VerifyTaskRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	userID := auth.GetUserIDFromContext(r.Context())

	task, recalculated, err := h.taskService.Verify(r.Context(), taskID, &req, userID)
	if err != nil {
		handleServiceError(w, h.logger, "verify_task_failed", err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, taskResponse{
		Task:             task,
		RiskRecalculated: recalculated,
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
