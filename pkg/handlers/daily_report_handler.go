package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/prorab-io/prorab-engine/pkg/auth"
	"github.com/prorab-io/prorab-engine/pkg/models"
	"github.com/prorab-io/prorab-engine/pkg/services"
)

// DailyReportHandler handles daily site report HTTP requests.
type DailyReportHandler struct {
	reportService services.DailyReportService
	logger        *zap.Logger
}

// NewDailyReportHandler creates a new daily report handler.
func NewDailyReportHandler(reportService services.DailyReportService, logger *zap.Logger) *DailyReportHandler {
	return &DailyReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// RegisterRoutes registers the daily report handler's routes on the given mux.
func (h *DailyReportHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/projects/{id}/daily-reports", authMiddleware.RequireRole(auth.RoleForeman)(h.Create))
	mux.HandleFunc("GET /api/projects/{id}/daily-reports", authMiddleware.RequireAuth(h.List))
}

// Create handles POST /api/projects/{id}/daily-reports
func (h *DailyReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parsePathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req services.CreateDailyReportRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	authorID := auth.GetUserIDFromContext(r.Context())

	report, err := h.reportService.Create(r.Context(), projectID, &req, authorID)
	if err != nil {
		handleServiceError(w, h.logger, "create_daily_report_failed", err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, report); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/projects/{id}/daily-reports
func (h *DailyReportHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parsePathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	reports, err := h.reportService.ListByProject(r.Context(), projectID)
	if err != nil {
		handleServiceError(w, h.logger, "list_daily_reports_failed", err)
		return
	}

	if reports == nil {
		reports = make([]*models.DailyReport, 0)
	}

	if err := WriteJSON(w, http.StatusOK, reports); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
