package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/prorab-io/prorab-engine/pkg/auth"
	"github.com/prorab-io/prorab-engine/pkg/models"
	"github.com/prorab-io/prorab-engine/pkg/services"
)

// NotificationHandler handles in-app notification HTTP requests.
type NotificationHandler struct {
	notificationService services.NotificationService
	logger              *zap.Logger
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(notificationService services.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		logger:              logger,
	}
}

// RegisterRoutes registers the notification handler's routes on the given mux.
func (h *NotificationHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/notifications", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST /api/notifications/{id}/read", authMiddleware.RequireAuth(h.MarkRead))
}

// List handles GET /api/notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromContext(r.Context())

	notifications, err := h.notificationService.ListByUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.logger, "list_notifications_failed", err)
		return
	}

	if notifications == nil {
		notifications = make([]*models.Notification, 0)
	}

	if err := WriteJSON(w, http.StatusOK, notifications); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// MarkRead handles POST /api/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	notificationID, ok := parsePathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	userID := auth.GetUserIDFromContext(r.Context())

	if err := h.notificationService.MarkRead(r.Context(), notificationID, userID); err != nil {
		handleServiceError(w, h.logger, "mark_notification_read_failed", err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]bool{"read": true}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
