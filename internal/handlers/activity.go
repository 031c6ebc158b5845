package handlers

import (
	"net/http"
	"strconv"

	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/models"
	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ActivityHandler handles activity log endpoints
type ActivityHandler struct {
	svc    *services.ActivityLogService
	logger *zap.SugaredLogger
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(svc *services.ActivityLogService, logger *zap.SugaredLogger) *ActivityHandler {
	return &ActivityHandler{svc: svc, logger: logger}
}

// ByComplaint handles GET /complaintslogs/{id}/activity
func (h *ActivityHandler) ByComplaint(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	logs, err := h.svc.FetchByComplaint(r.Context(), id, queryLimit(r))
	if err != nil {
		h.logger.Errorw("Failed to fetch activity", "complaint_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch logs")
		return
	}
	if logs == nil {
		logs = []models.ActivityLog{}
	}

	respondJSON(w, http.StatusOK, logs)
}

// Recent handles GET /activity/recent
func (h *ActivityHandler) Recent(w http.ResponseWriter, r *http.Request) {
	logs, err := h.svc.FetchRecent(r.Context(), queryLimit(r))
	if err != nil {
		h.logger.Errorw("Failed to fetch recent activity", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch recent activity")
		return
	}
	if logs == nil {
		logs = []models.ActivityLog{}
	}

	respondJSON(w, http.StatusOK, logs)
}

// queryLimit reads ?limit=, returning 0 (service default) when absent or bad.
func queryLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return 0
	}
	return n
}
