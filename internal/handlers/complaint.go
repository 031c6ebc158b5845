// Package handlers contains HTTP request handlers for the Rail Madad API.
// Handlers parse requests, call services, and return JSON responses.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/middleware"
	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/models"
	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ComplaintHandler handles the complaint log endpoints
type ComplaintHandler struct {
	complaintSvc *services.ComplaintService
	logger       *zap.SugaredLogger
}

// NewComplaintHandler creates a new complaint handler
func NewComplaintHandler(cs *services.ComplaintService, logger *zap.SugaredLogger) *ComplaintHandler {
	return &ComplaintHandler{complaintSvc: cs, logger: logger}
}

// ListAll handles GET /complaintslogs/all
func (h *ComplaintHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	complaints, err := h.complaintSvc.List(r.Context())
	if err != nil {
		h.logger.Errorw("Failed to list complaints", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch complaints")
		return
	}
	respondJSON(w, http.StatusOK, complaints)
}

// Get handles GET /complaintslogs/{id}
func (h *ComplaintHandler) Get(w http.ResponseWriter, r *http.Request) {
	complaint, err := h.complaintSvc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.Errorw("Failed to fetch complaint", "error", err)
			respondError(w, status, "Failed to fetch complaint")
			return
		}
		respondError(w, status, "Complaint not found")
		return
	}
	respondJSON(w, http.StatusOK, complaint)
}

// UpdateStatus handles PUT /complaintslogs/{id}
func (h *ComplaintHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.StatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	complaint, err := h.complaintSvc.UpdateStatus(r.Context(), id, req.Status, middleware.ActorFromContext(r.Context()))
	if err != nil {
		status := statusFor(err)
		switch status {
		case http.StatusBadRequest:
			respondError(w, status, "Invalid status")
		case http.StatusNotFound:
			respondError(w, status, "Complaint not found")
		default:
			h.logger.Errorw("Failed to update complaint status", "id", id, "error", err)
			respondError(w, status, "Failed to update complaint")
		}
		return
	}

	respondJSON(w, http.StatusOK, complaint)
}
